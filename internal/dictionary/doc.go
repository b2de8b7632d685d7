// Package dictionary loads the gender-name reference table.
//
// The source file lists one row per (name, country, gender) with a weight.
// Rows are grouped by name and country; Resolver keeps the heaviest row of
// each group and marks ties Indeterminate. Lookups trim and case-fold both
// key parts.
package dictionary
