// Package records reads tabular input row by row.
//
// CSVReader tokenizes delimited text and keeps the raw text of every row so
// callers can reproduce the input exactly. XLSXReader walks the used range
// of one worksheet. Both implement Source, which resolves columns by
// position or header name through FieldRef.
package records
