// Package files finds input files for batch runs and handles the file
// copies made before a workbook is edited.
package files
