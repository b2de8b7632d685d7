// Package fileprocessor runs the enrichment pipeline over one input file.
//
// The backend is chosen by file extension. The CSV backend writes a copy
// of the input with Gender and Accuracy appended to each record plus a
// tab separated text summary. The XLSX backend appends the same two
// columns to a worksheet of a copy of the workbook and adds a Results
// sheet holding the summary.
package fileprocessor
