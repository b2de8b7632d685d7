// Package exporter writes enrichment results.
//
// CSVAppender copies delimited input record by record with the Gender and
// Accuracy fields appended. EstimateColumns does the same for a worksheet.
// BuildReport lays out the summary statistics, which WriteText renders as
// tab separated text and WriteResultsSheet as a workbook sheet.
package exporter
