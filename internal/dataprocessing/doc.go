// Package dataprocessing enriches records with dictionary estimates and
// aggregates them into summary statistics.
//
// # Components
//
//  1. Enricher: looks up each (first name, country code) pair in a Dictionary
//  2. SummaryInfo: folds enriched rows into per-person and per-disclosure
//     state and reports counts, rates and fractional inventorship
//  3. Pipeline: resolves column references against a Source and streams
//     enriched records through the aggregator
//
// # Usage
//
//	p := dataprocessing.NewPipeline(dict, dataprocessing.WithLogger(logger))
//	run, err := p.Prepare(src, dataprocessing.Columns{
//	    FirstName:   records.ColumnName("first"),
//	    CountryCode: records.ColumnIndex(1),
//	})
//	if err != nil {
//	    return err
//	}
//	for rec, err := range run.Records(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    // write rec
//	}
//	stats := run.Summary().Snapshot()
//
// Rows of one source are processed sequentially. A person seen again with a
// different confident gender is recorded as Indeterminate and reported
// through the MismatchFunc registered with OnMismatch.
package dataprocessing
