package dataprocessing

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	apperrors "gnecli/internal/errors"
	"gnecli/internal/records"
	"gnecli/pkg/contracts/domain"
)

// Columns selects the input columns. FirstName and CountryCode are
// required; a zero PersonID or DisclosureID is unused.
type Columns struct {
	FirstName    records.FieldRef
	CountryCode  records.FieldRef
	PersonID     records.FieldRef
	DisclosureID records.FieldRef
}

// Recorder receives per-row pipeline events, typically for metrics.
type Recorder interface {
	RecordRow(ctx context.Context, rec domain.DataRecord)
	RecordMismatch(ctx context.Context, m domain.Mismatch)
}

// Pipeline enriches sources and aggregates them into a SummaryInfo. Both
// file backends drive it the same way.
type Pipeline struct {
	enricher *Enricher
	logger   *slog.Logger
	recorder Recorder
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithRecorder reports rows and mismatches to r.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// NewPipeline creates a pipeline over dict.
func NewPipeline(dict Dictionary, opts ...Option) *Pipeline {
	p := &Pipeline{
		enricher: NewEnricher(dict),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(slog.String("component", "pipeline"))
	return p
}

// Enricher returns the enricher shared by every run of the pipeline.
func (p *Pipeline) Enricher() *Enricher { return p.enricher }

// Run is one pass of a Pipeline over a source.
type Run struct {
	pipeline      *Pipeline
	src           records.Source
	columns       Columns
	firstIdx      int
	countryIdx    int
	personIdx     int
	disclosureIdx int
	summary       *SummaryInfo
	ctx           context.Context
}

// Prepare resolves cols against src. An unresolvable first name or
// country code column is a configuration error and no row is read.
func (p *Pipeline) Prepare(src records.Source, cols Columns) (*Run, error) {
	firstIdx, ok := cols.FirstName.Resolve(src)
	if !ok {
		return nil, apperrors.NewConfigError("first name column could not be determined", nil).
			WithContext("column", cols.FirstName.String())
	}
	countryIdx, ok := cols.CountryCode.Resolve(src)
	if !ok {
		return nil, apperrors.NewConfigError("country code column could not be determined", nil).
			WithContext("column", cols.CountryCode.String())
	}
	personIdx, ok := cols.PersonID.Resolve(src)
	if !ok {
		personIdx = -1
	}
	disclosureIdx, ok := cols.DisclosureID.Resolve(src)
	if !ok {
		disclosureIdx = -1
	}

	p.logger.Debug("Columns resolved",
		slog.Int("first_name", firstIdx),
		slog.Int("country_code", countryIdx),
		slog.Int("person_id", personIdx),
		slog.Int("disclosure_id", disclosureIdx))

	run := &Run{
		pipeline:      p,
		src:           src,
		columns:       cols,
		firstIdx:      firstIdx,
		countryIdx:    countryIdx,
		personIdx:     personIdx,
		disclosureIdx: disclosureIdx,
		summary:       NewSummaryInfo(),
		ctx:           context.Background(),
	}
	if p.recorder != nil {
		run.summary.OnMismatch(func(m domain.Mismatch) {
			p.recorder.RecordMismatch(run.ctx, m)
		})
	}
	return run, nil
}

// Summary returns the aggregation fed by Records.
func (r *Run) Summary() *SummaryInfo { return r.summary }

// Source returns the source the run reads.
func (r *Run) Source() records.Source { return r.src }

// Columns returns the column selection the run was prepared with.
func (r *Run) Columns() Columns { return r.columns }

// Records yields one enriched record per source row. Every yielded record
// is added to the summary once the consumer has handled it. Cancellation is
// checked before each row; a cancelled context or a read failure is
// yielded as the final error.
func (r *Run) Records(ctx context.Context) iter.Seq2[domain.DataRecord, error] {
	return func(yield func(domain.DataRecord, error) bool) {
		r.ctx = ctx
		if err := ctx.Err(); err != nil {
			yield(domain.DataRecord{}, r.stopped(err))
			return
		}

		for rec := range r.pipeline.enricher.Process(r.src, r.firstIdx, r.countryIdx) {
			if r.pipeline.recorder != nil {
				r.pipeline.recorder.RecordRow(ctx, rec)
			}
			cont := yield(rec, nil)
			r.summary.Add(r.optional(r.personIdx), r.optional(r.disclosureIdx), rec)
			if !cont {
				return
			}
			if err := ctx.Err(); err != nil {
				yield(domain.DataRecord{}, r.stopped(err))
				return
			}
		}

		if err := r.src.Err(); err != nil {
			yield(domain.DataRecord{}, apperrors.NewStorageError("failed to read input", err))
		}
	}
}

func (r *Run) stopped(err error) error {
	return fmt.Errorf("processing stopped after row %d: %w", r.src.RowIndex(), err)
}

func (r *Run) optional(i int) string {
	if i < 0 {
		return ""
	}
	v, _ := r.src.Field(i)
	return v
}
