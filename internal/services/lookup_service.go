package services

import (
	"context"
	"log/slog"
	"sync/atomic"

	"gnecli/internal/dictionary"
	"gnecli/internal/infrastructure"
	"gnecli/pkg/contracts"
	api "gnecli/pkg/contracts/api/v1"
)

// LookupRecorder observes served lookups.
type LookupRecorder interface {
	RecordLookup(ctx context.Context, found bool)
}

// LookupService answers dictionary queries. The dictionary may be replaced
// at any time; each call sees one consistent dictionary.
type LookupService struct {
	dict     atomic.Pointer[dictionary.Dictionary]
	path     string
	loadOpts dictionary.LoadOptions
	recorder LookupRecorder
	logger   *slog.Logger
}

// NewLookupService serves dict. Reload re-reads path with opts; an empty
// path disables Reload.
func NewLookupService(dict *dictionary.Dictionary, path string, opts dictionary.LoadOptions, recorder LookupRecorder, logger *slog.Logger) *LookupService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	s := &LookupService{
		path:     path,
		loadOpts: opts,
		recorder: recorder,
		logger:   logger.With(slog.String("service", "lookup")),
	}
	if dict != nil {
		s.dict.Store(dict)
	}
	return s
}

// Ready reports whether a dictionary is loaded.
func (s *LookupService) Ready() bool {
	return s.dict.Load() != nil
}

// Lookup answers one query.
func (s *LookupService) Lookup(ctx context.Context, req api.LookupRequest) (api.LookupResponse, error) {
	dict := s.dict.Load()
	if dict == nil {
		return api.LookupResponse{}, ErrDictionaryNotLoaded
	}
	return s.lookup(ctx, dict, req), nil
}

// LookupBatch answers every item in request order.
func (s *LookupService) LookupBatch(ctx context.Context, req api.BatchLookupRequest) (api.BatchLookupResponse, error) {
	dict := s.dict.Load()
	if dict == nil {
		return api.BatchLookupResponse{}, ErrDictionaryNotLoaded
	}

	resp := api.BatchLookupResponse{Results: make([]api.LookupResponse, 0, len(req.Items))}
	for _, item := range req.Items {
		if err := ctx.Err(); err != nil {
			return api.BatchLookupResponse{}, err
		}
		result := s.lookup(ctx, dict, item)
		if result.Found {
			resp.Found++
		} else {
			resp.Missing++
		}
		resp.Results = append(resp.Results, result)
	}

	s.logger.DebugContext(ctx, "Batch lookup served",
		slog.Int("items", len(req.Items)),
		slog.Int("found", resp.Found))
	return resp, nil
}

func (s *LookupService) lookup(ctx context.Context, dict *dictionary.Dictionary, req api.LookupRequest) api.LookupResponse {
	rec, found := dict.Lookup(req.FirstName, req.CountryCode)
	if s.recorder != nil {
		s.recorder.RecordLookup(ctx, found)
	}
	return api.LookupResponse{
		Query:  req,
		Found:  found,
		Record: rec,
		Label:  rec.Gender.Label(),
	}
}

// DictionaryInfo describes the dictionary currently served.
func (s *LookupService) DictionaryInfo(ctx context.Context) (api.DictionaryInfo, error) {
	dict := s.dict.Load()
	if dict == nil {
		return api.DictionaryInfo{}, ErrDictionaryNotLoaded
	}
	return api.DictionaryInfo{
		Name:        contracts.DictionaryName,
		Path:        dict.Info.Path,
		Entries:     dict.Info.Entries,
		SourceRows:  dict.Info.SourceRows,
		Fingerprint: dict.Info.Fingerprint,
	}, nil
}

// Reload reads the dictionary file again and swaps it in. On failure the
// current dictionary stays in service.
func (s *LookupService) Reload(ctx context.Context) error {
	if s.path == "" {
		return ErrNoDictionaryPath
	}
	dict, err := dictionary.LoadFile(ctx, s.path, s.loadOpts)
	if err != nil {
		s.logger.ErrorContext(ctx, "Dictionary reload failed",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return err
	}
	old := s.dict.Swap(dict)

	attrs := []any{slog.String("fingerprint", dict.Info.Fingerprint)}
	if old != nil {
		attrs = append(attrs, slog.Bool("changed", old.Info.Fingerprint != dict.Info.Fingerprint))
	}
	s.logger.InfoContext(ctx, "Dictionary reloaded", attrs...)
	return nil
}
