package dictionary

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/blake2b"

	apperrors "gnecli/internal/errors"
	"gnecli/internal/records"
	"gnecli/internal/validation"
	"gnecli/pkg/contracts/domain"
)

// DefaultFile is the dictionary file name looked up beside the executable.
const DefaultFile = "wgnd_2_0_name-gender-code.csv"

// contextCheckInterval is how many rows are read between cancellation checks.
const contextCheckInterval = 10000

// Columns names the dictionary columns and their fallback positions when
// the header row lacks them.
var Columns = struct {
	Name, Code, Gender, Weight string
}{"name", "code", "gender", "wgt"}

// Info describes a loaded dictionary file.
type Info struct {
	Path        string        `json:"path"`
	Entries     int           `json:"entries"`
	SourceRows  int           `json:"source_rows"`
	Fingerprint string        `json:"fingerprint"`
	Duration    time.Duration `json:"duration"`
}

// Dictionary is a resolved table together with where it came from.
type Dictionary struct {
	*Table
	Info Info
}

// LoadOptions configures LoadFile.
type LoadOptions struct {
	Delimiter rune
	Logger    *slog.Logger
}

// Load resolves every row of src. Columns are found by header name, or by
// position 0 to 3 when the header is missing.
func Load(ctx context.Context, src records.Source) (*Table, error) {
	t, _, err := load(ctx, src)
	return t, err
}

func load(ctx context.Context, src records.Source) (*Table, int, error) {
	nameIdx := ordinal(src, Columns.Name, 0)
	codeIdx := ordinal(src, Columns.Code, 1)
	genderIdx := ordinal(src, Columns.Gender, 2)
	weightIdx := ordinal(src, Columns.Weight, 3)

	resolver := NewResolver()
	for src.Next() {
		if resolver.Rows()%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, 0, fmt.Errorf("dictionary load cancelled after %d rows: %w", resolver.Rows(), err)
			}
		}
		name, _ := src.Field(nameIdx)
		code, _ := src.Field(codeIdx)
		gender, _ := src.Field(genderIdx)
		weight, _ := src.Field(weightIdx)
		resolver.Add(domain.DataRecord{
			FirstName:   name,
			CountryCode: code,
			Gender:      domain.ParseGender(gender),
			Accuracy:    ParseWeight(weight),
		})
	}
	if err := src.Err(); err != nil {
		return nil, 0, apperrors.NewParsingError("failed to read dictionary", err)
	}
	rows := resolver.Rows()
	return resolver.Table(), rows, nil
}

func ordinal(src records.Source, name string, fallback int) int {
	if i := src.Ordinal(name); i >= 0 {
		return i
	}
	return fallback
}

// LoadFile reads and resolves a dictionary CSV file with a header row.
// A missing or unreadable file is a configuration error.
func LoadFile(ctx context.Context, path string, opts LoadOptions) (*Dictionary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "dictionary"))

	ctx, span := otel.Tracer("gnecli/dictionary").Start(ctx, "dictionary.load")
	defer span.End()
	span.SetAttributes(attribute.String("dictionary.path", path))

	if err := validation.NewFileValidator(logger).ValidateDictionaryFile(path); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid dictionary file")
		return nil, err
	}

	start := time.Now()
	f, err := os.Open(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return nil, apperrors.NewConfigError("dictionary file is not readable", err).WithContext("path", path)
	}
	defer f.Close()

	hash, err := blake2b.New256(nil)
	if err != nil {
		return nil, fmt.Errorf("create fingerprint hash: %w", err)
	}

	src, err := records.NewCSVReader(io.TeeReader(f, hash), records.CSVOptions{
		HasHeaders: true,
		Delimiter:  opts.Delimiter,
		Quote:      '"',
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return nil, err
	}

	table, rows, err := load(ctx, src)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve failed")
		return nil, err
	}

	info := Info{
		Path:        path,
		Entries:     table.Len(),
		SourceRows:  rows,
		Fingerprint: hex.EncodeToString(hash.Sum(nil)),
		Duration:    time.Since(start),
	}
	span.SetAttributes(
		attribute.Int("dictionary.entries", info.Entries),
		attribute.Int("dictionary.rows", info.SourceRows),
	)
	logger.InfoContext(ctx, "Dictionary loaded",
		slog.String("path", path),
		slog.Int("entries", info.Entries),
		slog.Int("rows", info.SourceRows),
		slog.String("fingerprint", info.Fingerprint[:16]),
		slog.Duration("duration", info.Duration))

	return &Dictionary{Table: table, Info: info}, nil
}
