package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Inserter persists a batch of records in one call and returns them with
// their storage ids assigned, in input order.
type Inserter[T any] interface {
	InsertMany(ctx context.Context, docs []T) ([]T, error)
}

// Processor imports uploaded files into one target
type Processor[T any] struct {
	target    Target[T]
	sink      Inserter[T]
	uploadDir string
	policy    DuplicatePolicy
	logger    *zap.Logger
	remove    func(string) error
	open      func(string, CSVOptions) (*Parser, error)
}

// NewProcessor creates a processor for target writing to sink. Only files
// inside uploadDir are accepted.
func NewProcessor[T any](target Target[T], sink Inserter[T], uploadDir string, policy DuplicatePolicy, logger *zap.Logger) *Processor[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy == "" {
		policy = DuplicatesAllow
	}
	return &Processor[T]{
		target:    target,
		sink:      sink,
		uploadDir: uploadDir,
		policy:    policy,
		logger:    logger.Named("import"),
		remove:    os.Remove,
		open:      NewParser,
	}
}

// Target returns the import target the processor writes to
func (p *Processor[T]) Target() Target[T] {
	return p.target
}

// Process runs one import of the file at path. The file is owned by the call
// and is removed exactly once before Process returns, whatever the outcome.
func (p *Processor[T]) Process(ctx context.Context, path string, opts CSVOptions) (out *Outcome[T], err error) {
	start := time.Now()
	log := p.logger.With(zap.String("target", p.target.Name), zap.String("upload", filepath.Base(path)))

	resolved, err := ValidatePath(path, p.uploadDir)
	if err != nil {
		// not ours to delete
		releaseUpload(path)
		observeImport[T](p.target.Name, resultError, nil, time.Since(start))
		log.Error("rejected upload path", zap.Error(err))
		return nil, fmt.Errorf("import %s: %w", p.target.Plural, err)
	}
	defer p.cleanup(path, log)

	timings := NewTimings()
	stats := &Outcome[T]{}
	defer func() {
		elapsed := time.Since(start)
		result := resultOf(err)
		observeImport(p.target.Name, result, stats, elapsed)
		fields := []zap.Field{
			zap.String("result", result),
			zap.Int64("rowsRead", stats.RowsRead),
			zap.Int64("rowsSkipped", stats.RowsSkipped),
			zap.Int("rowsRejected", len(stats.Rejected)),
			zap.Int("inserted", stats.InsertedCount),
			zap.Duration("duration", elapsed),
			zap.Stringer("timings", timings),
		}
		if err != nil {
			log.Warn("import failed", append(fields, zap.Error(err))...)
			return
		}
		log.Info("import finished", fields...)
	}()

	opts, err = opts.Normalize()
	if err != nil {
		return nil, err
	}

	if opts.Encoding == EncodingUTF8 {
		info, statErr := os.Stat(resolved)
		if statErr != nil {
			return nil, fmt.Errorf("stat upload: %w", statErr)
		}
		if info.Size() > 0 {
			if err = SniffText(resolved); err != nil {
				return nil, err
			}
		}
	}

	log.Debug("import started", zap.String("encoding", opts.Encoding), zap.String("delimiter", opts.Delimiter))

	parser, err := p.open(resolved, opts)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	valid, rejected, err := p.collect(ctx, parser, stats, timings)
	if err != nil {
		return nil, err
	}
	stats.Rejected = rejected

	if len(valid) == 0 {
		return nil, &NoValidRowsError{
			Target:   p.target.Name,
			Required: p.target.RequiredHeaders(),
			Rejected: rejected,
		}
	}

	insertStart := time.Now()
	inserted, err := p.sink.InsertMany(ctx, valid)
	timings.ObserveInsert(time.Since(insertStart))
	if err != nil {
		return nil, &InsertError{Target: p.target.Plural, Err: err}
	}

	stats.InsertedCount = len(inserted)
	stats.Inserted = inserted
	return stats, nil
}

// collect streams every data row through the mapper. Valid records keep
// file order.
func (p *Processor[T]) collect(ctx context.Context, parser *Parser, stats *Outcome[T], timings *Timings) ([]T, []RejectedRow, error) {
	var valid []T
	rejected := []RejectedRow{}
	seen := make(map[string]int64)

	for {
		readStart := time.Now()
		row, empty, err := parser.ReadRow(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		timings.ObserveCSVRead(time.Since(readStart))

		stats.RowsRead++
		if empty {
			stats.RowsSkipped++
			continue
		}
		rowNo := parser.RowNo()

		mapStart := time.Now()
		fields, reasons := MapRow(p.target.Fields, row)
		timings.ObserveMap(time.Since(mapStart))

		if len(reasons) == 0 && p.policy == DuplicatesSkip && len(p.target.DedupKey) > 0 {
			key := dedupKey(fields, p.target.DedupKey)
			if first, dup := seen[key]; dup {
				reasons = append(reasons, fmt.Sprintf("duplicate of row %d", first))
			} else {
				seen[key] = rowNo
			}
		}

		if len(reasons) > 0 {
			rejected = append(rejected, RejectedRow{RowNumber: rowNo, Reasons: reasons})
			continue
		}
		valid = append(valid, p.target.Build(fields))
	}
	return valid, rejected, nil
}

func (p *Processor[T]) cleanup(path string, log *zap.Logger) {
	defer releaseUpload(path)
	if err := p.remove(path); err != nil {
		cleanupFailures.Inc()
		log.Error("failed to remove upload", zap.String("path", path), zap.Error(err))
	}
}

func resultOf(err error) string {
	var (
		parseErr    *ParseError
		noRowsErr   *NoValidRowsError
		insertErr   *InsertError
		unsupported *UnsupportedFileTypeError
	)
	switch {
	case err == nil:
		return resultSuccess
	case errors.Is(err, ErrInvalidOptions):
		return resultInvalid
	case errors.As(err, &unsupported):
		return resultUnsupported
	case errors.As(err, &parseErr):
		return resultParseError
	case errors.As(err, &noRowsErr):
		return resultNoValidRows
	case errors.As(err, &insertErr):
		return resultInsertError
	default:
		return resultError
	}
}
