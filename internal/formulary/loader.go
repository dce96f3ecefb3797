package formulary

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"medcart/internal/model"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for reading gzipped snapshot files.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based formulary loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "formulary-loader").Logger(),
	}
}

// Load reads a gzipped snapshot file and returns a Snapshot. The file
// is expected to contain one JSON-encoded medicine per line.
func (l *fileLoader) Load(ctx context.Context, path string) (Snapshot, error) {
	l.logger.Info().Str("file", path).Msg("loading formulary snapshot")

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open snapshot file")
		return nil, fmt.Errorf("failed to open snapshot file %s: %w", path, err)
	}
	defer file.Close()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to create gzip reader")
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", path, err)
	}
	defer gzipReader.Close()

	snapshot, err := readSnapshot(ctx, gzipReader, l.logger)
	if err != nil {
		return nil, fmt.Errorf("error reading snapshot file %s: %w", path, err)
	}

	l.logger.Info().
		Str("file", path).
		Int("medicines_loaded", snapshot.Size()).
		Msg("formulary snapshot loaded successfully")

	return snapshot, nil
}

// readSnapshot parses JSON-lines medicine records from r into a snapshot.
func readSnapshot(ctx context.Context, r interface{ Read([]byte) (int, error) }, logger zerolog.Logger) (Snapshot, error) {
	set := NewMapSnapshot(10_000).(*mapSnapshot)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineCount := 0
	for scanner.Scan() {
		// Check context cancellation periodically
		if lineCount%10_000 == 0 {
			select {
			case <-ctx.Done():
				logger.Warn().Msg("formulary loading cancelled")
				return nil, ctx.Err()
			default:
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var med model.Medicine
		if err := json.Unmarshal([]byte(line), &med); err != nil {
			return nil, fmt.Errorf("invalid medicine record on line %d: %w", lineCount+1, err)
		}
		if med.ID == "" {
			return nil, fmt.Errorf("medicine record on line %d has no id", lineCount+1)
		}

		set.Add(med)
		lineCount++
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return set, nil
}
