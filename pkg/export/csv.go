package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// CSVSink writes reports as <name>_<timestamp>.csv files in Dir, or to a
// fixed Path when set.
type CSVSink struct {
	Dir  string
	Path string
}

func (s *CSVSink) Write(ctx context.Context, name string, columns []string, rows []Record) error {
	path := s.Path
	if path == "" {
		filename := fmt.Sprintf("%s_%s.csv", name, time.Now().Format("20060102_150405"))
		path = filepath.Join(s.Dir, filename)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer func() {
		err := file.Close()
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to close report file")
		}
	}()

	if err := writeCSV(file, columns, rows); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Str("path", path).Int("rows", len(rows)).Msg("report written")
	return nil
}

// WriterSink renders CSV to an arbitrary writer, used by tests and stdout
// output.
type WriterSink struct {
	Writer io.Writer
}

func (s *WriterSink) Write(_ context.Context, _ string, columns []string, rows []Record) error {
	return writeCSV(s.Writer, columns, rows)
}

func writeCSV(w io.Writer, columns []string, rows []Record) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	line := make([]string, len(columns))
	for _, row := range rows {
		for i, column := range columns {
			line[i] = row[column]
		}
		if err := writer.Write(line); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
