package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Record is one source row as a field-name → raw-text mapping. Missing
// optional fields are simply absent keys; coercion treats them as empty.
type Record map[string]string

// RecordStream is an ordered sequence of records. Next returns io.EOF when
// the stream is exhausted. Streams are cheap to reopen, which is how a full
// ingestion re-run replays the same input.
type RecordStream interface {
	Next() (Record, error)
}

// CSVStream reads records from a headered CSV file.
type CSVStream struct {
	name   string
	file   *os.File
	reader *csv.Reader
	header []string
}

// OpenCSV opens a CSV file and consumes its header row. A missing file is
// reported here, before any record is processed. Rows shorter than the
// header are padded with empty fields rather than failing the stream.
func OpenCSV(path string) (*CSVStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source %s: %w", path, err)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		_ = f.Close()
		if err == io.EOF {
			return nil, fmt.Errorf("source %s is empty", path)
		}
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	return &CSVStream{name: path, file: f, reader: r, header: header}, nil
}

// Next returns the following row keyed by the header columns.
func (s *CSVStream) Next() (Record, error) {
	row, err := s.reader.Read()
	if err != nil {
		return nil, err
	}
	rec := make(Record, len(s.header))
	for i, col := range s.header {
		if i < len(row) {
			rec[col] = row[i]
		} else {
			rec[col] = ""
		}
	}
	return rec, nil
}

// Name identifies the backing file, for progress reports.
func (s *CSVStream) Name() string { return s.name }

// Close releases the backing file.
func (s *CSVStream) Close() error { return s.file.Close() }

// MemoryStream serves records from a slice. The synthetic data generator
// feeds the loader through one of these so generated catalogs exercise the
// exact same path as file-based ingestion.
type MemoryStream struct {
	records []Record
	pos     int
}

func NewMemoryStream(records []Record) *MemoryStream {
	return &MemoryStream{records: records}
}

func (s *MemoryStream) Next() (Record, error) {
	if s.pos >= len(s.records) {
		return nil, io.EOF
	}
	rec := s.records[s.pos]
	s.pos++
	return rec, nil
}

// Rewind resets the stream to the first record, replaying the sequence.
func (s *MemoryStream) Rewind() { s.pos = 0 }
