// Package report holds the reporting collaborators of a simulation run:
// observers that persist the per-tick counts as CSV rows or in SQLite.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/iti/virnet"
)

// csvHeader is the column order of every CSV this package writes.
var csvHeader = []string{"tick", "infected", "resistant", "susceptible"}

// CSVWriter is an Observer that writes one row per snapshot.
type CSVWriter struct {
	w           *csv.Writer
	closer      io.Closer
	wroteHeader bool
}

// NewCSVWriter creates a CSVWriter writing to w. Close flushes but does not close w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// CreateCSVFile creates (or truncates) the named file and returns a CSVWriter
// that closes it on Close.
func CreateCSVFile(name string) (*CSVWriter, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("failed to create csv file: %w", err)
	}
	cw := NewCSVWriter(f)
	cw.closer = f
	return cw, nil
}

// Observe writes the counts of snap, preceded by the header on first use.
func (cw *CSVWriter) Observe(snap virnet.Snapshot) error {
	return cw.writeCounts(snap.Counts())
}

func (cw *CSVWriter) writeCounts(c virnet.Counts) error {
	if !cw.wroteHeader {
		if err := cw.w.Write(csvHeader); err != nil {
			return fmt.Errorf("failed to write csv header: %w", err)
		}
		cw.wroteHeader = true
	}
	row := []string{
		strconv.Itoa(c.Tick),
		strconv.Itoa(c.Infected),
		strconv.Itoa(c.Resistant),
		strconv.Itoa(c.Susceptible),
	}
	if err := cw.w.Write(row); err != nil {
		return fmt.Errorf("failed to write csv row for tick %d: %w", c.Tick, err)
	}
	return nil
}

// Close flushes buffered rows and closes the file opened by CreateCSVFile.
func (cw *CSVWriter) Close() error {
	cw.w.Flush()
	err := cw.w.Error()
	if cw.closer != nil {
		if cerr := cw.closer.Close(); err == nil {
			err = cerr
		}
		cw.closer = nil
	}
	return err
}

// WriteCSV writes a complete run log to w.
func WriteCSV(w io.Writer, log []virnet.Counts) error {
	cw := NewCSVWriter(w)
	for _, c := range log {
		if err := cw.writeCounts(c); err != nil {
			return err
		}
	}
	return cw.Close()
}

// ReadCSV parses a log written by CSVWriter or WriteCSV.
func ReadCSV(r io.Reader) ([]virnet.Counts, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	log := make([]virnet.Counts, 0, len(records)-1)
	for lineNo, rec := range records[1:] {
		if len(rec) != len(csvHeader) {
			return nil, fmt.Errorf("csv line %d: want %d fields, got %d", lineNo+2, len(csvHeader), len(rec))
		}
		vals := make([]int, len(rec))
		for i, field := range rec {
			v, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("csv line %d, column %s: %w", lineNo+2, csvHeader[i], err)
			}
			vals[i] = v
		}
		log = append(log, virnet.Counts{Tick: vals[0], Infected: vals[1], Resistant: vals[2], Susceptible: vals[3]})
	}
	return log, nil
}
