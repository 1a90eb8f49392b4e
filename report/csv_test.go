package report

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/iti/virnet"
)

func runModel(t *testing.T, seed int64, maxSteps int, observers ...virnet.Observer) (*virnet.Model, *virnet.RunResult) {
	t.Helper()
	m, rr, err := virnet.Simulate(virnet.DefaultParams().WithSeed(seed), maxSteps, observers...)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	return m, rr
}

func TestCSVWriterObserver(t *testing.T) {
	var buf bytes.Buffer
	cw := NewCSVWriter(&buf)
	_, rr := runModel(t, 4, 20, cw)
	if err := cw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "tick,infected,resistant,susceptible" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != len(rr.Log)+1 {
		t.Fatalf("csv has %d lines, want %d", len(lines), len(rr.Log)+1)
	}

	back, err := ReadCSV(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if !reflect.DeepEqual(back, rr.Log) {
		t.Errorf("ReadCSV = %v, want %v", back, rr.Log)
	}
}

func TestCSVFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "counts.csv")
	cw, err := CreateCSVFile(file)
	if err != nil {
		t.Fatalf("CreateCSVFile: %v", err)
	}
	_, rr := runModel(t, 8, 10, cw)
	if err := cw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := cw.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	f, err := os.Open(file)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	back, err := ReadCSV(f)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if !reflect.DeepEqual(back, rr.Log) {
		t.Errorf("file holds %v, want %v", back, rr.Log)
	}
}

func TestWriteCSV(t *testing.T) {
	log := []virnet.Counts{
		{Tick: 0, Infected: 3, Resistant: 0, Susceptible: 7},
		{Tick: 1, Infected: 4, Resistant: 1, Susceptible: 5},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, log); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "tick,infected,resistant,susceptible\n0,3,0,7\n1,4,1,5\n"
	if buf.String() != want {
		t.Errorf("WriteCSV wrote %q, want %q", buf.String(), want)
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"short row", "tick,infected,resistant,susceptible\n0,1,2\n"},
		{"not a number", "tick,infected,resistant,susceptible\n0,x,2,3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCSV(strings.NewReader(tt.input)); err == nil {
				t.Errorf("ReadCSV(%q) succeeded", tt.input)
			}
		})
	}

	log, err := ReadCSV(strings.NewReader(""))
	if err != nil || len(log) != 0 {
		t.Errorf("ReadCSV(empty) = %v, %v", log, err)
	}
}
