package report

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/iti/virnet"
)

func openTestStore(t *testing.T, dbPath string) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLiteStore(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreRuns(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, ":memory:")

	logs := make(map[int64][]virnet.Counts)
	for _, seed := range []int64{3, 9} {
		params := virnet.DefaultParams().WithSeed(seed)
		runID, err := store.BeginRun(ctx, "seeded", params)
		if err != nil {
			t.Fatalf("BeginRun: %v", err)
		}
		_, rr, err := virnet.Simulate(params, 25, store)
		if err != nil {
			t.Fatalf("Simulate: %v", err)
		}
		logs[runID] = rr.Log
	}

	runs, err := store.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Runs() returned %d runs, want 2", len(runs))
	}
	if runs[0].Seed != 3 || runs[1].Seed != 9 {
		t.Errorf("run seeds %d, %d; want 3, 9", runs[0].Seed, runs[1].Seed)
	}
	if runs[0].Params.Seed == nil || *runs[0].Params.Seed != 3 || runs[0].Params.NumberOfNodes != 150 {
		t.Errorf("stored params %+v", runs[0].Params)
	}
	if runs[0].Name != "seeded" || runs[0].StartedAt.IsZero() {
		t.Errorf("run record %+v", runs[0])
	}

	for runID, want := range logs {
		got, err := store.Counts(ctx, runID)
		if err != nil {
			t.Fatalf("Counts(%d): %v", runID, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("run %d counts %v, want %v", runID, got, want)
		}
	}
}

func TestSQLiteStoreErrors(t *testing.T) {
	store := openTestStore(t, ":memory:")

	m, _ := runModel(t, 1, 0)
	if err := store.Observe(m); !errors.Is(err, ErrNoRun) {
		t.Errorf("Observe before BeginRun error = %v, want ErrNoRun", err)
	}
	if _, err := store.BeginRun(context.Background(), "unseeded", virnet.DefaultParams()); err == nil {
		t.Error("BeginRun without a seed succeeded")
	}

	params := virnet.DefaultParams().WithSeed(1)
	if _, err := store.BeginRun(context.Background(), "dup", params); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if err := store.Observe(m); err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if err := store.Observe(m); err == nil {
		t.Error("a second row for the same tick was accepted")
	}
}

func TestSQLiteStoreOutlivesBeginRunContext(t *testing.T) {
	store := openTestStore(t, ":memory:")

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	params := virnet.DefaultParams().WithSeed(6)
	if _, err := store.BeginRun(canceled, "canceled", params); err == nil {
		t.Fatal("BeginRun with a canceled context succeeded")
	}

	ctx, stop := context.WithCancel(context.Background())
	runID, err := store.BeginRun(ctx, "observed", params)
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	stop()

	// the run keeps recording after the context of BeginRun is gone
	_, rr := runModel(t, 6, 10, store)
	got, err := store.Counts(context.Background(), runID)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if !reflect.DeepEqual(got, rr.Log) {
		t.Errorf("stored counts %v, want %v", got, rr.Log)
	}
}

func TestSQLiteStoreFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store := openTestStore(t, dbPath)
	params := virnet.DefaultParams().WithSeed(12)
	runID, err := store.BeginRun(context.Background(), "file", params)
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	_, rr := runModel(t, 12, 15, store)
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := openTestStore(t, dbPath)
	got, err := reopened.Counts(context.Background(), runID)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if !reflect.DeepEqual(got, rr.Log) {
		t.Errorf("reopened store holds %v, want %v", got, rr.Log)
	}
}
