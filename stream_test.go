package virnet

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/iti/rngstream"
)

func TestRandStreamDeterminism(t *testing.T) {
	a := CreateRandStream(42)
	b := CreateRandStream(42)
	ids := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	for i := 0; i < 100; i++ {
		if x, y := a.IntN(0, 1000), b.IntN(0, 1000); x != y {
			t.Fatalf("draw %d: IntN %d != %d", i, x, y)
		}
		if x, y := a.Float(0, 100), b.Float(0, 100); x != y {
			t.Fatalf("draw %d: Float %v != %v", i, x, y)
		}
		if x, y := a.Permute(ids), b.Permute(ids); !slices.Equal(x, y) {
			t.Fatalf("draw %d: Permute %v != %v", i, x, y)
		}
	}
	if a.Seed() != 42 {
		t.Errorf("Seed() = %d, want 42", a.Seed())
	}
}

func TestRandStreamIgnoresPackageState(t *testing.T) {
	draw := func() []float64 {
		rs := CreateRandStream(77)
		vals := make([]float64, 20)
		for idx := range vals {
			vals[idx] = rs.Float(0, 1)
		}
		return vals
	}
	first := draw()

	// move rngstream's package seed and stream spacing
	for i := 0; i < 3; i++ {
		rngstream.New("other").RandU01()
	}
	rngstream.SetPackageSeed([]uint64{9, 9, 9, 9, 9, 9})

	if second := draw(); !slices.Equal(first, second) {
		t.Errorf("same seed drew %v, then %v after package state changed", first, second)
	}
}

func TestSeedWords(t *testing.T) {
	for _, seed := range []int64{0, 1, -1, 42, math.MaxInt64, math.MinInt64} {
		words := seedWords(seed)
		if len(words) != 6 {
			t.Fatalf("seedWords(%d) has %d words", seed, len(words))
		}
		for idx, w := range words {
			limit := mrgM1
			if idx >= 3 {
				limit = mrgM2
			}
			if w >= limit {
				t.Errorf("seedWords(%d)[%d] = %d, not below %d", seed, idx, w, limit)
			}
		}
		if words[0]|words[1]|words[2] == 0 || words[3]|words[4]|words[5] == 0 {
			t.Errorf("seedWords(%d) = %v has an all-zero component", seed, words)
		}
	}
	if slices.Equal(seedWords(1), seedWords(2)) {
		t.Error("seeds 1 and 2 expand to the same state")
	}
}

func TestRandStreamSeedsDiffer(t *testing.T) {
	a := CreateRandStream(1)
	b := CreateRandStream(2)
	same := true
	for i := 0; i < 10; i++ {
		if a.Float(0, 1) != b.Float(0, 1) {
			same = false
		}
	}
	if same {
		t.Error("streams with different seeds produced identical draws")
	}
}

func TestRandStreamRanges(t *testing.T) {
	rs := CreateRandStream(7)
	for i := 0; i < 1000; i++ {
		if v := rs.IntN(3, 8); v < 3 || v >= 8 {
			t.Fatalf("IntN(3, 8) = %d", v)
		}
		if v := rs.Float(-2.5, 2.5); v < -2.5 || v >= 2.5 {
			t.Fatalf("Float(-2.5, 2.5) = %v", v)
		}
		if v := rs.Choice(4); v < 0 || v >= 4 {
			t.Fatalf("Choice(4) = %d", v)
		}
	}
}

func TestRandStreamIntNEmptyRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("IntN(5, 5) did not panic")
		}
	}()
	CreateRandStream(1).IntN(5, 5)
}

func TestPermute(t *testing.T) {
	rs := CreateRandStream(3)
	ids := []int{4, 8, 15, 16, 23, 42}
	orig := slices.Clone(ids)

	perm := rs.Permute(ids)
	if !slices.Equal(ids, orig) {
		t.Errorf("Permute modified its input: %v", ids)
	}
	sorted := slices.Clone(perm)
	slices.Sort(sorted)
	if !slices.Equal(sorted, orig) {
		t.Errorf("Permute(%v) = %v, not a permutation", orig, perm)
	}

	if got := rs.Permute(nil); len(got) != 0 {
		t.Errorf("Permute(nil) = %v, want empty", got)
	}
}

func TestSample(t *testing.T) {
	ids := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	tests := []struct {
		name    string
		k       int
		wantErr error
	}{
		{"none", 0, nil},
		{"some", 3, nil},
		{"all", 10, nil},
		{"too many", 15, ErrSampleSize},
		{"negative", -1, ErrInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := CreateRandStream(11)
			got, err := rs.Sample(ids, tt.k)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Sample(k=%d) error = %v, want %v", tt.k, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Sample(k=%d) unexpected error: %v", tt.k, err)
			}
			if len(got) != tt.k {
				t.Fatalf("Sample(k=%d) returned %d elements", tt.k, len(got))
			}
			seen := make(map[int]bool)
			for _, id := range got {
				if seen[id] {
					t.Errorf("Sample(k=%d) repeated %d: %v", tt.k, id, got)
				}
				if id < 0 || id >= len(ids) {
					t.Errorf("Sample(k=%d) returned %d, not in population", tt.k, id)
				}
				seen[id] = true
			}
		})
	}
}

func TestSampleSizeErrorDetails(t *testing.T) {
	_, err := CreateRandStream(1).Sample([]int{1, 2, 3}, 5)
	var sse *SampleSizeError
	if !errors.As(err, &sse) {
		t.Fatalf("error %v is not a *SampleSizeError", err)
	}
	if sse.Requested != 5 || sse.Population != 3 {
		t.Errorf("SampleSizeError = %+v, want Requested 5 Population 3", *sse)
	}
}

func TestNewSeed(t *testing.T) {
	for i := 0; i < 10; i++ {
		seed, err := NewSeed()
		if err != nil {
			t.Fatalf("NewSeed() error: %v", err)
		}
		if seed < 0 {
			t.Errorf("NewSeed() = %d, want non-negative", seed)
		}
	}
}
