package vector

import (
	"math"
	"reflect"
	"testing"
)

func resultIDs(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.ID
	}
	return out
}

func TestTopK(t *testing.T) {
	tests := []struct {
		name   string
		ids    []string
		scores []float64
		k      int
		want   []string
	}{
		{"descending", []string{"a", "b", "c"}, []float64{0.1, 0.9, 0.5}, 3, []string{"b", "c", "a"}},
		{"truncates", []string{"a", "b", "c", "d"}, []float64{0.4, 0.3, 0.2, 0.1}, 2, []string{"a", "b"}},
		{"fewer than k", []string{"a", "b"}, []float64{0.2, 0.8}, 5, []string{"b", "a"}},
		{"ties keep order", []string{"x", "y", "z"}, []float64{0.5, 0.9, 0.5}, 3, []string{"y", "x", "z"}},
		{"zero k", []string{"a"}, []float64{1}, 0, nil},
		{"empty", nil, nil, 5, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TopK(tt.ids, tt.scores, tt.k)
			if tt.want == nil {
				if len(got) != 0 {
					t.Errorf("expected no results, got %v", got)
				}
				return
			}
			if !reflect.DeepEqual(resultIDs(got), tt.want) {
				t.Errorf("TopK = %v, want %v", resultIDs(got), tt.want)
			}
		})
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"scaled", []float32{1, 1}, []float32{3, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"length mismatch", []float32{1}, []float32{1, 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CosineSimilarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}
