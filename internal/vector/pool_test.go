package vector

import (
	"errors"
	"reflect"
	"testing"

	"github.com/hyperjump/emnet/internal/errs"
)

func TestMean(t *testing.T) {
	tests := []struct {
		name    string
		in      [][]float32
		want    []float32
		wantErr bool
	}{
		{"single vector is identity", [][]float32{{0.25, -1, 3}}, []float32{0.25, -1, 3}, false},
		{"identical vectors", [][]float32{{1, 2}, {1, 2}, {1, 2}}, []float32{1, 2}, false},
		{"element-wise mean", [][]float32{{0, 2}, {2, 4}}, []float32{1, 3}, false},
		{"empty input", nil, nil, true},
		{"dimension mismatch", [][]float32{{1, 2}, {1}}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Mean(tt.in)
			if tt.wantErr {
				if !errors.Is(err, errs.ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Mean() = %v, want %v", got, tt.want)
			}
		})
	}
}
