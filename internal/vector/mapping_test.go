package vector

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/hyperjump/emnet/internal/errs"
)

func TestMapping_SetKeepsInsertionOrder(t *testing.T) {
	m := NewMapping(0)
	for _, id := range []string{"c", "a", "b"} {
		if err := m.Set(id, []float32{1, 2}); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.Set("a", []float32{3, 4}); err != nil {
		t.Fatal(err)
	}
	if got := m.IDs(); !reflect.DeepEqual(got, []string{"c", "a", "b"}) {
		t.Errorf("IDs() = %v", got)
	}
	if v, _ := m.Get("a"); v[0] != 3 {
		t.Errorf("overwrite lost: %v", v)
	}
	if m.Dimensions() != 2 || m.Len() != 3 {
		t.Errorf("dims=%d len=%d", m.Dimensions(), m.Len())
	}
}

func TestMapping_SetDimensionMismatch(t *testing.T) {
	m := NewMapping(3)
	err := m.Set("x", []float32{1, 2})
	if !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMapping_MergeOtherWins(t *testing.T) {
	base := NewMapping(1)
	_ = base.Set("a", []float32{1})
	_ = base.Set("b", []float32{2})
	other := NewMapping(1)
	_ = other.Set("b", []float32{20})
	_ = other.Set("c", []float32{30})
	if err := base.Merge(other); err != nil {
		t.Fatal(err)
	}
	if got := base.IDs(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("IDs() = %v", got)
	}
	if v, _ := base.Get("b"); v[0] != 20 {
		t.Errorf("b = %v, want 20", v)
	}
}

func TestMapping_EntriesExclude(t *testing.T) {
	m := NewMapping(1)
	_ = m.Set("a", []float32{1})
	_ = m.Set("b", []float32{2})
	_ = m.Set("c", []float32{3})
	ids, vecs := m.Entries("b")
	if !reflect.DeepEqual(ids, []string{"a", "c"}) {
		t.Errorf("ids = %v", ids)
	}
	if len(vecs) != 2 || vecs[1][0] != 3 {
		t.Errorf("vecs = %v", vecs)
	}
}

func TestMapping_EncodeDecodeRoundTrip(t *testing.T) {
	m := NewMapping(3)
	_ = m.Set("/corpus/b.txt", []float32{0.1, -0.2, 0.3})
	_ = m.Set("/corpus/a.txt", []float32{1, 0, 0})
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := DecodeMapping(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.IDs(), m.IDs()) {
		t.Errorf("ids = %v, want %v", got.IDs(), m.IDs())
	}
	for _, id := range m.IDs() {
		want, _ := m.Get(id)
		have, _ := got.Get(id)
		if !reflect.DeepEqual(have, want) {
			t.Errorf("%s: got %v, want %v", id, have, want)
		}
	}
}

func TestMapping_EncodeDecodeEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewMapping(0).Encode(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := DecodeMapping(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 0 {
		t.Errorf("Len() = %d", got.Len())
	}
}

func TestDecodeMapping_Corrupt(t *testing.T) {
	m := NewMapping(2)
	_ = m.Set("a", []float32{1, 2})
	var buf bytes.Buffer
	_ = m.Encode(&buf)
	full := buf.Bytes()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad magic", append([]byte("NOPE"), full[4:]...)},
		{"truncated header", full[:8]},
		{"truncated vector", full[:len(full)-3]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMapping(bytes.NewReader(tt.data))
			if !errors.Is(err, errs.ErrStorageRead) {
				t.Errorf("expected ErrStorageRead, got %v", err)
			}
		})
	}
}
