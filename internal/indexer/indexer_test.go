package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/hyperjump/emnet/internal/config"
	"github.com/hyperjump/emnet/internal/embedding/embeddingtest"
	"github.com/hyperjump/emnet/internal/errs"
	"github.com/hyperjump/emnet/internal/storage"
	"github.com/hyperjump/emnet/internal/vector"
)

func writeCorpus(t *testing.T, files map[string]string) (string, []string) {
	t.Helper()
	root := t.TempDir()
	ids := make([]string, 0, len(files))
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, path)
	}
	sort.Strings(ids)
	return root, ids
}

func testIndexer(t *testing.T, root string, chunkSize int) (*Indexer, *embeddingtest.ConceptEmbedder) {
	t.Helper()
	emb := embeddingtest.Animals()
	store := storage.NewFileStore(filepath.Join(root, "emnet"))
	cfg := &config.IndexerConfig{ChunkSize: chunkSize, Workers: 2}
	return NewIndexer(store, emb, cfg), emb
}

func TestIndexer_CreateLoadRoundTrip(t *testing.T) {
	root, ids := writeCorpus(t, map[string]string{
		"a.txt": "cat dog",
		"b.txt": "cat cat cat",
		"c.txt": "airplane jet",
	})
	idx, _ := testIndexer(t, root, 512)
	ctx := context.Background()

	if err := idx.Create(ctx, ids); err != nil {
		t.Fatal(err)
	}
	m, index, err := idx.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(m.IDs(), ids) {
		t.Errorf("mapping keys = %v, want %v", m.IDs(), ids)
	}
	if !reflect.DeepEqual(index, ids) {
		t.Errorf("index = %v, want %v", index, ids)
	}
	got, _ := m.Get(ids[2])
	if !reflect.DeepEqual(got, []float32{0, 0, 2}) {
		t.Errorf("c.txt vector = %v", got)
	}
}

func TestIndexer_ExtendLoad(t *testing.T) {
	root, ids := writeCorpus(t, map[string]string{
		"a.txt": "cat",
		"b.txt": "dog",
	})
	idx, emb := testIndexer(t, root, 512)
	ctx := context.Background()
	if err := idx.Create(ctx, ids); err != nil {
		t.Fatal(err)
	}
	before := emb.Calls()

	newPath := filepath.Join(root, "c.txt")
	if err := os.WriteFile(newPath, []byte("jet"), 0644); err != nil {
		t.Fatal(err)
	}
	all := append(append([]string(nil), ids...), newPath)
	if err := idx.Extend(ctx, []string{newPath}, all); err != nil {
		t.Fatal(err)
	}
	if emb.Calls()-before != 1 {
		t.Errorf("extend embedded %d chunks, want 1", emb.Calls()-before)
	}
	m, index, err := idx.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(m.IDs(), all) || !reflect.DeepEqual(index, all) {
		t.Errorf("keys=%v index=%v, want %v", m.IDs(), index, all)
	}
}

func TestIndexer_ExtendRejectsInconsistentIndex(t *testing.T) {
	root, ids := writeCorpus(t, map[string]string{"a.txt": "cat", "b.txt": "dog"})
	idx, _ := testIndexer(t, root, 512)
	ctx := context.Background()
	if err := idx.Create(ctx, ids); err != nil {
		t.Fatal(err)
	}
	err := idx.Extend(ctx, nil, ids[:1])
	if !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	_, index, _ := idx.Load()
	if !reflect.DeepEqual(index, ids) {
		t.Errorf("index was modified: %v", index)
	}
}

func TestIndexer_ExtendWithoutStore(t *testing.T) {
	root, ids := writeCorpus(t, map[string]string{"a.txt": "cat"})
	idx, _ := testIndexer(t, root, 512)
	err := idx.Extend(context.Background(), ids, ids)
	if !errors.Is(err, errs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestIndexer_EmbedDocumentPoolsChunks(t *testing.T) {
	root, ids := writeCorpus(t, map[string]string{"a.txt": "cat cat dog dog jet"})
	idx, emb := testIndexer(t, root, 2)
	vec, err := idx.EmbedDocument(context.Background(), ids[0])
	if err != nil {
		t.Fatal(err)
	}
	// chunks: "cat cat" (2,0,0), "dog dog" (0,2,0), "jet" (0,0,1)
	want := []float32{2.0 / 3, 2.0 / 3, 1.0 / 3}
	for i := range want {
		if d := vec[i] - want[i]; d > 1e-6 || d < -1e-6 {
			t.Errorf("vec = %v, want %v", vec, want)
			break
		}
	}
	if emb.Calls() != 3 {
		t.Errorf("embedded %d chunks, want 3", emb.Calls())
	}
}

func TestIndexer_CreateRejectsEmptyDocument(t *testing.T) {
	root, ids := writeCorpus(t, map[string]string{"a.txt": "cat", "empty.txt": "  \n "})
	idx, _ := testIndexer(t, root, 512)
	err := idx.Create(context.Background(), ids)
	if !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "empty.txt") {
		t.Errorf("error should name the document: %v", err)
	}
	if ok, _ := idx.Exists(); ok {
		t.Error("nothing should be written when a document fails")
	}
}

func TestEmptyDocuments(t *testing.T) {
	root, ids := writeCorpus(t, map[string]string{"a.txt": "cat", "blank.txt": "\n", "empty.txt": ""})
	idx, _ := testIndexer(t, root, 512)
	err := fmt.Errorf("startup: %w", idx.Create(context.Background(), ids))

	got := EmptyDocuments(err)
	sort.Strings(got)
	want := []string{filepath.Join(root, "blank.txt"), filepath.Join(root, "empty.txt")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("EmptyDocuments = %v, want %v", got, want)
	}
	if got := EmptyDocuments(errs.ErrStorageWrite); got != nil {
		t.Errorf("unrelated error: got %v", got)
	}
}

func TestIndexer_CreateCancelled(t *testing.T) {
	root, ids := writeCorpus(t, map[string]string{"a.txt": "cat"})
	idx, _ := testIndexer(t, root, 512)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := idx.Create(ctx, ids); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

type failingStore struct{ Store }

func (failingStore) Save(*vector.Mapping, []string) error { return errs.ErrStorageWrite }

func TestIndexer_CreateSurfacesWriteError(t *testing.T) {
	_, ids := writeCorpus(t, map[string]string{"a.txt": "cat"})
	idx := NewIndexer(failingStore{}, embeddingtest.Animals(), &config.IndexerConfig{})
	if err := idx.Create(context.Background(), ids); !errors.Is(err, errs.ErrStorageWrite) {
		t.Errorf("expected ErrStorageWrite, got %v", err)
	}
}

func TestSameSet(t *testing.T) {
	tests := []struct {
		a, b []string
		want bool
	}{
		{[]string{"a", "b"}, []string{"b", "a"}, true},
		{[]string{"a", "b"}, []string{"a"}, false},
		{[]string{"a"}, []string{"a", "c"}, false},
		{nil, nil, true},
		{[]string{"a", "b"}, []string{"a", "a", "b"}, true},
	}
	for _, tt := range tests {
		if got := sameSet(tt.a, tt.b); got != tt.want {
			t.Errorf("sameSet(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
