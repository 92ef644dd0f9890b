package e2e

import (
	"os"
	"testing"
)

func TestBuildCorpus_Counts(t *testing.T) {
	c := BuildCorpus(len(topics) + 2)
	if len(c.Documents) != len(topics)+2 {
		t.Errorf("expected %d documents, got %d", len(topics)+2, len(c.Documents))
	}
	if len(c.TestCases) != len(topics) {
		t.Errorf("expected %d test cases, got %d", len(topics), len(c.TestCases))
	}
}

func TestBuildCorpus_NamesAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, d := range BuildCorpus(2 * len(topics)).Documents {
		if seen[d.Name] {
			t.Errorf("duplicate name %q", d.Name)
		}
		seen[d.Name] = true
	}
}

func TestBuildCorpus_ExpectedDocsContainQueryPhrase(t *testing.T) {
	c := BuildCorpus(len(topics))
	byName := make(map[string]Document)
	for _, d := range c.Documents {
		byName[d.Name] = d
	}
	for _, tc := range c.TestCases {
		doc, ok := byName[tc.ExpectedName]
		if !ok {
			t.Errorf("expected doc %q not in corpus", tc.ExpectedName)
			continue
		}
		if !containsPhrase(doc, tc.Query) {
			t.Errorf("doc %q does not contain query phrase %q", doc.Name, tc.Query)
		}
	}
}

func TestCorpus_TwinAndWrite(t *testing.T) {
	c := BuildCorpus(len(topics) + 1)
	twin, ok := c.Twin(c.Documents[len(topics)].Name)
	if !ok || twin != c.Documents[0].Name {
		t.Errorf("Twin() = %q, %v", twin, ok)
	}
	if _, ok := c.Twin(c.Documents[0].Name); ok {
		t.Error("first occurrence has no twin")
	}

	dir := t.TempDir()
	if err := c.Write(dir); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != len(c.Documents) {
		t.Errorf("wrote %d files, want %d", len(entries), len(c.Documents))
	}
}
