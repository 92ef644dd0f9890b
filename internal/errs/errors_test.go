package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrNotExistIsStorageRead(t *testing.T) {
	if !errors.Is(ErrNotExist, ErrStorageRead) {
		t.Fatal("ErrNotExist should match ErrStorageRead")
	}
	wrapped := fmt.Errorf("load index: %w", ErrNotExist)
	if !errors.Is(wrapped, ErrNotExist) || !errors.Is(wrapped, ErrStorageRead) {
		t.Errorf("wrapped error lost its sentinels: %v", wrapped)
	}
	if errors.Is(ErrStorageRead, ErrNotExist) {
		t.Error("ErrStorageRead must not match ErrNotExist")
	}
}
