// Package syncer keeps the persisted index in step with the corpus listing.
package syncer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// Prompt is shown before new documents are embedded.
const Prompt = "Update database? Y/N: "

// Outcome describes what a synchronization run did.
type Outcome int

const (
	// OutcomeCreated means no store existed and a new one was written.
	OutcomeCreated Outcome = iota
	// OutcomeUpToDate means the persisted index already matched the corpus.
	OutcomeUpToDate
	// OutcomeExtended means new documents were embedded and merged.
	OutcomeExtended
	// OutcomeDeclined means new documents were found but the update was not confirmed.
	OutcomeDeclined
	// OutcomeStale means documents were removed from the corpus; their vectors are kept.
	OutcomeStale
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpToDate:
		return "up-to-date"
	case OutcomeExtended:
		return "extended"
	case OutcomeDeclined:
		return "declined"
	case OutcomeStale:
		return "stale"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Index is the part of the indexer the synchronizer drives.
type Index interface {
	Exists() (bool, error)
	LoadIndex() ([]string, error)
	Create(ctx context.Context, ids []string) error
	Extend(ctx context.Context, newIDs, fullIndex []string) error
}

// Confirmer decides whether new documents should be embedded.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// AutoConfirmer answers every prompt with its own value.
type AutoConfirmer bool

// Confirm returns the fixed answer.
func (a AutoConfirmer) Confirm(string) (bool, error) { return bool(a), nil }

// PromptConfirmer writes the prompt to Out and reads one line from In.
// Only the literal "Y" confirms. Nothing past the newline is consumed, so In can be
// handed to another reader afterwards.
type PromptConfirmer struct {
	Out io.Writer
	In  io.Reader
}

// Confirm asks the question and reads the answer. EOF declines.
func (p PromptConfirmer) Confirm(prompt string) (bool, error) {
	if _, err := io.WriteString(p.Out, prompt); err != nil {
		return false, err
	}
	line, err := readLine(p.In)
	if err != nil {
		return false, err
	}
	return strings.TrimRight(line, "\r") == "Y", nil
}

// readLine reads up to and excluding the next newline one byte at a time.
// EOF ends the line without error.
func readLine(r io.Reader) (string, error) {
	var sb strings.Builder
	if br, ok := r.(io.ByteReader); ok {
		for {
			c, err := br.ReadByte()
			if err == io.EOF || (err == nil && c == '\n') {
				return sb.String(), nil
			}
			if err != nil {
				return "", err
			}
			sb.WriteByte(c)
		}
	}
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n == 1 {
			if buf[0] == '\n' {
				return sb.String(), nil
			}
			sb.WriteByte(buf[0])
			continue
		}
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			return "", err
		}
	}
}

// Synchronizer compares the corpus with the persisted index and updates the index.
type Synchronizer struct {
	index   Index
	confirm Confirmer
	logger  *zap.Logger
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the logger for progress messages.
func WithLogger(l *zap.Logger) Option {
	return func(s *Synchronizer) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a synchronizer. A nil confirmer declines every update.
func New(index Index, confirm Confirmer, opts ...Option) *Synchronizer {
	if confirm == nil {
		confirm = AutoConfirmer(false)
	}
	s := &Synchronizer{index: index, confirm: confirm, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run brings the index up to date with currentIDs. Removed documents are never pruned.
func (s *Synchronizer) Run(ctx context.Context, currentIDs []string) (Outcome, error) {
	s.logger.Info("checking for database")
	exists, err := s.index.Exists()
	if err != nil {
		return 0, err
	}
	if !exists {
		s.logger.Info("creating database", zap.Int("documents", len(currentIDs)))
		if err := s.index.Create(ctx, currentIDs); err != nil {
			return 0, err
		}
		return OutcomeCreated, nil
	}

	s.logger.Info("loading database")
	persisted, err := s.index.LoadIndex()
	if err != nil {
		return 0, err
	}
	added, removed := Diff(persisted, currentIDs)
	if len(added) == 0 && len(removed) == 0 {
		return OutcomeUpToDate, nil
	}
	if len(added) == 0 {
		s.logger.Warn("documents removed from corpus remain indexed", zap.Strings("removed", removed))
		return OutcomeStale, nil
	}

	s.logger.Info("new documents found", zap.Int("added", len(added)), zap.Int("removed", len(removed)))
	ok, err := s.confirm.Confirm(Prompt)
	if err != nil {
		return 0, fmt.Errorf("confirm update: %w", err)
	}
	if !ok {
		return OutcomeDeclined, nil
	}

	s.logger.Info("updating database", zap.Int("added", len(added)))
	full := make([]string, 0, len(persisted)+len(added))
	full = append(full, persisted...)
	full = append(full, added...)
	if err := s.index.Extend(ctx, added, full); err != nil {
		return 0, err
	}
	return OutcomeExtended, nil
}

// Diff returns the ids in current but not persisted, and those in persisted but not
// current, each in the order of its source list.
func Diff(persisted, current []string) (added, removed []string) {
	have := make(map[string]struct{}, len(persisted))
	for _, id := range persisted {
		have[id] = struct{}{}
	}
	want := make(map[string]struct{}, len(current))
	for _, id := range current {
		want[id] = struct{}{}
		if _, ok := have[id]; !ok {
			added = append(added, id)
			have[id] = struct{}{}
		}
	}
	for _, id := range persisted {
		if _, ok := want[id]; !ok {
			removed = append(removed, id)
		}
	}
	return added, removed
}
