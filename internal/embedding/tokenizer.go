package embedding

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Special tokens of the BERT uncased vocabulary used by all-MiniLM-L6-v2.
const (
	tokenPAD = "[PAD]"
	tokenUNK = "[UNK]"
	tokenCLS = "[CLS]"
	tokenSEP = "[SEP]"

	subwordPrefix = "##"
	maxWordRunes  = 100
)

// Tokenizer produces token IDs for BERT-style models (input_ids, attention_mask, token_type_ids).
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64)
}

// WordPiece is the BERT uncased tokenizer: basic tokenization (lowercase, accent
// stripping, punctuation split) followed by greedy longest-match subword lookup.
type WordPiece struct {
	vocab map[string]int64
	pad   int64
	unk   int64
	cls   int64
	sep   int64
}

// LoadVocab reads a vocab.txt file. The id of a token is its zero-based line number.
func LoadVocab(path string) (map[string]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vocabulary: %w", err)
	}
	defer f.Close()

	vocab := make(map[string]int64)
	scanner := bufio.NewScanner(f)
	var id int64
	for scanner.Scan() {
		if token := strings.TrimRight(scanner.Text(), "\r"); token != "" {
			vocab[token] = id
		}
		id++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vocabulary %s: %w", path, err)
	}
	return vocab, nil
}

// NewWordPiece creates a tokenizer over vocab, which must hold [CLS], [SEP] and [UNK].
// A missing [PAD] pads with id 0.
func NewWordPiece(vocab map[string]int64) (*WordPiece, error) {
	w := &WordPiece{vocab: vocab}
	for _, special := range []struct {
		token string
		id    *int64
	}{{tokenUNK, &w.unk}, {tokenCLS, &w.cls}, {tokenSEP, &w.sep}} {
		id, ok := vocab[special.token]
		if !ok {
			return nil, fmt.Errorf("vocabulary has no %s token", special.token)
		}
		*special.id = id
	}
	w.pad = vocab[tokenPAD]
	return w, nil
}

// NewWordPieceFromFile loads path with LoadVocab and creates a tokenizer over it.
func NewWordPieceFromFile(path string) (*WordPiece, error) {
	vocab, err := LoadVocab(path)
	if err != nil {
		return nil, err
	}
	w, err := NewWordPiece(vocab)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}

// Tokens returns the word pieces of text without special tokens.
func (w *WordPiece) Tokens(text string) []string {
	var pieces []string
	for _, word := range basicTokenize(text) {
		pieces = append(pieces, w.wordPieces(word)...)
	}
	return pieces
}

// Tokenize wraps the piece ids in [CLS] ... [SEP], truncating the pieces to fit,
// and pads to maxTokens.
func (w *WordPiece) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens < 2 {
		maxTokens = 256
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)
	for i := range inputIDs {
		inputIDs[i] = w.pad
	}

	pieces := w.Tokens(text)
	if len(pieces) > maxTokens-2 {
		pieces = pieces[:maxTokens-2]
	}
	inputIDs[0] = w.cls
	attentionMask[0] = 1
	pos := 1
	for _, piece := range pieces {
		id, ok := w.vocab[piece]
		if !ok {
			id = w.unk
		}
		inputIDs[pos] = id
		attentionMask[pos] = 1
		pos++
	}
	inputIDs[pos] = w.sep
	attentionMask[pos] = 1
	return inputIDs, attentionMask, tokenTypeIDs
}

// wordPieces splits one basic token into the longest vocabulary matches, left to right.
// A word with any unmatched remainder becomes a single [UNK].
func (w *WordPiece) wordPieces(word string) []string {
	runes := []rune(word)
	if len(runes) > maxWordRunes {
		return []string{tokenUNK}
	}
	var pieces []string
	for start := 0; start < len(runes); {
		end := len(runes)
		match := ""
		for ; start < end; end-- {
			candidate := string(runes[start:end])
			if start > 0 {
				candidate = subwordPrefix + candidate
			}
			if _, ok := w.vocab[candidate]; ok {
				match = candidate
				break
			}
		}
		if match == "" {
			return []string{tokenUNK}
		}
		pieces = append(pieces, match)
		start = end
	}
	return pieces
}

// basicTokenize lowercases text, strips accents, drops control characters, and
// splits on whitespace, punctuation and CJK ideographs.
func basicTokenize(text string) []string {
	var b strings.Builder
	for _, r := range norm.NFD.String(strings.ToLower(text)) {
		switch {
		case r == 0 || r == unicode.ReplacementChar || unicode.Is(unicode.Mn, r):
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case unicode.IsControl(r) || unicode.Is(unicode.Cf, r):
		case isPunctuation(r) || unicode.Is(unicode.Han, r):
			b.WriteRune(' ')
			b.WriteRune(r)
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Fields(b.String())
}

// isPunctuation treats all non-alphanumeric ASCII as punctuation, as BERT does.
func isPunctuation(r rune) bool {
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) || (r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}

// NormalizeWords lowercases text, splits on whitespace and trims surrounding punctuation.
// Words that are only punctuation are dropped.
func NormalizeWords(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	words := fields[:0]
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool { return unicode.IsPunct(r) || unicode.IsSymbol(r) })
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}
