package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hyperjump/emnet/internal/corpus"
	"github.com/hyperjump/emnet/internal/errs"
	"github.com/hyperjump/emnet/internal/models"
	"github.com/hyperjump/emnet/internal/search"
	"github.com/mattn/go-isatty"
)

// NotFoundMessage is printed when a file-mode query names an unindexed file.
const NotFoundMessage = "No such file found."

// Searcher is what the interactive loop queries.
type Searcher interface {
	Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error)
	Document(name string) (*corpus.Document, error)
}

// REPL reads queries line by line and prints the matching file names.
type REPL struct {
	searcher    Searcher
	in          io.Reader
	out         io.Writer
	mode        search.Mode
	interactive bool
}

// NewREPL creates a loop reading from in and writing to out, starting in topic mode.
// The banner and prompt are only shown when interactive is true.
func NewREPL(searcher Searcher, in io.Reader, out io.Writer, interactive bool) *REPL {
	return &REPL{searcher: searcher, in: in, out: out, interactive: interactive}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Mode returns the current search mode.
func (r *REPL) Mode() search.Mode {
	return r.mode
}

// Run serves queries until :quit, EOF or ctx is cancelled. Search errors are reported
// and the loop continues.
func (r *REPL) Run(ctx context.Context) error {
	if r.interactive {
		r.printBanner()
	}
	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if r.interactive {
			fmt.Fprintf(r.out, "[%s] > ", r.mode)
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if quit := r.command(line); quit {
				return nil
			}
			continue
		}
		r.query(ctx, line)
	}
}

func (r *REPL) command(line string) (quit bool) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case ":quit", ":q", ":exit":
		return true
	case ":topic":
		r.mode = search.ModeTopic
		fmt.Fprintf(r.out, "Mode: %s\n", r.mode)
	case ":file":
		r.mode = search.ModeFile
		fmt.Fprintf(r.out, "Mode: %s\n", r.mode)
	case ":show":
		doc, err := r.searcher.Document(arg)
		if err != nil {
			r.report(err)
			return false
		}
		WriteDocument(r.out, doc)
	case ":help":
		r.printHelp()
	default:
		fmt.Fprintf(r.out, "Unknown command %s (try :help)\n", name)
	}
	return false
}

func (r *REPL) query(ctx context.Context, text string) {
	resp, err := r.searcher.Search(ctx, &models.SearchQuery{Mode: r.mode.String(), Query: text})
	if err != nil {
		r.report(err)
		return
	}
	writeSearchResultsText(r.out, resp)
}

func (r *REPL) report(err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		WriteNotFound(r.out, err)
	case errors.Is(err, errs.ErrInvalidInput):
		fmt.Fprintf(r.out, "Invalid input: %v\n", err)
	default:
		fmt.Fprintf(r.out, "Search failed: %v\n", err)
	}
}

func (r *REPL) printBanner() {
	fmt.Fprintln(r.out, "emnet: semantic search over your text files")
	r.printHelp()
}

func (r *REPL) printHelp() {
	fmt.Fprintln(r.out, `Type a query and press Enter.
  :topic        search by topic (default)
  :file         search by file name; results exclude the file itself
  :show <name>  print a file
  :quit         exit`)
}

// WriteNotFound prints NotFoundMessage and, when err carries one, the closest indexed name.
func WriteNotFound(w io.Writer, err error) {
	fmt.Fprintln(w, NotFoundMessage)
	var nf *search.NotFoundError
	if errors.As(err, &nf) && nf.Suggestion != "" {
		fmt.Fprintf(w, "Did you mean %s?\n", nf.Suggestion)
	}
}
