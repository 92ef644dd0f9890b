// Package main is the emnet CLI entry point.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/emnet/internal/app"
	"github.com/hyperjump/emnet/internal/cli"
	"github.com/hyperjump/emnet/internal/config"
	"github.com/hyperjump/emnet/internal/errs"
	"github.com/hyperjump/emnet/internal/models"
	"github.com/hyperjump/emnet/internal/search"
	"github.com/hyperjump/emnet/internal/server"
	"github.com/hyperjump/emnet/internal/syncer"
	"github.com/hyperjump/emnet/internal/watcher"
	"github.com/hyperjump/emnet/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "emnet.yaml"

// errUsage is returned after usage has been printed for bad arguments.
var errUsage = errors.New("usage")

// loadConfig loads .env, then the config file at path (defaults when it does not exist),
// then EMNET_* overrides. A non-empty corpus flag wins over all of them.
func loadConfig(path, corpusFlag string) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if corpusFlag != "" {
		root, err := filepath.Abs(corpusFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid corpus path: %w", err)
		}
		cfg.Corpus.Root = root
	}
	return cfg, nil
}

func main() {
	args := os.Args[1:]
	command := "run"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command, args = args[0], args[1:]
	}
	// One buffered reader serves both the update prompt and the query loop.
	stdin := bufio.NewReader(os.Stdin)
	var err error
	switch command {
	case "run":
		err = runREPL(args, stdin, os.Stdout, cli.IsTerminal(os.Stdin))
	case "search":
		err = runSearch(args, stdin, os.Stdout)
	case "index":
		err = runIndex(args, stdin, os.Stdout)
	case "serve":
		err = runServe(args, stdin, os.Stdout)
	case "status":
		err = runStatus(args, os.Stdout)
	case "version", "--version", "-v":
		fmt.Printf("emnet version %s\n", version)
	case "help", "--help", "-h":
		printUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage(os.Stderr)
		os.Exit(1)
	}
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			cli.WriteErrorHints(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// commonFlags are accepted by every command that touches the corpus.
type commonFlags struct {
	configPath *string
	corpus     *string
	debug      *bool
	yes        *bool
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	return &commonFlags{
		configPath: fs.String("config", defaultConfigPath, "config file path"),
		corpus:     fs.String("corpus", "", "corpus directory (default: config, $EMNET_CORPUS or the working directory)"),
		debug:      fs.Bool("debug", false, "enable debug logging"),
		yes:        fs.Bool("yes", false, "embed new documents without asking"),
	}
}

// newApp loads the configuration and wires the application. Prompts are written to
// out and answered from in unless --yes was given.
func (c *commonFlags) newApp(in io.Reader, out io.Writer, opts ...app.Option) (*app.App, *zap.Logger, error) {
	cfg, err := loadConfig(*c.configPath, *c.corpus)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	debugMode := cfg.Debug || *c.debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Debug("config loaded",
		zap.String("config_path", *c.configPath),
		zap.String("corpus", cfg.Corpus.Root),
		zap.String("provider", cfg.Embedding.Provider))

	var confirm syncer.Confirmer = syncer.PromptConfirmer{Out: out, In: in}
	if *c.yes {
		confirm = syncer.AutoConfirmer(true)
	}
	all := append([]app.Option{app.WithLogger(logger), app.WithConfirmer(confirm)}, opts...)
	return app.New(cfg, all...), logger, nil
}

// runREPL starts the application and serves queries from in until :quit or EOF.
func runREPL(args []string, in io.Reader, out io.Writer, interactive bool) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	common := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	a, logger, err := common.newApp(in, out)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if _, err := a.Start(ctx); err != nil {
		return err
	}
	return cli.NewREPL(a, in, out, interactive).Run(ctx)
}

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: emnet search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. With --by file the query is a file name in the corpus.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  emnet search aztec empire
  emnet search --by file Nahuatl_language.txt
  emnet search --output json "machine learning"
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runSearch(args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	common := addCommonFlags(fs)
	by := fs.String("by", "topic", "search mode: topic or file")
	outputFormat := fs.String("output", "text", "output format: text, verbose or json")
	fs.Usage = func() { printSearchUsage(fs) }
	if err := fs.Parse(searchArgsReorder(args)); err != nil {
		return errUsage
	}
	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		return errUsage
	}
	mode, err := search.ParseMode(*by)
	if err != nil {
		return err
	}
	verbose := *outputFormat == "verbose"
	format := cli.OutputText
	if !verbose {
		if format, err = cli.ParseOutputFormat(*outputFormat); err != nil {
			return err
		}
	}

	a, logger, err := common.newApp(in, out)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer a.Close()

	ctx := context.Background()
	if _, err := a.Start(ctx); err != nil {
		return err
	}
	response, err := a.Search(ctx, &models.SearchQuery{Mode: mode.String(), Query: queryStr})
	if errors.Is(err, errs.ErrNotFound) {
		cli.WriteNotFound(out, err)
		return errUsage
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if verbose {
		cli.WriteVerboseResults(out, response)
		return nil
	}
	return cli.WriteSearchResults(out, response, format)
}

func runIndex(args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("index", flag.ContinueOnError)
	common := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	a, logger, err := common.newApp(in, out)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer a.Close()

	start := time.Now()
	outcome, err := a.EnsureIndexCurrent(context.Background())
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	fmt.Fprintf(out, "Index %s (%s)\n", outcome, time.Since(start).Round(time.Millisecond))
	return nil
}

func runServe(args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	common := addCommonFlags(fs)
	watch := fs.Bool("watch", false, "re-index automatically when corpus files change")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	a, logger, err := common.newApp(in, out)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if _, err := a.Start(ctx); err != nil {
		return err
	}

	cfg := a.Config()
	if *watch {
		watchSvc := watcher.NewWatcher(cfg.Corpus.Root, cfg.Corpus.Pattern,
			func() {
				outcome, err := a.Sync(ctx, syncer.AutoConfirmer(true))
				if err != nil {
					logger.Warn("watch sync failed", zap.Error(err))
					return
				}
				logger.Info("watch sync", zap.Stringer("outcome", outcome))
			},
			watcher.WithLogger(logger),
			watcher.WithDebounce(cfg.Watch.Debounce),
			watcher.WithIgnore(cfg.Corpus.StoreDir),
		)
		if err := watchSvc.Start(ctx); err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer watchSvc.Stop()
	}

	srv := server.NewServer(a, &cfg.Server, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

func runStatus(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	common := addCommonFlags(fs)
	outputFormat := fs.String("output", "text", "output format: text or json")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		return err
	}
	a, logger, err := common.newApp(nil, io.Discard)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer a.Close()

	st, err := a.Status()
	if err != nil {
		return err
	}
	if format == cli.OutputJSON {
		return cli.WriteJSON(out, st)
	}
	fmt.Fprintf(out, "corpus:             %s\n", st.CorpusRoot)
	fmt.Fprintf(out, "corpus_documents:   %d   # files matching the corpus pattern\n", st.CorpusDocuments)
	fmt.Fprintf(out, "indexed_documents:  %d   # documents with a stored vector\n", st.IndexedDocuments)
	fmt.Fprintf(out, "new_documents:      %d   # not yet embedded\n", st.NewDocuments)
	fmt.Fprintf(out, "stale_documents:    %d   # removed from the corpus but still indexed\n", st.StaleDocuments)
	fmt.Fprintf(out, "disk_usage_bytes:   %d\n", st.DiskUsageBytes)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "# configuration")
	fmt.Fprintf(out, "store_path:         %s\n", st.StorePath)
	fmt.Fprintf(out, "provider:           %s\n", st.Provider)
	if st.ModelPath != "" {
		fmt.Fprintf(out, "model_path:         %s\n", st.ModelPath)
	}
	fmt.Fprintf(out, "embedding_dims:     %d\n", st.Dimensions)
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `emnet - Local semantic search over a folder of text files

Usage:
  emnet [run] [flags]             Index the corpus, then answer queries interactively
  emnet search [flags] <query>    Run one query and exit
  emnet index [flags]             Bring the index up to date with the corpus
  emnet serve [flags]             Start the HTTP API
  emnet status [flags]            Show corpus and index status
  emnet version                   Show version
  emnet help                      Show this help

Common Flags:
  --config string    Config file path (default: emnet.yaml)
  --corpus string    Corpus directory (default: $EMNET_CORPUS or the working directory)
  --debug            Enable debug logging
  --yes              Embed new documents without asking

Search Flags:
  --by string        topic (default) or file
  --output string    text (default), verbose or json

Serve Flags:
  --watch            Re-index when corpus files change

Status Flags:
  --output string    text (default) or json

Interactive Commands:
  :topic             Search by topic
  :file              Search by file name
  :show <name>       Print a file
  :quit              Exit

Examples:
  emnet --corpus ~/wiki
  emnet search aztec empire
  emnet search --by file Nahuatl_language.txt
  emnet index --yes
  emnet serve --watch
  emnet status --output json`)
}
