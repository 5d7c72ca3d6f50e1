package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/eydough/awc-code-updater/internal/anilist"
	"github.com/eydough/awc-code-updater/internal/challenge"
	"github.com/eydough/awc-code-updater/internal/completion"
	"github.com/eydough/awc-code-updater/internal/config"
	"github.com/eydough/awc-code-updater/internal/logger"
	"github.com/eydough/awc-code-updater/internal/service"
	"github.com/eydough/awc-code-updater/internal/validation"
	"github.com/eydough/awc-code-updater/internal/watcher"
)

// errUsage marks unparseable flags and invalid flag combinations.
var errUsage = errors.New("usage")

// cliFlags holds the command-specific flags.
type cliFlags struct {
	user      *string
	in        *string
	out       *string
	json      *bool
	mediaType *string
	refresh   *bool
	watch     *bool
}

func registerCLIFlags(fs *flag.FlagSet) *cliFlags {
	return &cliFlags{
		user:      fs.String("user", "", "AniList username (required)"),
		in:        fs.String("in", "", "Challenge text file (default: stdin)"),
		out:       fs.String("out", "", "Output file for the updated text (default: stdout)"),
		json:      fs.Bool("json", false, "Print the full result as JSON on stdout"),
		mediaType: fs.String("type", "", "Only update anime or manga entries"),
		refresh:   fs.Bool("refresh", false, "Ignore cached completion data"),
		watch:     fs.Bool("watch", false, "Re-run whenever the -in file changes"),
	}
}

// runner holds everything one update needs.
type runner struct {
	flags  *cliFlags
	svc    *service.ChallengeService
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("awc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags := registerCLIFlags(fs)

	cfg, err := config.Load(fs, args)
	if err != nil {
		if errors.Is(err, config.ErrInvalidFlags) && !errors.Is(err, flag.ErrHelp) {
			return fmt.Errorf("%w: %w", errUsage, err)
		}
		return err
	}
	if err := checkFlags(flags); err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Writer:      stderr,
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	client, err := anilist.New(log.Logger, anilist.Options{
		BaseURL: cfg.AniList.URL,
		Timeout: cfg.AniList.Timeout,
		RPS:     cfg.AniList.RPS,
		Burst:   cfg.AniList.Burst,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	var source service.CompletionSource = client
	if cfg.CacheEnabled() {
		store, err := completion.OpenBadgerStore(cfg.Cache.Path, cfg.Cache.TTL, log.Logger)
		if err != nil {
			// A second awc process holds the directory lock; run uncached.
			log.Warn("completion cache unavailable", "path", cfg.Cache.Path, "error", err)
		} else {
			defer store.Close()
			source = completion.NewCachedSource(client, store, log.Logger)
		}
	}

	parser := challenge.NewParser(challenge.Windows{
		HeaderLookBack: cfg.Parser.HeaderWindow,
		DateLookAhead:  cfg.Parser.DateWindow,
	})

	r := &runner{
		flags:  flags,
		svc:    service.NewChallengeService(parser, source, validation.New(), log.Logger),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: log.Logger,
	}

	if *flags.watch {
		return r.watch(ctx)
	}
	return r.updateOnce(ctx)
}

// checkFlags rejects flag combinations that cannot work.
func checkFlags(f *cliFlags) error {
	if *f.watch {
		if *f.in == "" {
			return fmt.Errorf("%w: -watch requires -in", errUsage)
		}
		if *f.out != "" && samePath(*f.in, *f.out) {
			return fmt.Errorf("%w: -watch cannot write back to the -in file", errUsage)
		}
	}
	return nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// updateOnce reads the challenge, updates it and writes the result.
func (r *runner) updateOnce(ctx context.Context) error {
	text, err := r.readInput()
	if err != nil {
		return err
	}

	result, err := r.svc.Update(ctx, service.UpdateRequest{
		Username:  *r.flags.user,
		Text:      text,
		Refresh:   *r.flags.refresh,
		MediaType: challenge.MediaType(strings.ToLower(*r.flags.mediaType)),
	})
	if err != nil {
		return err
	}

	return r.writeResult(result)
}

func (r *runner) readInput() (string, error) {
	if *r.flags.in == "" {
		data, err := io.ReadAll(r.stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(*r.flags.in)
	if err != nil {
		return "", fmt.Errorf("read challenge: %w", err)
	}
	return string(data), nil
}

func (r *runner) writeResult(result *service.UpdateResult) error {
	if *r.flags.out != "" {
		if err := os.WriteFile(*r.flags.out, []byte(result.Text), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	if *r.flags.json {
		enc := json.NewEncoder(r.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
	} else if *r.flags.out == "" {
		if _, err := io.WriteString(r.stdout, result.Text); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	printStats(r.stderr, result.Stats)
	return nil
}

// printStats writes the progress summary and the remaining entries.
func printStats(w io.Writer, stats challenge.Stats) {
	fmt.Fprintln(w, stats.Summary())
	for _, title := range stats.RemainingMedia {
		fmt.Fprintf(w, "  - %s\n", title)
	}
}

// watch runs an update now and again after every settled change to -in.
// Failed runs are reported and watching continues.
func (r *runner) watch(ctx context.Context) error {
	w, err := watcher.New(r.logger, *r.flags.in, watcher.Options{})
	if err != nil {
		return err
	}
	defer w.Stop()

	go func() { _ = w.Start(ctx) }()

	r.runAndReport(ctx)
	r.logger.Info("watching for changes", "path", w.Path())

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events():
			if !ok {
				return nil
			}
			if event.Type == watcher.EventRemoved {
				r.logger.Warn("challenge file removed; waiting for it to return", "path", event.Path)
				continue
			}
			r.runAndReport(ctx)
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			r.logger.Warn("watcher error", "error", err)
		}
	}
}

func (r *runner) runAndReport(ctx context.Context) {
	if err := r.updateOnce(ctx); err != nil {
		r.logger.Error("update failed", "error", err)
	}
}
