// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"contigr/internal/cli"
	"contigr/internal/config"
	"contigr/internal/ctxlog"
	"contigr/internal/metrics"
	"contigr/internal/output"
	"contigr/internal/pipeline"
	"contigr/internal/runutil"
	"contigr/internal/version"
	"contigr/internal/writers"

	"github.com/google/uuid"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitUsage       = 2
	ExitIO          = 3
	ExitInternal    = 4
	ExitInterrupted = 130
)

// flush writes out buffered stdout; a closed pipe is not an error.
func flush(outw *bufio.Writer, stderr io.Writer, code int) int {
	if err := outw.Flush(); writers.IsBrokenPipe(err) {
		return ExitOK
	} else if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return ExitIO
	}
	return code
}

// RunContext runs one invocation and returns its exit code.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) (code int) {
	outw := bufio.NewWriter(stdout)
	defer func() { _ = outw.Flush() }()

	fs := cli.NewFlagSet("contigr")
	fs.SetOutput(io.Discard)

	if len(argv) == 0 {
		fs.SetOutput(outw)
		fs.Usage()
		return flush(outw, stderr, ExitOK)
	}

	opts, err := cli.ParseArgs(fs, argv)
	if err != nil {
		fs.SetOutput(outw)
		if errors.Is(err, flag.ErrHelp) {
			fs.Usage()
			return flush(outw, stderr, ExitOK)
		}
		_, _ = fmt.Fprintln(stderr, err)
		fs.Usage()
		return flush(outw, stderr, ExitUsage)
	}

	if opts.Version {
		_, _ = fmt.Fprintf(outw, "contigr version %s\n", version.Version)
		return flush(outw, stderr, ExitOK)
	}

	p, err := resolveParams(opts)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return ExitUsage
	}

	runID := uuid.NewString()
	log := ctxlog.New(p.LogLevel, p.LogFormat, stderr).With("run_id", runID)
	ctx := ctxlog.WithLogger(parent, log)

	defer func() {
		if r := recover(); r != nil {
			log.Error("internal error", "panic", r)
			_, _ = fmt.Fprintf(stderr, "internal error: %v\n", r)
			code = ExitInternal
		}
	}()

	var rec *metrics.Recorder
	if p.MetricsFile != "" {
		rec = metrics.New()
	}

	started := time.Now()
	log.Info("starting", "dir", p.Dir, "version", version.Version)
	res, err := pipeline.Run(ctx, p, rec)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("interrupted")
			return ExitInterrupted
		}
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return ExitIO
	}

	runLog := output.RunLog{
		RunID:         runID,
		Started:       started,
		Args:          argv,
		Summary:       res.Summary,
		TotalReads:    res.TotalReads,
		MinKmerLength: res.MinKmerLength,
		Categories:    res.Resolution.Categories,
		Rounds:        res.Resolution.Rounds,
	}
	if err := output.AppendLog(filepath.Join(p.Dir, runutil.LogFile), runLog); err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return ExitIO
	}
	if rec != nil {
		if err := rec.WriteFile(p.MetricsFile); err != nil {
			_, _ = fmt.Fprintln(stderr, "error:", err)
			return ExitIO
		}
	}
	log.Info(runLog.FinalLine(), "elapsed", time.Since(started))
	return ExitOK
}

// resolveParams layers defaults, the params file and the flags, then checks
// the result.
func resolveParams(opts cli.Options) (config.Params, error) {
	p := config.Defaults()
	p.Dir = opts.Dir
	if opts.ConfigPath != "" {
		f, err := config.Load(opts.ConfigPath)
		if err != nil {
			return p, err
		}
		if err := config.Apply(&p, f); err != nil {
			return p, fmt.Errorf("%s: %w", opts.ConfigPath, err)
		}
	}
	if err := config.Apply(&p, opts.Set); err != nil {
		return p, err
	}
	if err := config.Validate(&p); err != nil {
		return p, err
	}
	return p, nil
}

// Run is RunContext with a background context.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}
