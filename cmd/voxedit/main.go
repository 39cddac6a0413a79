// Command voxedit edits and converts audio files from the command line.
//
// Usage:
//
//	voxedit [-config file.yaml] <command> [flags] args...
//
// Settings come from the YAML file when -config is given, otherwise from
// VOXEDIT_* environment variables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sethvargo/go-envconfig"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/voxedit"
	"github.com/ik5/voxedit/internal/config"
	"github.com/ik5/voxedit/waveform"
)

const usage = `usage: voxedit [-config file.yaml] <command> [flags] args...

commands:
  trim      [-in-place] -start MS -end MS SRC [DST]
  excise    -start MS -end MS SRC DST
  gain      -db DB SRC DST
  normalize [-peak FRACTION] SRC DST
  fade      [-in MS] [-out MS] SRC DST
  merge     -o DST IN IN...
  split     [-dir DIR] SRC
  convert   SRC DST
  waveform  [-bars N] FILE...
  duration  FILE...
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("voxedit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := fs.String("config", "", "path to a YAML configuration file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := loadConfig(ctx, *configPath)
	if err != nil {
		fmt.Fprintf(stderr, "voxedit: %v\n", err)
		return 1
	}
	logger := cfg.NewLogger(stderr)
	engine := voxedit.New(cfg.EngineOptions(logger, nil))

	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]
	err = dispatch(ctx, engine, cfg, cmd, cmdArgs, stdout, stderr)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		fmt.Fprint(stderr, usage)
		return 2
	default:
		logger.Error("command failed", "command", cmd, "error", err)
		return 1
	}
}

func loadConfig(ctx context.Context, path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.LoadEnv(ctx, envconfig.OsLookuper())
}

func dispatch(ctx context.Context, e *voxedit.Engine, cfg *config.Config, cmd string, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)

	switch cmd {
	case "trim":
		start := fs.Int64("start", 0, "start of the kept range in ms")
		end := fs.Int64("end", 0, "end of the kept range in ms")
		inPlace := fs.Bool("in-place", false, "rewrite SRC instead of writing DST")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *inPlace {
			if fs.NArg() != 1 {
				return errUsage
			}
			return e.TrimInPlace(ctx, fs.Arg(0), *start, *end)
		}
		src, dst, err := pair(fs)
		if err != nil {
			return err
		}
		return e.Trim(ctx, src, dst, *start, *end)

	case "excise":
		start := fs.Int64("start", 0, "start of the removed range in ms")
		end := fs.Int64("end", 0, "end of the removed range in ms")
		if err := fs.Parse(args); err != nil {
			return err
		}
		src, dst, err := pair(fs)
		if err != nil {
			return err
		}
		return e.Excise(ctx, src, dst, *start, *end)

	case "gain":
		db := fs.Float64("db", 0, "gain in decibels")
		if err := fs.Parse(args); err != nil {
			return err
		}
		src, dst, err := pair(fs)
		if err != nil {
			return err
		}
		return e.ApplyGain(ctx, src, dst, *db)

	case "normalize":
		peak := fs.Float64("peak", cfg.Edit.TargetPeak, "target peak as a fraction of full scale")
		if err := fs.Parse(args); err != nil {
			return err
		}
		src, dst, err := pair(fs)
		if err != nil {
			return err
		}
		return e.Normalize(ctx, src, dst, *peak)

	case "fade":
		in := fs.Int64("in", 0, "fade-in length in ms")
		out := fs.Int64("out", 0, "fade-out length in ms")
		if err := fs.Parse(args); err != nil {
			return err
		}
		src, dst, err := pair(fs)
		if err != nil {
			return err
		}
		return e.Fade(ctx, src, dst, *in, *out)

	case "merge":
		out := fs.String("o", "", "output path; the extension follows the inputs")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *out == "" {
			return errUsage
		}
		path, err := e.Merge(ctx, fs.Args(), *out)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, path)
		return nil

	case "split":
		dir := fs.String("dir", ".", "directory receiving the parts")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return errUsage
		}
		paths, err := e.SplitOnSilence(ctx, fs.Arg(0), *dir)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(stdout, p)
		}
		return nil

	case "convert":
		if err := fs.Parse(args); err != nil {
			return err
		}
		src, dst, err := pair(fs)
		if err != nil {
			return err
		}
		return e.Convert(ctx, src, dst)

	case "waveform":
		bars := fs.Int("bars", cfg.Waveform.Bars, "number of bars")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if fs.NArg() == 0 {
			return errUsage
		}
		return waveforms(ctx, e, fs.Args(), *bars, cfg.Workers, stdout)

	case "duration":
		if err := fs.Parse(args); err != nil {
			return err
		}
		if fs.NArg() == 0 {
			return errUsage
		}
		for _, p := range fs.Args() {
			ms, err := e.Duration(ctx, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "%s\t%d\n", p, ms)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

// pair returns the SRC and DST positional arguments.
func pair(fs *flag.FlagSet) (string, string, error) {
	if fs.NArg() != 2 {
		return "", "", errUsage
	}
	return fs.Arg(0), fs.Arg(1), nil
}

// waveforms computes envelopes for paths with at most workers files in
// flight and prints them in input order.
func waveforms(ctx context.Context, e *voxedit.Engine, paths []string, bars, workers int, stdout io.Writer) error {
	results := make([][]int, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range paths {
		g.Go(func() error {
			v, err := e.Waveform(gctx, p, bars)
			if err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, p := range paths {
		fmt.Fprintf(stdout, "%s\t%s\n", p, waveform.FormatBars(results[i]))
	}
	return nil
}
