// Package app runs the fetch, patch, write loop over every configured
// channel subdir.
package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/git-pkgs/repodata-patches/internal/config"
	"github.com/git-pkgs/repodata-patches/internal/core"
	"github.com/git-pkgs/repodata-patches/internal/output"
	"github.com/git-pkgs/repodata-patches/internal/plan"
	"go.trai.ch/zerr"
)

var (
	// ErrFetchFailed is returned when repodata for a pair cannot be fetched or decoded.
	ErrFetchFailed = zerr.New("failed to fetch repodata")

	// ErrPatchFailed is returned when a record cannot be patched.
	ErrPatchFailed = zerr.New("failed to generate patch instructions")

	// ErrWriteFailed is returned when instructions cannot be written.
	ErrWriteFailed = zerr.New("failed to write patch instructions")

	// ErrPlanFailed is returned when a plan report cannot be built or printed.
	ErrPlanFailed = zerr.New("failed to build plan")
)

// RepodataSource provides decoded repodata for a channel subdir.
type RepodataSource interface {
	FetchRepodata(ctx context.Context, channel, subdir string) (*core.Repodata, error)
}

// App holds the immutable configuration and the adapters a run uses.
type App struct {
	cfg    config.Config
	source RepodataSource
	writer *output.Writer
	log    *slog.Logger
}

// New creates an App. If log is nil, slog.Default() is used.
func New(cfg config.Config, source RepodataSource, writer *output.Writer, log *slog.Logger) *App {
	if log == nil {
		log = slog.Default()
	}
	return &App{cfg: cfg, source: source, writer: writer, log: log}
}

// Config returns the configuration the App was built with.
func (a *App) Config() config.Config {
	return a.cfg
}

// Run fetches, patches and writes instructions for every configured pair, in
// order. The first error stops the run.
func (a *App) Run(ctx context.Context) error {
	written, unchanged := 0, 0

	for _, pair := range a.cfg.Pairs() {
		_, ins, err := a.generate(ctx, pair)
		if err != nil {
			return err
		}

		res, err := a.writer.Write(pair.Channel, pair.Subdir, ins)
		if err != nil {
			return withPair(zerr.Wrap(err, ErrWriteFailed.Error()), pair)
		}

		if res.Changed {
			written++
		} else {
			unchanged++
		}
		a.log.Info("wrote patch instructions",
			"channel", pair.Channel,
			"subdir", pair.Subdir,
			"path", res.Path,
			"packages", len(ins.Packages),
			"changed", res.Changed,
			"digest", res.DigestHex(),
		)
	}

	a.log.Info("done", "written", written, "unchanged", unchanged)
	return nil
}

// PlanOptions configures Plan.
type PlanOptions struct {
	Out io.Writer
	// Diff also prints a line diff against the instructions on disk.
	Diff bool
}

// Plan runs the fetch and patch steps for every pair and prints what would
// change without writing anything.
func (a *App) Plan(ctx context.Context, opts PlanOptions) error {
	for _, pair := range a.cfg.Pairs() {
		rd, ins, err := a.generate(ctx, pair)
		if err != nil {
			return err
		}

		report, err := plan.Build(pair.Channel, pair.Subdir, rd, ins)
		if err != nil {
			return withPair(zerr.Wrap(err, ErrPlanFailed.Error()), pair)
		}
		if err := plan.Render(opts.Out, report); err != nil {
			return withPair(zerr.Wrap(err, ErrPlanFailed.Error()), pair)
		}

		if !opts.Diff {
			continue
		}
		if err := a.diff(opts.Out, pair, ins); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) diff(w io.Writer, pair config.Pair, ins *core.Instructions) error {
	existing, err := a.writer.Existing(pair.Channel, pair.Subdir)
	if err != nil {
		return withPair(zerr.Wrap(err, ErrPlanFailed.Error()), pair)
	}
	data, err := core.Encode(ins)
	if err != nil {
		return withPair(zerr.Wrap(err, ErrPlanFailed.Error()), pair)
	}
	changed, err := plan.Diff(w, existing, data)
	if err != nil {
		return withPair(zerr.Wrap(err, ErrPlanFailed.Error()), pair)
	}
	if !changed {
		a.log.Debug("instructions on disk are current", "channel", pair.Channel, "subdir", pair.Subdir)
	}
	return nil
}

func (a *App) generate(ctx context.Context, pair config.Pair) (*core.Repodata, *core.Instructions, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	a.log.Debug("fetching repodata", "channel", pair.Channel, "subdir", pair.Subdir)
	rd, err := a.source.FetchRepodata(ctx, pair.Channel, pair.Subdir)
	if err != nil {
		return nil, nil, withPair(zerr.Wrap(err, ErrFetchFailed.Error()), pair)
	}
	a.log.Debug("fetched repodata", "channel", pair.Channel, "subdir", pair.Subdir, "records", len(rd.Packages))

	ins, err := core.Generate(rd, pair.Subdir)
	if err != nil {
		return nil, nil, withPair(zerr.Wrap(err, ErrPatchFailed.Error()), pair)
	}
	return rd, ins, nil
}

func withPair(err error, pair config.Pair) error {
	return zerr.With(zerr.With(err, "channel", pair.Channel), "subdir", pair.Subdir)
}
