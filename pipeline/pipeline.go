// Package pipeline drives one compilation: it prepares the type graph once
// and renders it for every requested target concurrently.
//
// Targets share only the frozen graph and the enum shapes. Each builds its
// own naming table and output, so a failing target never affects the others.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/typeforge/emit"
	"github.com/teranos/typeforge/emit/python"
	"github.com/teranos/typeforge/emit/rust"
	"github.com/teranos/typeforge/emit/typescript"
	"github.com/teranos/typeforge/errors"
	"github.com/teranos/typeforge/ir"
	"github.com/teranos/typeforge/logger"
	"github.com/teranos/typeforge/naming"
)

// DefaultParallelism bounds concurrent targets when Options.Parallelism is unset.
const DefaultParallelism = 4

// DefaultRegistry returns a registry holding every built-in backend.
func DefaultRegistry() *emit.Registry {
	return emit.NewRegistry(python.New(), rust.New(), typescript.New())
}

// Options configure a compilation.
type Options struct {
	// Targets are language names or aliases; "all" selects every backend.
	Targets []string
	// Constructors enables per-variant constructors in every target.
	Constructors bool
	// Parallelism bounds how many targets render at once.
	Parallelism int
	// Naming holds per-language overrides, keyed by canonical language name.
	Naming map[string]naming.Options
	// TypeMappings holds per-language named-type replacements.
	TypeMappings map[string]map[string]string
	Module       string
	// Registry defaults to DefaultRegistry().
	Registry *emit.Registry
	Logger   *zap.SugaredLogger
}

// TargetResult is the outcome for one target language.
type TargetResult struct {
	Language  string
	Extension string
	Output    *emit.Output
	// Source is the rendered file, empty when Err is set.
	Source   string
	Err      error
	Duration time.Duration
}

// Result holds every target's outcome in request order.
type Result struct {
	RunID    string
	Prepared *emit.Prepared
	Targets  []TargetResult
}

// Err joins the failures of all targets, or returns nil when every target succeeded.
func (r *Result) Err() error {
	var errs []error
	for _, t := range r.Targets {
		if t.Err != nil {
			errs = append(errs, errors.Wrapf(t.Err, "target %s", t.Language))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

// Failed returns the targets that did not render.
func (r *Result) Failed() []TargetResult {
	var out []TargetResult
	for _, t := range r.Targets {
		if t.Err != nil {
			out = append(out, t)
		}
	}
	return out
}

// Target returns the result for a language name or alias.
func (r *Result) Target(language string) (TargetResult, bool) {
	language = emit.CanonicalLanguage(language)
	for _, t := range r.Targets {
		if t.Language == language {
			return t, true
		}
	}
	return TargetResult{}, false
}

// Compile prepares g and renders it for every selected target.
//
// Errors that concern the graph itself (validation, discriminant and
// promotion collisions) are returned directly since no target could succeed.
// Per-target failures are reported on the Result.
func Compile(ctx context.Context, g *ir.Graph, opts Options) (*Result, error) {
	registry := opts.Registry
	if registry == nil {
		registry = DefaultRegistry()
	}
	targets := opts.Targets
	if len(targets) == 0 {
		targets = []string{"all"}
	}
	backends, err := registry.Select(targets)
	if err != nil {
		return nil, err
	}

	runID := logger.RunIDFromContext(ctx)
	if runID == "" {
		runID = logger.NewRunID()
		ctx = logger.WithRunID(ctx, runID)
	}
	log := opts.Logger
	if log == nil {
		log = logger.LoggerFromContext(logger.WithComponent(ctx, "pipeline"))
	}

	start := time.Now()
	prepared, err := emit.Prepare(g)
	if err != nil {
		log.Errorw("Type graph rejected",
			logger.FieldPhase, logger.PhaseValidate,
			logger.FieldError, err.Error(),
			logger.FieldErrorKind, kindName(err))
		return nil, err
	}
	log.Debugw("Type graph prepared",
		logger.FieldPhase, logger.PhasePromote,
		logger.FieldCount, prepared.Graph.Len(),
		"promoted", len(prepared.Promotions),
		"external", prepared.External,
		logger.FieldDurationMS, time.Since(start).Milliseconds())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:    runID,
		Prepared: prepared,
		Targets:  make([]TargetResult, len(backends)),
	}

	limit := opts.Parallelism
	if limit <= 0 {
		limit = DefaultParallelism
	}
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(limit)

	for i, b := range backends {
		i, b := i, b
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result.Targets[i] = compileTarget(prepared, b, opts, log.With(logger.FieldTarget, b.Language()))
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	log.Infow("Compilation finished",
		logger.FieldPhase, logger.PhaseEmit,
		logger.FieldCount, len(backends),
		"failed", len(result.Failed()),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return result, nil
}

func compileTarget(p *emit.Prepared, b emit.Backend, opts Options, log *zap.SugaredLogger) TargetResult {
	start := time.Now()
	tr := TargetResult{Language: b.Language(), Extension: b.FileExtension()}

	in, err := p.ForTarget(b.Rules(), opts.Naming[b.Language()], emit.Options{
		Constructors: opts.Constructors,
		TypeMappings: opts.TypeMappings[b.Language()],
		Module:       opts.Module,
	})
	if err != nil {
		tr.Err = err
		tr.Duration = time.Since(start)
		log.Errorw("Naming failed",
			logger.FieldPhase, logger.PhaseResolve,
			logger.FieldError, err.Error(),
			logger.FieldErrorKind, kindName(err))
		return tr
	}

	out, err := b.Emit(in)
	tr.Duration = time.Since(start)
	if err != nil {
		tr.Err = err
		log.Errorw("Emit failed",
			logger.FieldPhase, logger.PhaseEmit,
			logger.FieldError, err.Error(),
			logger.FieldErrorKind, kindName(err))
		return tr
	}

	tr.Output = out
	tr.Source = b.RenderFile(out)
	log.Debugw("Target rendered",
		logger.FieldPhase, logger.PhaseEmit,
		logger.FieldCount, len(out.Declarations),
		logger.FieldSize, len(tr.Source),
		logger.FieldDurationMS, tr.Duration.Milliseconds())
	return tr
}

func kindName(err error) string {
	if kind := errors.KindOf(err); kind != nil {
		return kind.Error()
	}
	return "unknown"
}
