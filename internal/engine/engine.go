// Package engine orchestrates the full analysis pipeline: scan, parse,
// extract, resolve, filter, classify, annotate, and report, in the order
// spec §5 fixes (single-threaded per unit/class through resolution, a
// worker-pool fan-out only at annotation time).
package engine

import (
	"context"
	"fmt"

	"github.com/oxhq/stereoscope/internal/annotate"
	"github.com/oxhq/stereoscope/internal/apperr"
	"github.com/oxhq/stereoscope/internal/callfilter"
	"github.com/oxhq/stereoscope/internal/classify"
	"github.com/oxhq/stereoscope/internal/extract"
	"github.com/oxhq/stereoscope/internal/lang"
	"github.com/oxhq/stereoscope/internal/lang/register"
	"github.com/oxhq/stereoscope/internal/resolve"
	"github.com/oxhq/stereoscope/internal/rules"
	"github.com/oxhq/stereoscope/internal/scan"
	"github.com/oxhq/stereoscope/internal/stereomodel"
	"github.com/oxhq/stereoscope/internal/treeproducer"
)

// Options bundles every user-facing knob the CLI exposes (SPEC_FULL.md §4.13).
type Options struct {
	InputPath  string
	OutputPath string

	Extensions classify.Extensions

	LargeClassThreshold int

	IncludeStruct    bool
	IncludeInterface bool
	IncludeEnum      bool
	IncludeUnion     bool

	Overwrite    bool
	EmitComments bool

	IncludeGlobs []string
	ExcludeGlobs []string
	NoGitignore  bool
}

// Run is the result of one full analysis pass: the resolved class
// collection, the unattached free functions, and the annotated units ready
// to write.
type Run struct {
	Classes          []*stereomodel.ClassModel
	FreeFunctions    []extract.FreeFunction
	AnnotatedResults []annotate.Result
	ClassCount       int
	MethodCount      int
}

// Execute runs the full pipeline against Options.InputPath and returns the
// classified, annotated result. It never fails on a single malformed unit
// or query miss — those degrade to empty results per spec §7 — but does
// fail if the registry cannot be built or the input directory cannot be
// walked.
func Execute(ctx context.Context, opts Options) (*Run, error) {
	registry, err := register.Default()
	if err != nil {
		return nil, apperr.New(apperr.CodeProducer, fmt.Errorf("build language registry: %w", err))
	}

	files, err := scan.Walk(opts.InputPath, scan.Options{
		IncludeGlobs: opts.IncludeGlobs,
		ExcludeGlobs: opts.ExcludeGlobs,
		NoGitignore:  opts.NoGitignore,
	})
	if err != nil {
		return nil, apperr.New(apperr.CodeProducer, fmt.Errorf("scan %s: %w", opts.InputPath, err))
	}

	producer := treeproducer.New(registry)

	var allClasses []*stereomodel.ClassModel
	freeByLang := make(map[lang.Language][]extract.FreeFunction)
	jobs := make([]annotate.Job, 0, len(files))

	tablesByLang := make(map[lang.Language]*classify.Tables)

	for unitIdx, f := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		source, readErr := scan.ReadSource(f.Path)
		if readErr != nil {
			continue // unreadable file: skip, do not abort the run
		}

		provider, provErr := registry.Get(f.Language)
		if provErr != nil {
			continue
		}

		tables, ok := tablesByLang[f.Language]
		if !ok {
			tables = classify.Build(provider, opts.Extensions)
			tablesByLang[f.Language] = tables
		}

		unit, parseErr := producer.Parse(ctx, f.Path, f.Language, source)
		if parseErr != nil {
			continue // malformed source the producer rejected: skip this unit only
		}

		extractCtx := &extract.Context{Provider: provider, Tables: tables, Producer: producer, UnitIdx: unitIdx}
		classes, free := extractCtx.ExtractClasses(unit)
		classes = filterByKind(classes, opts)

		allClasses = append(allClasses, classes...)
		freeByLang[f.Language] = append(freeByLang[f.Language], free...)

		jobs = append(jobs, annotate.Job{UnitIdx: unitIdx, Unit: unit})
	}

	resolver := resolve.New(allClasses)
	resolver.ResolveAll(freeByLang)

	for _, c := range allClasses {
		provider, err := registry.Get(c.Language)
		if err != nil {
			continue
		}
		callfilter.Run(provider, []*stereomodel.ClassModel{c})
		applyRules(provider, c, opts.LargeClassThreshold)
	}

	methodCount := 0
	for _, c := range allClasses {
		methodCount += len(c.Methods)
	}

	anchorsByUnit := annotate.AnchorsForClasses(allClasses)
	for i := range jobs {
		jobs[i].Anchors = anchorsByUnit[jobs[i].UnitIdx]
	}

	results := annotate.Run(jobs, annotate.Options{EmitComments: opts.EmitComments})

	return &Run{
		Classes:          allClasses,
		FreeFunctions:    resolver.RemainingFreeFunctions,
		AnnotatedResults: results,
		ClassCount:       len(allClasses),
		MethodCount:      methodCount,
	}, nil
}

func applyRules(provider lang.Provider, c *stereomodel.ClassModel, threshold int) {
	for _, m := range c.Methods {
		rules.ApplyMethodRules(provider, m)
	}
	th := rules.DefaultThresholds()
	if threshold > 0 {
		th.LargeClassThreshold = threshold
	}
	rules.ApplyClassRules(c, th)
}

// filterByKind drops class-like declarations the caller opted out of via
// --include-struct/--include-interface/--include-enum/--include-union;
// plain classes are always included.
func filterByKind(classes []*stereomodel.ClassModel, opts Options) []*stereomodel.ClassModel {
	kept := classes[:0]
	for _, c := range classes {
		switch c.Kind {
		case stereomodel.KindStruct:
			if !opts.IncludeStruct {
				continue
			}
		case stereomodel.KindInterface:
			if !opts.IncludeInterface {
				continue
			}
		case stereomodel.KindEnum:
			if !opts.IncludeEnum {
				continue
			}
		case stereomodel.KindUnion:
			if !opts.IncludeUnion {
				continue
			}
		}
		kept = append(kept, c)
	}
	return kept
}
