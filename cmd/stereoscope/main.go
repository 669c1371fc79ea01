// Command stereoscope infers method and class stereotypes from CPP, CSH,
// and JVA source trees and writes them back as annotations.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/oxhq/stereoscope/internal/config"
	"github.com/oxhq/stereoscope/internal/diffpreview"
	"github.com/oxhq/stereoscope/internal/engine"
	"github.com/oxhq/stereoscope/internal/report"
	"github.com/oxhq/stereoscope/internal/store"
	"github.com/oxhq/stereoscope/internal/writeback"
)

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "stereoscope: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "stereoscope",
		Short: "Infer method and class stereotypes from CPP/CSH/JVA source trees",
	}
	root.AddCommand(newAnalyzeCommand(), newHistoryCommand(), newVersionCommand())
	return root
}

type analyzeFlags struct {
	input                string
	output                string
	primitivesFile        string
	ignoredCallsFile      string
	typeModifiersFile     string
	largeClassThreshold   int
	includeStruct         bool
	includeInterface      bool
	includeEnum           bool
	includeUnion          bool
	overwrite             bool
	reportFormat          string
	comments              bool
	persist               bool
	verbose               bool
	diffAgainst           string
}

func newAnalyzeCommand() *cobra.Command {
	var f analyzeFlags

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run stereotype inference over a source tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.input, "input", "i", "", "Input directory to analyze (required)")
	flags.StringVarP(&f.output, "output", "o", "", "Output directory for annotated sources (defaults to input)")
	flags.StringVar(&f.primitivesFile, "primitives-file", "", "JSON file of extra primitive type names")
	flags.StringVar(&f.ignoredCallsFile, "ignored-calls-file", "", "JSON file of extra ignored call names")
	flags.StringVar(&f.typeModifiersFile, "type-modifiers-file", "", "JSON file of extra type-modifier regex fragments")
	flags.IntVar(&f.largeClassThreshold, "large-class-threshold", 21, "Method-count threshold for the large-class label")
	flags.BoolVar(&f.includeStruct, "include-struct", false, "Include struct declarations")
	flags.BoolVar(&f.includeInterface, "include-interface", false, "Include interface declarations")
	flags.BoolVar(&f.includeEnum, "include-enum", false, "Include enum declarations")
	flags.BoolVar(&f.includeUnion, "include-union", false, "Include union declarations (CPP)")
	flags.BoolVar(&f.overwrite, "overwrite", false, "Write annotated sources back over the input files")
	flags.StringVar(&f.reportFormat, "report", "text", `Report format: "text", "csv", or "both"`)
	flags.BoolVar(&f.comments, "comments", false, "Also emit @stereotype block comments")
	flags.BoolVar(&f.persist, "persist", false, "Record this run in the history database")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "Emit verbose roll-up reports")
	flags.StringVar(&f.diffAgainst, "diff-against", "", "Directory of a prior annotated run to diff against")

	cmd.MarkFlagRequired("input")
	return cmd
}

func runAnalyze(ctx context.Context, f analyzeFlags) error {
	cfg := config.Load()

	ext, err := config.LoadExtensions(f.primitivesFile, f.ignoredCallsFile, f.typeModifiersFile)
	if err != nil {
		return err
	}

	output := f.output
	if output == "" {
		output = f.input
	}
	f.output = output

	opts := engine.Options{
		InputPath:           f.input,
		OutputPath:          output,
		Extensions:          ext,
		LargeClassThreshold: f.largeClassThreshold,
		IncludeStruct:       f.includeStruct,
		IncludeInterface:    f.includeInterface,
		IncludeEnum:         f.includeEnum,
		IncludeUnion:        f.includeUnion,
		Overwrite:           f.overwrite,
		EmitComments:        f.comments,
	}

	run, err := engine.Execute(ctx, opts)
	if err != nil {
		return err
	}

	if err := writeReports(run, output, f.reportFormat, f.verbose); err != nil {
		return err
	}

	if err := writeAnnotated(run, f.input, output, f.overwrite); err != nil {
		return err
	}

	if f.diffAgainst != "" {
		if err := printDiff(run, f.input, f.diffAgainst); err != nil {
			return err
		}
	}

	if f.persist {
		if err := persistRun(cfg, run, f); err != nil {
			return err
		}
	}

	fmt.Printf("analyzed %d classes, %d methods\n", run.ClassCount, run.MethodCount)
	return nil
}

func writeReports(run *engine.Run, outputDir, format string, verbose bool) error {
	writeTxt := format == "text" || format == "both"
	writeCSV := format == "csv" || format == "both"

	if writeTxt {
		path := filepath.Join(outputDir, "stereotypes.txt")
		fh, err := os.Create(path)
		if err != nil {
			return err
		}
		defer fh.Close()
		if err := report.WriteText(fh, run.Classes); err != nil {
			return err
		}
		if verbose {
			if err := report.WriteVerbose(fh, report.BuildVerbose(run.Classes)); err != nil {
				return err
			}
		}
	}

	if writeCSV {
		path := filepath.Join(outputDir, "stereotypes.csv")
		fh, err := os.Create(path)
		if err != nil {
			return err
		}
		defer fh.Close()
		if err := report.WriteCSV(fh, run.Classes); err != nil {
			return err
		}

		freePath := filepath.Join(outputDir, "free_functions.csv")
		freeFh, err := os.Create(freePath)
		if err != nil {
			return err
		}
		defer freeFh.Close()
		if err := report.WriteFreeFunctionCSV(freeFh, run.FreeFunctions); err != nil {
			return err
		}
	}

	return nil
}

func writeAnnotated(run *engine.Run, inputDir, outputDir string, overwrite bool) error {
	for _, result := range run.AnnotatedResults {
		if result.Err != nil {
			continue // one unit's annotation failure must not abort the rest
		}
		target := result.Path
		if !overwrite {
			rel, err := filepath.Rel(inputDir, result.Path)
			if err != nil {
				rel = filepath.Base(result.Path)
			}
			target = filepath.Join(outputDir, rel)
			if err := writeback.EnsureDir(target); err != nil {
				return err
			}
		}
		// Overwriting the original input warrants a backup; writing into a
		// mirrored output tree does not, since the input stays untouched.
		if err := writeback.Write(target, result.Source, writeback.Options{Backup: overwrite}); err != nil {
			return err
		}
	}
	return nil
}

func printDiff(run *engine.Run, inputDir, priorDir string) error {
	for _, result := range run.AnnotatedResults {
		rel, err := filepath.Rel(inputDir, result.Path)
		if err != nil {
			rel = filepath.Base(result.Path)
		}
		priorPath := filepath.Join(priorDir, rel)
		priorBytes, readErr := os.ReadFile(priorPath)
		if readErr != nil {
			continue
		}
		diff, err := diffpreview.Unified(rel, string(priorBytes), string(result.Source))
		if err != nil {
			return err
		}
		if diff != "" {
			fmt.Print(diff)
		}
	}
	return nil
}

func persistRun(cfg *config.Config, run *engine.Run, f analyzeFlags) error {
	s, err := store.Open(cfg.DBPath, false)
	if err != nil {
		return err
	}
	defer s.Close()

	record := &store.RunRecord{
		StartedAt:      time.Now(),
		InputPath:      f.input,
		OutputPath:     f.output,
		LargeClassSize: f.largeClassThreshold,
		ClassCount:     run.ClassCount,
		MethodCount:    run.MethodCount,
	}
	for _, c := range run.Classes {
		record.ClassRows = append(record.ClassRows, store.ClassStereotypeRow{
			ClassName:   c.NameRaw,
			Stereotypes: strings.Join(c.Stereotypes, " "),
		})
		for _, m := range c.Methods {
			record.MethodRows = append(record.MethodRows, store.MethodStereotypeRow{
				ClassName:   c.NameRaw,
				MethodName:  m.Name,
				Stereotypes: strings.Join(m.Stereotypes, " "),
			})
		}
	}
	return s.RecordRun(record)
}

func newHistoryCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show prior analysis runs recorded with --persist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			s, err := store.Open(cfg.DBPath, false)
			if err != nil {
				return err
			}
			defer s.Close()

			runs, err := s.History(limit)
			if err != nil {
				return err
			}
			for _, r := range runs {
				fmt.Printf("%d\t%s\t%s -> %s\tclasses=%d methods=%d\n",
					r.ID, r.StartedAt.Format(time.RFC3339), r.InputPath, r.OutputPath, r.ClassCount, r.MethodCount)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the stereoscope version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(version)
			return nil
		},
	}
}
