package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pulumi/cbom-tools/internal/pkg"
	"github.com/pulumi/cbom-tools/internal/util/diagtree"
	"github.com/pulumi/cbom-tools/pkg/compare"
)

const formatSummary = "summary"

// errPostureRegressed is returned when a change reaches the --fail-on severity.
var errPostureRegressed = errors.New("crypto posture regressed")

type compareOptions struct {
	summarizeOptions
	maxChanges int
	failOn     diagtree.Severity
}

func compareCmd(cfg *config) *cobra.Command {
	var oldSource, newSource string

	command := &cobra.Command{
		Use:   "compare",
		Short: "Compare the crypto posture of two CBOM documents",
		Long: "Compare the crypto posture of two CBOM documents.\n\n" +
			"More assets that are not quantum safe is reported as danger, fewer quantum safe\n" +
			"assets and assets of unknown safety as warnings, and primitives or functions\n" +
			"that appear or disappear as info. Use --fail-on to exit with an error when a\n" +
			"change is at least that severe.",
		RunE: func(command *cobra.Command, args []string) error {
			err := cfg.bind(command.Flags(),
				keyFormat, keyMaxChanges, keyFailOn, keyPath, keyRef, keyCacheSize)
			if err != nil {
				return err
			}
			failOn, err := diagtree.ParseSeverity(cfg.String(keyFailOn))
			if err != nil {
				return err
			}
			return compareDocuments(command.Context(), command.OutOrStdout(), oldSource, newSource, compareOptions{
				summarizeOptions: summarizeOptions{
					format:    cfg.String(keyFormat),
					cacheSize: cfg.Int(keyCacheSize),
					details:   true,
					document: pkg.DocumentOptions{
						Path: cfg.String(keyPath),
						Ref:  cfg.String(keyRef),
					},
				},
				maxChanges: cfg.Int(keyMaxChanges),
				failOn:     failOn,
			})
		},
	}

	command.Flags().StringVarP(&oldSource, "old", "o", "", "the source of the old document")
	_ = command.MarkFlagRequired("old")

	command.Flags().StringVarP(&newSource, "new", "n", "", "the source of the new document")
	_ = command.MarkFlagRequired("new")

	command.Flags().StringP(keyFormat, "f", formatText,
		"the output format: text, json or summary")
	command.Flags().IntP(keyMaxChanges, "m", 500,
		"the maximum number of changes to display, -1 for all")
	command.Flags().String(keyFailOn, diagtree.None.Name(),
		"exit with an error on a change of at least this severity: none, info, warn or danger")
	documentFlags(command)

	return command
}

func compareDocuments(ctx context.Context, out io.Writer, oldSource, newSource string, opts compareOptions) error {
	if err := checkFormat(opts.format, formatText, formatJSON, formatSummary); err != nil {
		return err
	}

	reports, err := loadReports(ctx, []string{oldSource, newSource}, opts.summarizeOptions)
	if err != nil {
		return err
	}
	result := compare.Compare(reports[0], reports[1], compare.CompareOptions{MaxChanges: opts.maxChanges})

	switch opts.format {
	case formatJSON:
		err = compare.RenderJSON(out, result, false)
		fmt.Fprintln(out)
	case formatSummary:
		err = compare.RenderSummary(out, result)
	default:
		err = compare.RenderText(out, result)
	}
	if err != nil {
		return err
	}

	if result.Exceeds(opts.failOn) {
		return fmt.Errorf("%w: found %s changes", errPostureRegressed, result.Severity)
	}
	return nil
}
