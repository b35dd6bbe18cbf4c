package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/pulumi/pulumi/sdk/v3/go/common/util/logging"
	"github.com/spf13/cobra"

	"github.com/pulumi/cbom-tools/internal/pkg"
	"github.com/pulumi/cbom-tools/pkg/cbom"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

type summarizeOptions struct {
	format    string
	details   bool
	workers   int
	cacheSize int
	document  pkg.DocumentOptions
}

func summarizeCmd(cfg *config) *cobra.Command {
	command := &cobra.Command{
		Use:     "summarize [source...]",
		Aliases: []string{"stats"},
		Short:   "Summarize the crypto assets of one or more CBOM documents",
		Long: "Summarize the crypto assets of one or more CBOM documents.\n\n" +
			"A source is \"-\" for stdin (the default), a local file or repository directory,\n" +
			"an http(s) URL, github://<host>/<org>/<repo> or gitlab://<host>/<owner>/<repo>.\n" +
			"With several sources, an aggregate over all documents is reported last.",
		RunE: func(command *cobra.Command, args []string) error {
			err := cfg.bind(command.Flags(),
				keyFormat, keyDetails, keyWorkers, keyPath, keyRef, keyCacheSize)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				args = []string{"-"}
			}
			return summarize(command.Context(), command.OutOrStdout(), args, summarizeOptions{
				format:    cfg.String(keyFormat),
				details:   cfg.Bool(keyDetails),
				workers:   cfg.Int(keyWorkers),
				cacheSize: cfg.Int(keyCacheSize),
				document: pkg.DocumentOptions{
					Path: cfg.String(keyPath),
					Ref:  cfg.String(keyRef),
				},
			})
		},
	}

	command.Flags().StringP(keyFormat, "f", formatText,
		"the output format: text, json or yaml")
	command.Flags().BoolP(keyDetails, "d", false,
		"list every algorithm in use and, for json and yaml, the document info")
	command.Flags().IntP(keyWorkers, "w", 1,
		"classify assets with this many workers")
	documentFlags(command)

	return command
}

// documentFlags adds the flags that locate documents inside repositories.
func documentFlags(command *cobra.Command) {
	command.Flags().String(keyPath, pkg.DefaultDocumentPath,
		"the document path inside repository sources")
	command.Flags().String(keyRef, pkg.DefaultRef,
		"the branch, tag or commit for github:// and gitlab:// sources")
	command.Flags().Int(keyCacheSize, pkg.DefaultCacheSize,
		"how many downloaded documents to keep in memory")
}

func summarize(ctx context.Context, out io.Writer, sources []string, opts summarizeOptions) error {
	if err := checkFormat(opts.format, formatText, formatJSON, formatYAML); err != nil {
		return err
	}

	reports, err := loadReports(ctx, sources, opts)
	if err != nil {
		return err
	}
	if len(reports) > 1 {
		reports = append(reports, cbom.Aggregate(reports))
	}

	switch opts.format {
	case formatJSON:
		if len(reports) == 1 {
			return cbom.RenderJSON(out, reports[0], !opts.details)
		}
		return cbom.RenderJSONReports(out, reports)
	case formatYAML:
		if len(reports) == 1 {
			return cbom.RenderYAML(out, reports[0], !opts.details)
		}
		return cbom.RenderYAMLReports(out, reports)
	default:
		for i, r := range reports {
			if i > 0 {
				fmt.Fprintln(out)
			}
			if err := cbom.RenderText(out, r); err != nil {
				return err
			}
		}
		return nil
	}
}

func loadReports(ctx context.Context, sources []string, opts summarizeOptions) ([]cbom.Report, error) {
	loader, err := pkg.NewLoader(opts.document, opts.cacheSize)
	if err != nil {
		return nil, err
	}
	bodies, err := loader.LoadAll(ctx, sources)
	if err != nil {
		return nil, err
	}

	reports := make([]cbom.Report, len(bodies))
	for i, body := range bodies {
		doc, err := cbom.Decode(body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sources[i], err)
		}
		reports[i] = cbom.NewReport(sources[i], doc, cbom.ReportOptions{
			Details: opts.details,
			Workers: opts.workers,
		})
		logging.V(7).Infof("%s: %d crypto assets", sources[i], reports[i].Summary.TotalAssets)
	}
	return reports, nil
}

func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q, expected one of %v", format, allowed)
}
