package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/darianmavgo/tabconv/config"
	"github.com/darianmavgo/tabconv/converters"
	"github.com/darianmavgo/tabconv/converters/common"
	"github.com/darianmavgo/tabconv/logging"
)

// convertFlags holds the flag values of one convert command.
type convertFlags struct {
	config  *string
	from    string
	to      string
	out     string
	csvMode string
	force   bool
}

func newConvertCmd(configPath *string) *cobra.Command {
	flags := &convertFlags{config: configPath}
	cmd := &cobra.Command{
		Use:   "convert <input>",
		Short: "Convert one file using a built-in route",
		Long: `Convert one file using a built-in route.

The source format is taken from the file extension unless --from is given.
The result is written next to the input unless --out is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], flags)
		},
	}
	cmd.Flags().StringVarP(&flags.from, "from", "f", "", "source format (excel, csv, json, html)")
	cmd.Flags().StringVarP(&flags.to, "to", "t", "", "target format (excel, csv, json, sql, xml, sqlite)")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "output path")
	cmd.Flags().StringVar(&flags.csvMode, "csv-mode", "", "override the route's CSV parsing (naive or strict)")
	cmd.Flags().BoolVar(&flags.force, "force", false, "overwrite an existing output file")
	cmd.MarkFlagRequired("to")
	return cmd
}

// sourceFormat maps a file extension to a decoder name.
func sourceFormat(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return "excel", nil
	case ".csv", ".tsv":
		return "csv", nil
	case ".json":
		return "json", nil
	case ".html", ".htm":
		return "html", nil
	default:
		return "", fmt.Errorf("unsupported file type: %q", ext)
	}
}

func runConvert(cmd *cobra.Command, input string, flags *convertFlags) error {
	cfg, err := config.Resolve(*flags.config)
	if err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	source := flags.from
	if source == "" {
		if source, err = sourceFormat(input); err != nil {
			return err
		}
	}
	route, err := converters.LookupRoute(source, flags.to)
	if err != nil {
		return err
	}

	opts := &converters.Options{}
	switch flags.csvMode {
	case "":
	case "naive", "strict":
		mode := common.CSVNaive
		if flags.csvMode == "strict" {
			mode = common.CSVStrict
		}
		opts.CSVMode = &mode
	default:
		return fmt.Errorf("--csv-mode must be naive or strict, got %q", flags.csvMode)
	}
	if strings.EqualFold(filepath.Ext(input), ".tsv") {
		opts.Delimiter = '\t'
	}

	src, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read input file %q: %w", input, err)
	}

	store, err := converters.NewTempStore(cfg.TempDir)
	if err != nil {
		return err
	}
	pipeline := converters.NewPipeline(store).WithBatchSize(cfg.BatchSize)
	artifact, err := pipeline.Transform(context.Background(), route, filepath.Base(input), src, opts)
	if err != nil {
		return err
	}

	out := flags.out
	if out == "" {
		out = filepath.Join(filepath.Dir(input), artifact.Name)
	}
	if !flags.force {
		if _, err := os.Stat(out); err == nil {
			return fmt.Errorf("output file %q exists, use --force to overwrite", out)
		}
	}
	if err := atomic.WriteFile(out, bytes.NewReader(artifact.Data)); err != nil {
		return fmt.Errorf("failed to write %q: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s => %s (%d bytes)\n", input, out, len(artifact.Data))
	return nil
}
