package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-hgvs/internal/batch"
	"github.com/inodb/vibe-hgvs/internal/hgvs"
	"github.com/inodb/vibe-hgvs/internal/output"
	"github.com/inodb/vibe-hgvs/internal/vcf"
)

func newAnnotateCmd() *cobra.Command {
	var (
		outputFile    string
		outputFormat  string
		inputFormat   string
		canonicalOnly bool
	)

	cmd := &cobra.Command{
		Use:   "annotate <input-file>",
		Short: "Describe every variant of a VCF or variant list",
		Long: `Describe every variant of a VCF (plain, gzip or BGZF) or a list of
chrom:pos:ref:alt lines on the transcripts it overlaps. The tab format has
one row per (variant, transcript) in input order; the vcf format copies the
input records and adds an HGVS INFO field.`,
		Example: `  vibe-hgvs annotate input.vcf
  vibe-hgvs annotate -o out.tsv --canonical input.vcf.gz
  vibe-hgvs annotate -f vcf -o out.vcf input.vcf.gz
  cat variants.txt | vibe-hgvs annotate -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser, err := openInput(args[0], inputFormat)
			if err != nil {
				return err
			}
			defer parser.Close()

			c, err := loadModels(cmd.Context())
			if err != nil {
				return err
			}
			ref, err := openReference(cmd.Context())
			if err != nil {
				return err
			}
			defer ref.Close()

			calc := hgvs.NewCalculator(ref)
			calc.SetLogger(logger)

			runner := batch.NewRunner(c, calc)
			runner.SetWorkers(viper.GetInt("workers"))
			runner.SetNormalize(viper.GetBool("normalize"))
			runner.SetCanonicalOnly(canonicalOnly)
			runner.SetLogger(logger)

			metricsFile := viper.GetString("metrics_file")
			var metrics *batch.Metrics
			if metricsFile != "" {
				metrics = batch.NewMetrics()
				runner.SetMetrics(metrics)
			}

			out := cmd.OutOrStdout()
			if outputFile != "" {
				f, err := os.Create(outputFile)
				if err != nil {
					return fmt.Errorf("creating output file: %w", err)
				}
				defer f.Close()
				out = f
			}

			writer, err := newWriter(outputFormat, out, parser)
			if err != nil {
				return err
			}
			stats, err := runner.Run(cmd.Context(), parser, writer)
			if err != nil {
				return err
			}
			logger.Info("annotation complete",
				zap.Int("variants", stats.Variants),
				zap.Int("results", stats.Results),
				zap.Int("skipped", stats.Skipped))

			if metrics != nil {
				if err := metrics.WriteToTextfile(metricsFile); err != nil {
					return fmt.Errorf("writing metrics: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&outputFormat, "output-format", "f", "tab", "Output format: tab, vcf")
	cmd.Flags().StringVar(&inputFormat, "input-format", "", "Input format: vcf or list (detected from the file name if not specified)")
	cmd.Flags().BoolVar(&canonicalOnly, "canonical", false, "Only describe canonical transcripts")
	cmd.Flags().Int("workers", 0, "Worker goroutines (default: number of CPUs)")
	cmd.Flags().String("metrics-file", "", "Write Prometheus counters to this textfile")
	_ = viper.BindPFlag("workers", cmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("metrics_file", cmd.Flags().Lookup("metrics-file"))

	return cmd
}

func newWriter(format string, out io.Writer, parser vcf.VariantParser) (batch.ResultWriter, error) {
	switch format {
	case "tab":
		return output.NewTabWriter(out), nil
	case "vcf":
		p, ok := parser.(*vcf.Parser)
		if !ok {
			return nil, errors.New("VCF output requires VCF input")
		}
		return output.NewVCFWriter(out, p.Header()), nil
	}
	return nil, fmt.Errorf("unknown output format %q (want tab or vcf)", format)
}

func openInput(path, format string) (vcf.VariantParser, error) {
	switch format {
	case "":
		return vcf.Open(path)
	case "vcf":
		return vcf.NewParser(path)
	case "list":
		return vcf.NewListParser(path)
	}
	return nil, fmt.Errorf("unknown input format %q (want vcf or list)", format)
}
