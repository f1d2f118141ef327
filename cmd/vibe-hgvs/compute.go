package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-hgvs/internal/cache"
	"github.com/inodb/vibe-hgvs/internal/hgvs"
)

func newComputeCmd() *cobra.Command {
	var (
		transcriptID  string
		genes         []string
		canonicalOnly bool
	)

	cmd := &cobra.Command{
		Use:   "compute <chrom:pos:ref:alt>",
		Short: "Print the HGVS strings of one variant",
		Long: `Print the transcript and protein HGVS strings of a variant, one per line.

Without --transcript or --gene the variant is described on every transcript
it overlaps. Missing alleles are written as '-' (e.g. 7:140753336:-:T).`,
		Example: `  vibe-hgvs compute 12:25245350:C:T
  vibe-hgvs compute --transcript ENST00000311936 12:25245350:C:T
  vibe-hgvs compute --gene KRAS --canonical 12:25245350:C:T`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := hgvs.ParseVariant(args[0])
			if err != nil {
				return err
			}

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
			normalize := viper.GetBool("normalize")

			var out []string
			switch {
			case transcriptID != "":
				t := c.GetTranscript(transcriptID)
				if t == nil {
					return fmt.Errorf("transcript %s not found", transcriptID)
				}
				geneID := t.GeneName
				if geneID == "" {
					geneID = t.GeneID
				}
				out, err = calc.Compute(cmd.Context(), v, t, geneID, normalize)
			case len(genes) > 0:
				var gs []*cache.Gene
				for _, key := range genes {
					g := c.Gene(key)
					if g == nil {
						return fmt.Errorf("gene %s not found", key)
					}
					gs = append(gs, g)
				}
				if canonicalOnly {
					out, err = computeCanonical(cmd, calc, v, gs, normalize)
				} else {
					out, err = calc.ComputeGenes(cmd.Context(), v, gs, normalize)
				}
			default:
				out, err = computeOverlapping(cmd, calc, c, v, normalize, canonicalOnly)
			}

			if err != nil {
				if errors.Is(err, hgvs.ErrUnsupportedVariantKind) || len(out) == 0 {
					return err
				}
				// partial results: report the failed transcripts and print the rest
				logger.Warn("some transcripts could not be described", zap.Error(err))
			}
			return printLines(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVarP(&transcriptID, "transcript", "t", "", "Describe on this transcript only")
	cmd.Flags().StringSliceVarP(&genes, "gene", "g", nil, "Describe on the transcripts of these genes (ID or symbol)")
	cmd.Flags().BoolVar(&canonicalOnly, "canonical", false, "Only use canonical transcripts")
	cmd.MarkFlagsMutuallyExclusive("transcript", "gene")

	return cmd
}

func computeCanonical(cmd *cobra.Command, calc *hgvs.Calculator, v hgvs.Variant, genes []*cache.Gene, normalize bool) ([]string, error) {
	var out []string
	var errs []error
	for _, g := range genes {
		s, err := calc.ComputeGene(cmd.Context(), v, g, normalize, isCanonical)
		if errors.Is(err, hgvs.ErrUnsupportedVariantKind) {
			return nil, err
		}
		if err != nil {
			errs = append(errs, err)
		}
		out = append(out, s...)
	}
	return out, errors.Join(errs...)
}

func computeOverlapping(cmd *cobra.Command, calc *hgvs.Calculator, c *cache.Cache, v hgvs.Variant, normalize, canonicalOnly bool) ([]string, error) {
	if normalize {
		v = v.Normalize()
	}
	lo, hi := v.Span()
	var transcripts []*cache.Transcript
	for _, t := range c.FindOverlapping(cache.NormalizeChrom(v.Chrom), lo, hi) {
		if !canonicalOnly || isCanonical(t) {
			transcripts = append(transcripts, t)
		}
	}
	results, err := calc.DescribeAll(cmd.Context(), v, transcripts, false)
	var out []string
	for _, r := range results {
		out = append(out, r.Strings()...)
	}
	return out, err
}

func isCanonical(t *cache.Transcript) bool {
	return t.IsCanonical
}

func printLines(w io.Writer, lines []string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
