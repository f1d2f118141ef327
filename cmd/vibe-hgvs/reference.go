package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-hgvs/internal/refstore"
)

func newReferenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reference",
		Short: "Manage the reference sequence store",
	}
	cmd.AddCommand(newReferenceImportCmd())
	cmd.AddCommand(newReferenceContigsCmd())
	cmd.AddCommand(newReferenceRegionCmd())
	return cmd
}

// storeDSN returns the --db flag, falling back to the configured reference
// when it names a SQL store.
func storeDSN(cmd *cobra.Command) (string, error) {
	dsn, _ := cmd.Flags().GetString("db")
	if dsn == "" {
		dsn = viper.GetString("reference")
	}
	if !refstore.IsDSN(dsn) {
		return "", fmt.Errorf("%q is not a reference store (want duckdb:, sqlite: or postgres://)", dsn)
	}
	return dsn, nil
}

func newReferenceImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <fasta>",
		Short: "Import a FASTA file (plain or gzip) into the reference store",
		Long: `Import every record of a FASTA file into the reference store. Contigs
already present are replaced. Chromosome names are stored without the
"chr" prefix.`,
		Example: `  vibe-hgvs reference import --db duckdb:$HOME/.vibe-hgvs/GRCh38.db Homo_sapiens.GRCh38.dna.primary_assembly.fa.gz
  vibe-hgvs reference import --db sqlite:ref.sqlite chr7.fa`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, err := storeDSN(cmd)
			if err != nil {
				return err
			}
			in, err := refstore.OpenFASTA(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			store, err := refstore.Open(cmd.Context(), dsn)
			if err != nil {
				return err
			}
			defer store.Close()

			start := time.Now()
			stats, err := store.Import(cmd.Context(), in)
			if err != nil {
				return err
			}
			logger.Info("reference imported",
				zap.String("backend", store.Backend()),
				zap.Int("contigs", len(stats.Contigs)),
				zap.Int64("bases", stats.Bases()),
				zap.Int64("chunks", stats.Chunks),
				zap.Duration("elapsed", time.Since(start)))
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d contigs (%d bases)\n", len(stats.Contigs), stats.Bases())
			return nil
		},
	}
	cmd.Flags().String("db", "", "Reference store DSN (default: the configured reference)")
	return cmd
}

func newReferenceContigsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contigs",
		Short: "List the contigs of the reference store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, err := storeDSN(cmd)
			if err != nil {
				return err
			}
			store, err := refstore.Open(cmd.Context(), dsn)
			if err != nil {
				return err
			}
			defer store.Close()

			contigs, err := store.Contigs(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range contigs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", c.Name, c.Length)
			}
			return nil
		},
	}
	cmd.Flags().String("db", "", "Reference store DSN (default: the configured reference)")
	return cmd
}

func newReferenceRegionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "region <chrom> <start> <end>",
		Short: "Print a region of the configured reference (1-based, inclusive)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid start %q", args[1])
			}
			end, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid end %q", args[2])
			}
			ref, err := openReference(cmd.Context())
			if err != nil {
				return err
			}
			defer ref.Close()

			seq, err := ref.GetSequence(cmd.Context(), args[0], start, end)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), seq)
			return nil
		},
	}
}
