// Package main provides the vibe-hgvs command-line tool.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-hgvs/internal/sequence"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfgFile string
	verbose bool
	logger  = zap.NewNop()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vibe-hgvs",
		Short: "HGVS nomenclature for genomic variants",
		Long: `vibe-hgvs describes genomic variants in HGVS nomenclature at the
transcript (c./n.) and protein (p.) level.

Transcript models are JSON files (optionally gzipped) read from local paths,
http(s):// or s3:// locations. Reference sequence comes from an indexed FASTA,
a SQL reference store (DuckDB, SQLite, PostgreSQL) or the Ensembl REST API.`,
		Example: `  vibe-hgvs reference import --db duckdb:$HOME/.vibe-hgvs/ref.db GRCh38.fa.gz
  vibe-hgvs compute --models models/ --reference duckdb:$HOME/.vibe-hgvs/ref.db 12:25245350:C:T
  vibe-hgvs annotate -o out.tsv input.vcf.gz`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(); err != nil {
				return err
			}
			return initLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default: ~/.vibe-hgvs.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	pf.StringSlice("models", nil, "Transcript model files or directories (paths or URLs)")
	pf.String("reference", "", "Reference sequence: fasta:<path>, duckdb:<path>, sqlite:<path>, postgres://..., ensembl[:<url>]")
	pf.Bool("normalize", true, "Trim shared VCF anchor bases before describing")
	pf.String("snapshot", "", "Gob snapshot of the loaded models, refreshed when the source changes")
	for _, key := range []string{"models", "reference", "normalize", "snapshot"} {
		_ = viper.BindPFlag(key, pf.Lookup(key))
	}

	cmd.AddCommand(newComputeCmd())
	cmd.AddCommand(newAnnotateCmd())
	cmd.AddCommand(newReferenceCmd())
	cmd.AddCommand(newModelsCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vibe-hgvs version %s (%s) built %s\n", version, commit, date)
		},
	}
}

// initConfig reads the config file and environment. A missing config file
// is not an error.
func initConfig() error {
	viper.SetDefault("workers", 0)
	viper.SetDefault("sequence.cache_size", 256)
	viper.SetDefault("ensembl.url", sequence.DefaultEnsemblURL)
	viper.SetDefault("ensembl.timeout", 30*time.Second)
	viper.SetDefault("s3.region", "us-east-1")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.SetConfigFile(filepath.Join(home, ".vibe-hgvs.yaml"))
		}
	}

	viper.SetEnvPrefix("VIBE_HGVS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

func initLogger() error {
	var (
		l   *zap.Logger
		err error
	)
	if verbose {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	logger = l
	return nil
}
