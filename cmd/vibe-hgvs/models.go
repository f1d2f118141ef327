package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-hgvs/internal/cache"
	"github.com/inodb/vibe-hgvs/internal/sequence"
)

func newModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Inspect and snapshot transcript models",
	}
	cmd.AddCommand(newModelsSnapshotCmd())
	cmd.AddCommand(newModelsStatsCmd())
	return cmd
}

func newModelsSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot <path>",
		Short: "Write a gob snapshot of the configured models",
		Long: `Load the configured transcript models and write them to a gob snapshot.
Later runs with --snapshot <path> load the snapshot instead of the source
while the source size and modification time are unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			locations := viper.GetStringSlice("models")
			c, err := openModels(cmd.Context(), locations)
			if err != nil {
				return err
			}
			snap := cache.NewSnapshot(args[0])
			if err := snap.Write(c, fingerprint(locations)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d transcripts to %s\n", c.TranscriptCount(), args[0])
			return nil
		},
	}
}

func newModelsStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarise the configured models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadModels(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "transcripts\t%d\n", c.TranscriptCount())
			fmt.Fprintf(out, "genes\t%d\n", len(c.Genes()))
			for _, chrom := range c.Chromosomes() {
				fmt.Fprintf(out, "chr%s\t%d\n", chrom, len(c.FindTranscriptsByChrom(chrom)))
			}
			return nil
		},
	}
}

// loadModels loads the configured transcript models, through the snapshot
// when one is configured.
func loadModels(ctx context.Context) (*cache.Cache, error) {
	locations := viper.GetStringSlice("models")
	if len(locations) == 0 {
		return nil, errors.New("no transcript models configured (use --models or set models in the config file)")
	}

	path := viper.GetString("snapshot")
	if path == "" {
		return openModels(ctx, locations)
	}
	c, fromSnapshot, err := cache.OpenModelsCached(func() (*cache.Cache, error) {
		return openModels(ctx, locations)
	}, cache.NewSnapshot(path), fingerprint(locations))
	if err != nil {
		if c == nil {
			return nil, err
		}
		logger.Warn("could not write model snapshot", zap.String("path", path), zap.Error(err))
	}
	logger.Info("loaded transcript models",
		zap.Int("transcripts", c.TranscriptCount()),
		zap.Bool("snapshot", fromSnapshot))
	return c, nil
}

func openModels(ctx context.Context, locations []string) (*cache.Cache, error) {
	if len(locations) == 0 {
		return nil, errors.New("no transcript models configured (use --models or set models in the config file)")
	}
	c, err := cache.OpenModels(ctx, locations,
		cache.WithS3(cache.S3Config{
			Region:          viper.GetString("s3.region"),
			Endpoint:        viper.GetString("s3.endpoint"),
			AccessKeyID:     viper.GetString("s3.access_key_id"),
			SecretAccessKey: viper.GetString("s3.secret_access_key"),
			PathStyle:       viper.GetBool("s3.path_style"),
		}),
		cache.WithLoaderLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("loading models: %w", err)
	}
	return c, nil
}

// fingerprint identifies a model source. Several locations are combined
// so that changing any of them invalidates the snapshot.
func fingerprint(locations []string) cache.Fingerprint {
	if len(locations) == 1 {
		return cache.StatSource(locations[0])
	}
	fp := cache.Fingerprint{Source: strings.Join(locations, ",")}
	for _, loc := range locations {
		s := cache.StatSource(loc)
		fp.Size += s.Size
		if s.ModTime.After(fp.ModTime) {
			fp.ModTime = s.ModTime
		}
	}
	return fp
}

// openReference opens the configured sequence provider.
func openReference(ctx context.Context) (sequence.Source, error) {
	dsn := viper.GetString("reference")
	if dsn == "" {
		return nil, errors.New("no reference configured (use --reference or set reference in the config file)")
	}
	return sequence.Open(ctx, dsn, sequence.Options{
		CacheSize:  viper.GetInt("sequence.cache_size"),
		EnsemblURL: viper.GetString("ensembl.url"),
		Timeout:    viper.GetDuration("ensembl.timeout"),
		Logger:     logger,
	})
}
