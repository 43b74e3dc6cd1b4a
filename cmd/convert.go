package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/seisnet/css3convert/internal/convert"
	"github.com/seisnet/css3convert/internal/meta"
	"github.com/seisnet/css3convert/internal/stream"
)

var (
	convertInput     string
	convertMetadata  string
	convertOutput    string
	convertName      string
	convertWfDir     string
	convertAbsPaths  bool
	convertArchive   bool
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a decoded segment stream to CSS3.0",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		src, err := buildMetadataChain()
		if err != nil {
			return err
		}

		segments, err := stream.NewFileSource(convertInput).Load()
		if err != nil {
			return eris.Wrap(err, "load segments")
		}

		outDir := convertOutput
		if outDir == "" {
			outDir = cfg.Output.Dir
		}
		opts := convert.Options{
			OutputDir:     outDir,
			WaveformDir:   firstSet(convertWfDir, cfg.Output.WaveformDir),
			DatabaseName:  convertName,
			AbsolutePaths: convertAbsPaths || cfg.Output.AbsolutePaths,
			Archive:       convertArchive || cfg.Output.Archive,
		}

		journal, err := openJournal(ctx)
		if err != nil {
			return err
		}
		defer journal.Close() //nolint:errcheck

		runID, err := journal.Start(ctx, convertName, opts.OutputDir)
		if err != nil {
			return err
		}

		sum, err := convert.New(opts, src).Run(ctx, segments)
		if err != nil {
			total, succeeded := 0, 0
			if sum != nil {
				total, succeeded = sum.Total, sum.Succeeded
			}
			if logErr := journal.Fail(ctx, runID, total, succeeded, err.Error()); logErr != nil {
				zap.L().Warn("failed to record run failure", zap.Error(logErr))
			}
			return eris.Wrap(err, "convert run")
		}

		if err := journal.Complete(ctx, runID, sum.Total, sum.Succeeded); err != nil {
			zap.L().Warn("failed to record run completion", zap.Error(err))
		}

		fmt.Printf("Converted %d/%d segments into %s (database %s)\n",
			sum.Succeeded, sum.Total, sum.OutputDir, sum.Database)
		return nil
	},
}

// buildMetadataChain assembles the metadata source: local file first,
// then the configured network service.
func buildMetadataChain() (meta.Source, error) {
	var chain meta.Chain
	if convertMetadata != "" {
		chain = append(chain, meta.NewFileSource(convertMetadata))
	}
	if cfg.Metadata.ServiceURL != "" {
		chain = append(chain, meta.NewHTTPSource(cfg.Metadata.ServiceURL, meta.HTTPOptions{
			UserAgent:  cfg.Metadata.UserAgent,
			Timeout:    time.Duration(cfg.Metadata.TimeoutSecs) * time.Second,
			RateLimit:  rate.Limit(cfg.Metadata.RateLimit),
			Burst:      cfg.Metadata.Burst,
			MaxRetries: cfg.Metadata.MaxRetries,
		}))
	}
	if len(chain) == 0 {
		return nil, eris.New("no metadata source: pass --metadata or set metadata.service_url")
	}
	return chain, nil
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	convertCmd.Flags().StringVarP(&convertInput, "input", "i", "", "decoded segment stream file (required)")
	convertCmd.Flags().StringVarP(&convertMetadata, "metadata", "x", "", "local metadata tree file")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "output directory for CSS3.0 files")
	convertCmd.Flags().StringVar(&convertName, "name", "", "database name (default derived from first segment)")
	convertCmd.Flags().StringVarP(&convertWfDir, "waveform-dir", "w", "", "separate directory for the waveform store")
	convertCmd.Flags().BoolVarP(&convertAbsPaths, "absolute-paths", "a", false, "use absolute paths in wfdisc.dir")
	convertCmd.Flags().BoolVar(&convertArchive, "archive", false, "create a ZIP archive of the database")
	_ = convertCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(convertCmd)
}
