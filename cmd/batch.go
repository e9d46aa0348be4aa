package main

import (
	"bufio"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadgen-cli/internal/model"
)

var (
	batchFile       string
	batchMaxResults int
	batchSources    []string
	batchSignals    string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run many jobs from a query file concurrently",
	Long:  "Reads one job per line in the form \"query|location\" and runs them as independent jobs, bounded by batch.max_concurrent_jobs.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		specs, err := readBatchFile(batchFile)
		if err != nil {
			return err
		}
		if len(specs) == 0 {
			zap.L().Info("no jobs in batch file")
			return nil
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		orch, err := newOrchestrator(st, batchSignals)
		if err != nil {
			return err
		}

		concurrency := cfg.Batch.MaxConcurrentJobs
		if concurrency <= 0 {
			concurrency = 2
		}
		zap.L().Info("processing batch",
			zap.Int("jobs", len(specs)),
			zap.Int("concurrency", concurrency),
		)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)

		var succeeded, failed atomic.Int64

		for _, spec := range specs {
			params := spec
			g.Go(func() error {
				log := zap.L().With(
					zap.String("query", params.Query),
					zap.String("location", params.Location),
				)

				job, err := st.CreateJob(gctx, params)
				if err != nil {
					failed.Add(1)
					log.Error("creating job failed", zap.Error(err))
					return nil
				}
				if err := orch.Run(gctx, job.ID); err != nil {
					failed.Add(1)
					log.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
					return nil // one job's failure never aborts the batch
				}

				succeeded.Add(1)
				log.Info("job complete", zap.String("job_id", job.ID))
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "batch processing")
		}

		zap.L().Info("batch complete",
			zap.Int64("succeeded", succeeded.Load()),
			zap.Int64("failed", failed.Load()),
		)
		return nil
	},
}

// readBatchFile parses "query|location" lines, skipping blanks and comments.
func readBatchFile(path string) ([]model.JobParams, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open batch file %s", path)
	}
	defer f.Close()

	var specs []model.JobParams
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		query, location, ok := strings.Cut(line, "|")
		if !ok {
			return nil, eris.Errorf("malformed batch line %q, want \"query|location\"", line)
		}
		specs = append(specs, model.JobParams{
			Query:          strings.TrimSpace(query),
			Location:       strings.TrimSpace(location),
			MaxResults:     batchMaxResults,
			SourcesEnabled: batchSources,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrapf(err, "read batch file %s", path)
	}
	return specs, nil
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "path to the batch query file (required)")
	batchCmd.Flags().IntVar(&batchMaxResults, "max-results", 0, "per-source result cap for every job")
	batchCmd.Flags().StringSliceVar(&batchSources, "sources", nil, "sources to fetch from for every job")
	batchCmd.Flags().StringVar(&batchSignals, "signals", "", "path to a YAML file of external intent signals")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}
