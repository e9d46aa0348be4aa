package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
)

var (
	runQuery      string
	runLocation   string
	runMaxResults int
	runSources    []string
	runVertical   string
	runSignals    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one lead generation job synchronously",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		orch, err := newOrchestrator(st, runSignals)
		if err != nil {
			return err
		}

		job, err := st.CreateJob(ctx, model.JobParams{
			Query:          runQuery,
			Location:       runLocation,
			MaxResults:     runMaxResults,
			SourcesEnabled: runSources,
			Vertical:       runVertical,
		})
		if err != nil {
			return eris.Wrap(err, "create job")
		}

		if err := orch.Run(ctx, job.ID); err != nil {
			return eris.Wrap(err, "run job")
		}

		final, err := st.GetJob(ctx, job.ID)
		if err != nil {
			return eris.Wrap(err, "load finished job")
		}

		zap.L().Info("job finished",
			zap.String("job_id", final.ID),
			zap.String("status", string(final.Status)),
			zap.Int("raw", final.TotalRaw),
			zap.Int("after_dedup", final.TotalAfterDedup),
			zap.Int("final", final.TotalFinal),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(final)
	},
}

func init() {
	runCmd.Flags().StringVar(&runQuery, "query", "", "business search query (required)")
	runCmd.Flags().StringVar(&runLocation, "location", "", "location, e.g. \"Austin, TX\" (required)")
	runCmd.Flags().IntVar(&runMaxResults, "max-results", 0, "per-source result cap (default from config)")
	runCmd.Flags().StringSliceVar(&runSources, "sources", nil, "sources to fetch from, in order (default google_maps)")
	runCmd.Flags().StringVar(&runVertical, "vertical", "", "vertical hint for intent-phrase sources (real_estate, cars)")
	runCmd.Flags().StringVar(&runSignals, "signals", "", "path to a YAML file of external intent signals")
	_ = runCmd.MarkFlagRequired("query")
	_ = runCmd.MarkFlagRequired("location")
	rootCmd.AddCommand(runCmd)
}
