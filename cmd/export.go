package main

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/export"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export <job-id>",
	Short: "Export a job's leads to XLSX or CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		jobID := args[0]

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if _, err := st.GetJob(ctx, jobID); err != nil {
			return eris.Wrapf(err, "get job %s", jobID)
		}
		leads, err := st.ListLeads(ctx, jobID)
		if err != nil {
			return eris.Wrapf(err, "list leads for job %s", jobID)
		}

		switch strings.ToLower(exportFormat) {
		case "csv":
			out := os.Stdout
			if exportOut != "" {
				f, err := os.Create(exportOut)
				if err != nil {
					return eris.Wrapf(err, "create %s", exportOut)
				}
				defer f.Close()
				out = f
			}
			if err := export.CSV(out, leads); err != nil {
				return err
			}
		case "xlsx":
			if exportOut == "" {
				exportOut = jobID + ".xlsx"
			}
			if err := export.XLSX(exportOut, leads); err != nil {
				return err
			}
		default:
			return eris.Errorf("unknown export format %q, want csv or xlsx", exportFormat)
		}

		zap.L().Info("export complete",
			zap.String("job_id", jobID),
			zap.Int("leads", len(leads)),
			zap.String("format", exportFormat),
			zap.String("out", exportOut),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv or xlsx")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default stdout for csv, <job-id>.xlsx for xlsx)")
	rootCmd.AddCommand(exportCmd)
}
