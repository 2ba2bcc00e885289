package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"fertigation.io/farmwatch/internal/repository"
	"fertigation.io/farmwatch/internal/service"
)

// exportReadings writes the analytics window as CSV and returns the row count.
func exportReadings(ctx context.Context, readings repository.ReadingRepository, w io.Writer) (int, error) {
	rows, err := service.NewAnalyticsService(readings, nil).
		RecentReadings(ctx, repository.ReadingFilter{Limit: service.AnalyticsWindow})
	if err != nil {
		return 0, err
	}
	if err := service.WriteReadingsCSV(w, rows); err != nil {
		return 0, fmt.Errorf("write csv: %w", err)
	}
	return len(rows), nil
}

func (c *cli) exportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the latest readings as CSV",
		Long: `Write the readings behind the analytics view as CSV. Use "-o -" for
stdout; without -o the file is named sensor-readings-<date>.csv.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := c.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			if output == "-" {
				_, err := exportReadings(cmd.Context(), db.Store.Readings, cmd.OutOrStdout())
				return err
			}
			if output == "" {
				output = service.ExportFilename(time.Now())
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			n, err := exportReadings(cmd.Context(), db.Store.Readings, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d readings to %s\n", n, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", `output file, "-" for stdout`)
	return cmd
}
