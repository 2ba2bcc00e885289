package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"fertigation.io/farmwatch/internal/domain"
)

// CSVHeader is the first row of every readings export.
var CSVHeader = []string{"Sensor ID", "Farm", "Flow Rate", "Pressure", "Conductivity", "Status", "Timestamp"}

// WriteReadingsCSV writes one row per reading after the header. Fields are
// quoted as needed, so commas and quotes in farm names survive. Readings
// without a farm get an empty Farm cell; timestamps are RFC 3339 in UTC.
func WriteReadingsCSV(w io.Writer, readings []domain.ReadingView) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range readings {
		farm := ""
		if r.FarmName != nil {
			farm = *r.FarmName
		}
		row := []string{
			r.SensorID,
			farm,
			formatNumber(r.FlowRate),
			formatNumber(r.Pressure),
			formatNumber(r.Conductivity),
			r.Status,
			r.Timestamp.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFilename names an export taken at t.
func ExportFilename(t time.Time) string {
	return "sensor-readings-" + t.UTC().Format("2006-01-02T15-04-05Z") + ".csv"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
