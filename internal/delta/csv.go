package delta

import (
	"encoding/csv"
	"io"
	"strconv"

	"airdelta/internal/model"
)

// WriteReportCSV writes one row per joined instant.
func WriteReportCSV(out io.Writer, report *model.DeltaReport) error {
	w := csv.NewWriter(out)

	header := []string{
		"timestamp",
		"indoor",
		"outdoor",
		"delta",
		"indoor_source",
		"outdoor_source",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, p := range report.Points {
		row := []string{
			p.Instant.UTC().Format(model.TimestampLayout),
			fmtFloat(p.Indoor),
			fmtFloat(p.Outdoor),
			fmtFloat(p.Delta),
			string(p.IndoorSource),
			string(p.OutdoorSource),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// WriteSeriesCSV writes observations as timestamp,value rows.
func WriteSeriesCSV(out io.Writer, obs []model.Observation) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"timestamp", "value"}); err != nil {
		return err
	}
	for _, o := range obs {
		if err := w.Write([]string{o.Instant.UTC().Format(model.TimestampLayout), fmtFloat(o.Value)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
