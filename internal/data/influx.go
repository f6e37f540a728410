package data

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"airdelta/internal/model"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
)

// DefaultMeasurement is the measurement the sensor gateway writes into.
const DefaultMeasurement = "sensor_data"

// InfluxSource reads channel field feeds mirrored into InfluxDB. Points are
// expected under DefaultMeasurement with tag device_id = channel id and field
// keys named like ThingSpeak's ("field4").
type InfluxSource struct {
	client      influxdb2.Client
	org         string
	bucket      string
	measurement string
	maxResults  int
	log         *slog.Logger
}

// InfluxOptions configures NewInfluxSource.
type InfluxOptions struct {
	URL         string
	Token       string
	Org         string
	Bucket      string
	Measurement string
	MaxResults  int
	Timeout     time.Duration
	Logger      *slog.Logger
}

// NewInfluxSource creates a new InfluxDB-backed feed source.
func NewInfluxSource(opts InfluxOptions) (*InfluxSource, error) {
	if opts.URL == "" || opts.Token == "" || opts.Org == "" || opts.Bucket == "" {
		return nil, fmt.Errorf("InfluxDB configuration is incomplete: url, token, org and bucket are required")
	}
	if opts.Measurement == "" {
		opts.Measurement = DefaultMeasurement
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultFetchTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	clientOpts := influxdb2.DefaultOptions().SetHTTPRequestTimeout(uint(opts.Timeout / time.Second))
	return &InfluxSource{
		client:      influxdb2.NewClientWithOptions(opts.URL, opts.Token, clientOpts),
		org:         opts.Org,
		bucket:      opts.Bucket,
		measurement: opts.Measurement,
		maxResults:  opts.MaxResults,
		log:         opts.Logger.With("component", "influxdb"),
	}, nil
}

// Fetch returns the most recent MaxResults readings of one channel field.
func (s *InfluxSource) Fetch(ctx context.Context, channelID string, field int) ([]model.RawReading, error) {
	query := buildFluxQuery(s.bucket, s.measurement, channelID, model.FieldKey(field), s.maxResults)

	start := time.Now()
	result, err := s.client.QueryAPI(s.org).Query(ctx, query)
	if err != nil {
		s.log.Warn("query failed", "channel", channelID, "field", field, "err", err)
		return nil, &FeedError{Code: "UNREACHABLE", Message: "influxdb query failed", Err: err}
	}
	defer result.Close()

	var out []model.RawReading
	for result.Next() {
		rec := result.Record()
		out = append(out, model.RawReading{
			Timestamp: rec.Time().UTC().Format(time.RFC3339Nano),
			Value:     formatValue(rec.Value()),
		})
	}
	if err := result.Err(); err != nil {
		return nil, &FeedError{Code: "MALFORMED_FEED", Message: "influxdb result decoding failed", Err: err}
	}
	s.log.Info("query", "channel", channelID, "field", field, "rows", len(out), "duration", time.Since(start))
	return out, nil
}

// Close releases the underlying HTTP resources.
func (s *InfluxSource) Close() {
	s.client.Close()
}

func buildFluxQuery(bucket, measurement, channelID, fieldKey string, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "from(bucket: %s)\n", strconv.Quote(bucket))
	b.WriteString("  |> range(start: 0)\n")
	fmt.Fprintf(&b, "  |> filter(fn: (r) => r._measurement == %s and r.device_id == %s and r._field == %s)\n",
		strconv.Quote(measurement), strconv.Quote(channelID), strconv.Quote(fieldKey))
	b.WriteString("  |> sort(columns: [\"_time\"])\n")
	fmt.Fprintf(&b, "  |> tail(n: %d)", limit)
	return b.String()
}

// formatValue renders a Flux value the way a feed provider would send it.
func formatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	default:
		return fmt.Sprint(x)
	}
}
