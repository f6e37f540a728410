package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"airdelta/internal/model"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultThingSpeakURL = "https://api.thingspeak.com"
	DefaultMaxResults    = 8000
	DefaultFetchTimeout  = 15 * time.Second
)

// ThingSpeakClient fetches channel field feeds from the ThingSpeak read API.
type ThingSpeakClient struct {
	APIKey     string
	MaxResults int

	client *resty.Client
	log    *slog.Logger
}

// ThingSpeakOptions configures NewThingSpeakClient. Zero fields take defaults.
type ThingSpeakOptions struct {
	BaseURL    string
	APIKey     string
	MaxResults int
	Timeout    time.Duration
	Logger     *slog.Logger
}

// NewThingSpeakClient creates a new ThingSpeak client.
// If BaseURL is empty, defaults to "https://api.thingspeak.com".
func NewThingSpeakClient(opts ThingSpeakOptions) *ThingSpeakClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultThingSpeakURL
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
	rc := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")
	return &ThingSpeakClient{
		APIKey:     opts.APIKey,
		MaxResults: opts.MaxResults,
		client:     rc,
		log:        opts.Logger.With("component", "thingspeak"),
	}
}

// FeedError is a failed or unusable response from a feed provider.
type FeedError struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter string // For rate limit errors
	Err        error
}

func (e *FeedError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *FeedError) Unwrap() error { return e.Err }

// Fetch returns the raw readings of one channel field, oldest first as the
// provider sends them. Transport failures, non-200 responses and malformed
// envelopes are reported as *FeedError.
func (c *ThingSpeakClient) Fetch(ctx context.Context, channelID string, field int) ([]model.RawReading, error) {
	if channelID == "" {
		return nil, fmt.Errorf("channel id is required")
	}
	if field < 1 || field > 8 {
		return nil, fmt.Errorf("field index must be in 1..8, got %d", field)
	}

	feed, err := c.get(ctx, "/channels/{channel}/fields/{field}.json", map[string]string{
		"channel": channelID,
		"field":   strconv.Itoa(field),
	}, c.MaxResults)
	if err != nil {
		return nil, err
	}
	readings := feed.Readings(field)
	c.log.Debug("feed received", "channel", channelID, "field", field, "entries", len(readings))
	return readings, nil
}

// Channel returns the channel header and its most recent entry.
func (c *ThingSpeakClient) Channel(ctx context.Context, channelID string) (*model.ThingSpeakFeed, error) {
	if channelID == "" {
		return nil, fmt.Errorf("channel id is required")
	}
	return c.get(ctx, "/channels/{channel}/feeds.json", map[string]string{"channel": channelID}, 1)
}

func (c *ThingSpeakClient) get(ctx context.Context, path string, pathParams map[string]string, results int) (*model.ThingSpeakFeed, error) {
	req := c.client.R().
		SetContext(ctx).
		SetPathParams(pathParams).
		SetQueryParam("results", strconv.Itoa(results))
	if c.APIKey != "" {
		req.SetQueryParam("api_key", c.APIKey)
	}

	channelID := pathParams["channel"]
	start := time.Now()
	resp, err := req.Get(path)
	duration := time.Since(start)
	if err != nil {
		c.log.Warn("request failed", "channel", channelID, "path", path, "duration", duration, "err", err)
		code := "UNREACHABLE"
		if errors.Is(err, context.DeadlineExceeded) {
			code = "TIMEOUT"
		}
		return nil, &FeedError{Code: code, Message: "feed request failed", Err: err}
	}

	c.log.Info("response",
		"channel", channelID,
		"status", resp.StatusCode(),
		"duration", duration,
		"bytes", len(resp.Body()))

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, &FeedError{
			StatusCode: resp.StatusCode(),
			Code:       "CHANNEL_NOT_FOUND",
			Message:    fmt.Sprintf("channel %s not found", channelID),
		}
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, &FeedError{
			StatusCode: resp.StatusCode(),
			Code:       "UNAUTHORIZED",
			Message:    "read API key missing or invalid",
		}
	case http.StatusTooManyRequests:
		retryAfter := resp.Header().Get("Retry-After")
		return nil, &FeedError{
			StatusCode: resp.StatusCode(),
			Code:       "RATE_LIMIT_EXCEEDED",
			Message:    fmt.Sprintf("rate limit exceeded, retry after: %s", retryAfter),
			RetryAfter: retryAfter,
		}
	default:
		return nil, &FeedError{
			StatusCode: resp.StatusCode(),
			Code:       "API_ERROR",
			Message:    fmt.Sprintf("API returned status %d", resp.StatusCode()),
		}
	}

	feed, err := decodeFeed(resp.Body())
	if err != nil {
		c.log.Warn("malformed feed", "channel", channelID, "err", err)
		return nil, err
	}
	return feed, nil
}

// decodeFeed parses and validates a ThingSpeak envelope.
// ThingSpeak answers some bad requests with a bare "-1" and status 200.
func decodeFeed(body []byte) (*model.ThingSpeakFeed, error) {
	var feed model.ThingSpeakFeed
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, &FeedError{StatusCode: http.StatusOK, Code: "MALFORMED_FEED", Message: "cannot decode feed", Err: err}
	}
	if err := feed.Validate(); err != nil {
		return nil, &FeedError{StatusCode: http.StatusOK, Code: "MALFORMED_FEED", Message: "unusable feed", Err: err}
	}
	return &feed, nil
}
