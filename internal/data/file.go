package data

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"airdelta/internal/model"
)

// LoadFeedJSON reads a ThingSpeak feed envelope saved to disk.
func LoadFeedJSON(path string) (*model.ThingSpeakFeed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeFeed(raw)
}

// FileSource serves feeds from saved snapshots laid out as {Dir}/{channel}.json.
// It lets the CLI and tests run the engine without network access.
type FileSource struct {
	Dir string
}

// Fetch implements the feed source contract over local files. A missing or
// unreadable file is reported as a *FeedError just like a remote failure.
func (s FileSource) Fetch(ctx context.Context, channelID string, field int) ([]model.RawReading, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FeedError{Code: "CANCELLED", Message: "feed read cancelled", Err: err}
	}
	path := filepath.Join(s.Dir, channelID+".json")
	feed, err := LoadFeedJSON(path)
	if err != nil {
		if fe, ok := err.(*FeedError); ok {
			return nil, fe
		}
		if os.IsNotExist(err) {
			return nil, &FeedError{Code: "CHANNEL_NOT_FOUND", Message: fmt.Sprintf("no snapshot for channel %s", channelID), Err: err}
		}
		return nil, &FeedError{Code: "UNREACHABLE", Message: "cannot read snapshot", Err: err}
	}
	return feed.Readings(field), nil
}
