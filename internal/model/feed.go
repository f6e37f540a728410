package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ThingSpeakFeed matches the JSON shape of a ThingSpeak channel field feed.
//
// Example:
//
//	{
//	  "channel": {"id": 2580816, "name": "indoor", "field4": "CO2", ...},
//	  "feeds": [{"created_at": "2024-05-01T10:00:00Z", "entry_id": 1, "field4": "412"}]
//	}
//
// Feeds is a pointer so a missing "feeds" key can be told apart from an empty one.
type ThingSpeakFeed struct {
	Channel ChannelInfo  `json:"channel"`
	Feeds   *[]FeedEntry `json:"feeds"`
}

// ChannelInfo is the channel header ThingSpeak returns with every feed.
type ChannelInfo struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	LastEntryID int64  `json:"last_entry_id"`

	Field1 string `json:"field1,omitempty"`
	Field2 string `json:"field2,omitempty"`
	Field3 string `json:"field3,omitempty"`
	Field4 string `json:"field4,omitempty"`
	Field5 string `json:"field5,omitempty"`
	Field6 string `json:"field6,omitempty"`
	Field7 string `json:"field7,omitempty"`
	Field8 string `json:"field8,omitempty"`
}

// FieldLabel returns the human label configured for field n (1..8), or "".
func (c ChannelInfo) FieldLabel(n int) string {
	labels := [...]string{c.Field1, c.Field2, c.Field3, c.Field4, c.Field5, c.Field6, c.Field7, c.Field8}
	if n < 1 || n > len(labels) {
		return ""
	}
	return labels[n-1]
}

// FeedEntry is one row of a feed. Field keys vary with the requested field
// ("field1".."field8"), so the row is kept as raw JSON per key.
type FeedEntry map[string]json.RawMessage

// RawReading converts the entry into a provider-neutral reading for the given field.
func (e FeedEntry) RawReading(field int) RawReading {
	return RawReading{
		Timestamp: rawString(e["created_at"]),
		Value:     rawString(e[FieldKey(field)]),
	}
}

// FieldKey is the feed key for a field index, e.g. 4 -> "field4".
func FieldKey(field int) string {
	return "field" + strconv.Itoa(field)
}

// Readings converts every feed entry for the given field.
func (f *ThingSpeakFeed) Readings(field int) []RawReading {
	if f == nil || f.Feeds == nil {
		return nil
	}
	out := make([]RawReading, 0, len(*f.Feeds))
	for _, e := range *f.Feeds {
		out = append(out, e.RawReading(field))
	}
	return out
}

// Validate reports whether the envelope is usable.
func (f *ThingSpeakFeed) Validate() error {
	if f == nil {
		return fmt.Errorf("feed is nil")
	}
	if f.Feeds == nil {
		return fmt.Errorf("feed envelope has no \"feeds\" array")
	}
	return nil
}

// rawString renders a JSON scalar as the string a provider would have sent:
// strings are unquoted, numbers kept verbatim, null and missing become "".
func rawString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}
	return string(raw)
}
