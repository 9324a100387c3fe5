package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Notification is an alert shown to a logged-in user in the navbar dropdown.
type Notification struct {
	// ID is the server-assigned identifier. Numeric IDs are accepted on the
	// wire and kept in their decimal string form.
	ID string `json:"id"`

	// Message is the human-readable notification text.
	Message string `json:"message"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read"`

	// Timestamp is when the notification was generated.
	Timestamp time.Time `json:"timestamp"`
}

// epochMillisThreshold separates Unix seconds from Unix milliseconds in
// numeric timestamps.
const epochMillisThreshold = 100_000_000_000

// UnmarshalJSON accepts the id field as either a JSON string or number, and
// the timestamp as either an RFC 3339 string or a Unix epoch number.
func (n *Notification) UnmarshalJSON(data []byte) error {
	type plain Notification
	var raw struct {
		plain
		ID        json.RawMessage `json:"id"`
		Timestamp json.RawMessage `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*n = Notification(raw.plain)
	ts, err := parseTimestamp(raw.Timestamp)
	if err != nil {
		return err
	}
	n.Timestamp = ts

	n.ID = ""
	if len(raw.ID) == 0 || string(raw.ID) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(raw.ID, &s); err == nil {
		n.ID = s
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(raw.ID, &num); err != nil {
		return fmt.Errorf("notification id %s: %w", string(raw.ID), err)
	}
	if i, err := num.Int64(); err == nil {
		n.ID = strconv.FormatInt(i, 10)
		return nil
	}
	n.ID = num.String()
	return nil
}

func parseTimestamp(data json.RawMessage) (time.Time, error) {
	if len(data) == 0 || string(data) == "null" {
		return time.Time{}, nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			return time.Time{}, nil
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("notification timestamp %q: %w", s, err)
		}
		return t, nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return time.Time{}, fmt.Errorf("notification timestamp %s: %w", string(data), err)
	}
	v, err := num.Int64()
	if err != nil {
		f, ferr := num.Float64()
		if ferr != nil {
			return time.Time{}, fmt.Errorf("notification timestamp %s: %w", num, ferr)
		}
		v = int64(f)
	}
	if v >= epochMillisThreshold || v <= -epochMillisThreshold {
		return time.UnixMilli(v).UTC(), nil
	}
	return time.Unix(v, 0).UTC(), nil
}

// UnreadCount returns the number of notifications whose Read flag is false.
func UnreadCount(items []Notification) int {
	count := 0
	for _, n := range items {
		if !n.Read {
			count++
		}
	}
	return count
}
