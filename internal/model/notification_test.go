package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackit/stackit-tui/internal/model"
)

func TestNotification_UnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string id", `{"id":"abc","message":"m"}`, "abc"},
		{"numeric id", `{"id":17,"message":"m"}`, "17"},
		{"null id", `{"id":null,"message":"m"}`, ""},
		{"missing id", `{"message":"m"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n model.Notification
			require.NoError(t, json.Unmarshal([]byte(tt.body), &n))
			assert.Equal(t, tt.want, n.ID)
			assert.Equal(t, "m", n.Message)
		})
	}
}

func TestNotification_UnmarshalFields(t *testing.T) {
	var n model.Notification
	body := `{"id":"n1","message":"New answer","read":true,"timestamp":"2024-05-01T10:00:00Z"}`
	require.NoError(t, json.Unmarshal([]byte(body), &n))

	assert.Equal(t, "New answer", n.Message)
	assert.True(t, n.Read)
	assert.True(t, n.Timestamp.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))
}

func TestNotification_UnmarshalTimestamp(t *testing.T) {
	want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		body string
		want time.Time
	}{
		{"rfc3339", `{"timestamp":"2024-05-01T10:00:00Z"}`, want},
		{"epoch millis", `{"timestamp":1714557600000}`, want},
		{"epoch seconds", `{"timestamp":1714557600}`, want},
		{"null", `{"timestamp":null}`, time.Time{}},
		{"missing", `{}`, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n model.Notification
			require.NoError(t, json.Unmarshal([]byte(tt.body), &n))
			assert.True(t, n.Timestamp.Equal(tt.want), "got %s", n.Timestamp)
		})
	}
}

func TestNotification_BadTimestamp(t *testing.T) {
	var n model.Notification
	assert.Error(t, json.Unmarshal([]byte(`{"timestamp":"yesterday"}`), &n))
	assert.Error(t, json.Unmarshal([]byte(`{"timestamp":true}`), &n))
}

func TestNotification_BadID(t *testing.T) {
	var n model.Notification
	assert.Error(t, json.Unmarshal([]byte(`{"id":true}`), &n))
}

func TestUnreadCount(t *testing.T) {
	assert.Equal(t, 0, model.UnreadCount(nil))
	assert.Equal(t, 2, model.UnreadCount([]model.Notification{
		{ID: "1"}, {ID: "2", Read: true}, {ID: "3"},
	}))
}
