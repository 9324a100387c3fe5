package notify

import (
	"strconv"

	"github.com/stackit/stackit-tui/internal/model"
)

// Status describes where the panel's list came from.
type Status int

const (
	StatusSignedOut Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSignedOut:
		return "signed-out"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Panel is the notification dropdown's state. The zero value is an empty,
// signed-out panel.
type Panel struct {
	items  []model.Notification
	status Status
	err    error
}

// Items returns a copy of the current list.
func (p Panel) Items() []model.Notification {
	out := make([]model.Notification, len(p.items))
	copy(out, p.items)
	return out
}

// Status returns the panel's load status.
func (p Panel) Status() Status {
	return p.status
}

// Err returns the last fetch error when Status is StatusFailed.
func (p Panel) Err() error {
	return p.err
}

// UnreadCount is recomputed from the list on every call.
func (p Panel) UnreadCount() int {
	return model.UnreadCount(p.items)
}

// Badge returns the unread badge text and whether it should be shown.
func (p Panel) Badge() (string, bool) {
	n := p.UnreadCount()
	if n == 0 {
		return "", false
	}
	return strconv.Itoa(n), true
}

// SetLoading marks a fetch as in flight; the current list stays visible.
func (p *Panel) SetLoading() {
	p.status = StatusLoading
	p.err = nil
}

// Replace swaps in a freshly fetched list.
func (p *Panel) Replace(items []model.Notification) {
	p.items = make([]model.Notification, len(items))
	copy(p.items, items)
	p.status = StatusReady
	p.err = nil
}

// Seed shows cached items while the first fetch is in flight. It does
// nothing once a list has been loaded.
func (p *Panel) Seed(items []model.Notification) {
	if p.status != StatusLoading || len(p.items) > 0 {
		return
	}
	p.items = make([]model.Notification, len(items))
	copy(p.items, items)
}

// Fail records a fetch failure and keeps the previous list.
func (p *Panel) Fail(err error) {
	p.status = StatusFailed
	p.err = err
}

// MarkAllRead marks every item read and returns the IDs that were unread.
// Calling it again returns nothing and leaves the state unchanged.
func (p *Panel) MarkAllRead() []string {
	var changed []string
	updated := make([]model.Notification, len(p.items))
	for i, n := range p.items {
		if !n.Read {
			changed = append(changed, n.ID)
			n.Read = true
		}
		updated[i] = n
	}
	p.items = updated
	return changed
}

// Reset empties the panel and returns it to the signed-out state.
func (p *Panel) Reset() {
	p.items = nil
	p.status = StatusSignedOut
	p.err = nil
}
