package navbar

// Overlay identifies which navbar dropdown is open. At most one is.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayNotifications
	OverlayUserMenu
)

func (o Overlay) String() string {
	switch o {
	case OverlayNotifications:
		return "notifications"
	case OverlayUserMenu:
		return "user-menu"
	default:
		return "none"
	}
}

// Overlays is the exclusive open/closed state shared by the bell and the
// avatar. Opening one dropdown closes the other.
type Overlays struct {
	open Overlay
}

// Open returns the currently open overlay.
func (o Overlays) Open() Overlay {
	return o.open
}

// IsOpen reports whether x is the open overlay.
func (o Overlays) IsOpen(x Overlay) bool {
	return x != OverlayNone && o.open == x
}

// Any reports whether some overlay is open.
func (o Overlays) Any() bool {
	return o.open != OverlayNone
}

// Toggle closes x if it is open, otherwise opens it in place of whatever
// was open.
func (o *Overlays) Toggle(x Overlay) {
	if o.open == x {
		o.open = OverlayNone
		return
	}
	o.open = x
}

// Close closes any open overlay.
func (o *Overlays) Close() {
	o.open = OverlayNone
}
