package domain

import (
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Link is a cable between two ports. It has no identity beyond its endpoints
// and is owned by the network that declares it, not by either device.
type Link struct {
	Left  Port `json:"left" yaml:"left"`
	Right Port `json:"right" yaml:"right"`
}

// NewLink creates a link between two ports
func NewLink(left, right Port) Link {
	return Link{Left: left, Right: right}
}

// IsUp reports whether both endpoints are up. A degraded endpoint is not up.
func (l Link) IsUp() bool {
	return l.Left.IsUp() && l.Right.IsUp()
}

// IsOperational reports whether both endpoints carry traffic
func (l Link) IsOperational() bool {
	return l.Left.IsOperational() && l.Right.IsOperational()
}

// Status aggregates endpoint health: the link is as healthy as its worst end
func (l Link) Status() DeviceStatus {
	return worst(l.Left.Status, l.Right.Status)
}

// Key returns a deterministic fingerprint of the endpoints.
// The same cable yields the same key regardless of direction.
func (l Link) Key() string {
	a, b := l.Left.Key(), l.Right.Key()
	if a > b {
		a, b = b, a
	}
	hash := blake2b.Sum256([]byte(a + "|" + b))
	return fmt.Sprintf("%x", hash[:8])
}

// Normalize orders the endpoints by port key
func (l *Link) Normalize() {
	if l.Left.Key() > l.Right.Key() {
		l.Left, l.Right = l.Right, l.Left
	}
}

// Involves checks if this link terminates on the given port key
func (l Link) Involves(portKey string) bool {
	return l.Left.Key() == portKey || l.Right.Key() == portKey
}

// String renders the link for logs
func (l Link) String() string {
	return fmt.Sprintf("%s<->%s", l.Left.Key(), l.Right.Key())
}
