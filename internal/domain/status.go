package domain

import "fmt"

// DeviceStatus is the health of an atomic physical unit (device or port)
type DeviceStatus string

const (
	StatusUp       DeviceStatus = "up"
	StatusDown     DeviceStatus = "down"
	StatusDegraded DeviceStatus = "degraded" // Reachable but running with reduced capacity
)

// ParseDeviceStatus converts a string to a DeviceStatus
func ParseDeviceStatus(s string) (DeviceStatus, error) {
	switch DeviceStatus(s) {
	case StatusUp, StatusDown, StatusDegraded:
		return DeviceStatus(s), nil
	}
	return "", fmt.Errorf("unknown device status %q", s)
}

// IsUp reports whether the unit is fully available. Degraded is not up.
func (s DeviceStatus) IsUp() bool {
	return s == StatusUp
}

// IsOperational reports whether the unit carries traffic at all, possibly
// with reduced capacity.
func (s DeviceStatus) IsOperational() bool {
	return s == StatusUp || s == StatusDegraded
}

// Valid reports whether s is one of the known states
func (s DeviceStatus) Valid() bool {
	switch s {
	case StatusUp, StatusDown, StatusDegraded:
		return true
	}
	return false
}

// worst returns the less healthy of two statuses. Unknown values rank as down.
func worst(a, b DeviceStatus) DeviceStatus {
	if statusRank(a) <= statusRank(b) {
		return a
	}
	return b
}

func statusRank(s DeviceStatus) int {
	switch s {
	case StatusUp:
		return 2
	case StatusDegraded:
		return 1
	default:
		return 0
	}
}
