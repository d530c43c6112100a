package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Construction anomalies reported by BuildGraph
var (
	ErrDanglingPortReference = errors.New("dangling port reference")
	ErrSelfLoop              = errors.New("self-loop link")
	ErrDuplicateLinkEndpoint = errors.New("duplicate link endpoint")
	ErrDuplicateDevice       = errors.New("duplicate device")
	ErrAmbiguousPort         = errors.New("port listed by more than one device")
	ErrMissingIdentity       = errors.New("device has no serial number or name")
)

// LinkError reports a link that was left out of the connectivity graph
type LinkError struct {
	Link Link
	Err  error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("link %s: %v", e.Link, e.Err)
}

func (e *LinkError) Unwrap() error {
	return e.Err
}

// DeviceError reports a device or port that was left out of the connectivity graph
type DeviceError struct {
	DeviceID string
	Kind     DeviceKind
	PortKey  string // set for port-level anomalies
	Err      error
}

func (e *DeviceError) Error() string {
	if e.PortKey != "" {
		return fmt.Sprintf("%s %s port %s: %v", e.Kind, e.DeviceID, e.PortKey, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Kind, e.DeviceID, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// BuildError collects every anomaly found while building a graph.
// The graph returned alongside it is still usable: anomalous links and
// devices are skipped.
type BuildError struct {
	Anomalies []error
}

func (e *BuildError) Error() string {
	msgs := make([]string, 0, len(e.Anomalies))
	for _, a := range e.Anomalies {
		msgs = append(msgs, a.Error())
	}
	return fmt.Sprintf("%d modeling anomalies: %s", len(e.Anomalies), strings.Join(msgs, "; "))
}

func (e *BuildError) Unwrap() []error {
	return e.Anomalies
}

// AnomalyReason maps an anomaly to a short stable label
func AnomalyReason(err error) string {
	switch {
	case errors.Is(err, ErrDanglingPortReference):
		return "dangling_port"
	case errors.Is(err, ErrSelfLoop):
		return "self_loop"
	case errors.Is(err, ErrDuplicateLinkEndpoint):
		return "duplicate_endpoint"
	case errors.Is(err, ErrDuplicateDevice):
		return "duplicate_device"
	case errors.Is(err, ErrAmbiguousPort):
		return "ambiguous_port"
	case errors.Is(err, ErrMissingIdentity):
		return "missing_identity"
	}
	return "unknown"
}
