package domain

// PortRole identifies which named port collection of a device a port sits in
type PortRole string

const (
	PortRoleLAN    PortRole = "lan"
	PortRoleUplink PortRole = "uplink"
	PortRoleWAN    PortRole = "wan"
)

// Outward reports whether the role faces away from the device's own segment
// (uplink or wan).
func (r PortRole) Outward() bool {
	return r == PortRoleUplink || r == PortRoleWAN
}

// Port is a physical network port owned by exactly one device
type Port struct {
	SerialNumber string       `json:"serial_number" yaml:"serial_number"`
	Name         string       `json:"name" yaml:"name"`
	Model        string       `json:"model,omitempty" yaml:"model,omitempty"`
	Number       int64        `json:"number" yaml:"number"`
	MAC          string       `json:"mac,omitempty" yaml:"mac,omitempty"`
	Status       DeviceStatus `json:"status" yaml:"status"`
	SpeedGb      int64        `json:"speed_gb,omitempty" yaml:"speed_gb,omitempty"`
}

// Key returns the stable identifier of the port: its serial number, or its
// MAC address when no serial is recorded.
func (p Port) Key() string {
	if p.SerialNumber != "" {
		return p.SerialNumber
	}
	return p.MAC
}

// IsUp reports whether the port is fully up
func (p Port) IsUp() bool {
	return p.Status.IsUp()
}

// IsOperational reports whether the port is up or degraded
func (p Port) IsOperational() bool {
	return p.Status.IsOperational()
}

// WithStatus returns a copy of the port carrying a new status
func (p Port) WithStatus(status DeviceStatus) Port {
	p.Status = status
	return p
}

// PortGroup is a named port collection of a device
type PortGroup struct {
	Role  PortRole
	Ports []Port
}
