package domain

import "encoding/json"

// DeviceKind is the closed set of active networking equipment
type DeviceKind string

const (
	KindSwitch   DeviceKind = "switch"
	KindRouter   DeviceKind = "router"
	KindFirewall DeviceKind = "firewall"
)

// LinkLayer is the OSI layer a switch forwards on
type LinkLayer string

const (
	Layer2 LinkLayer = "layer2"
	Layer3 LinkLayer = "layer3"
)

// SwitchRole is the tier a switch occupies in a hierarchical design
type SwitchRole string

const (
	SwitchAccess       SwitchRole = "access"
	SwitchDistribution SwitchRole = "distribution"
	SwitchCore         SwitchRole = "core"
)

// Tier returns the switch's height in a three-tier design (access = 0).
// ok is false for an unset or unknown role.
func (r SwitchRole) Tier() (tier int, ok bool) {
	switch r {
	case SwitchAccess:
		return 0, true
	case SwitchDistribution:
		return 1, true
	case SwitchCore:
		return 2, true
	}
	return -1, false
}

// SwitchManagement tells whether a switch exposes a management plane
type SwitchManagement string

const (
	Managed   SwitchManagement = "managed"
	Unmanaged SwitchManagement = "unmanaged"
)

// RouterRole is the position of a router in the fabric
type RouterRole string

const (
	RouterCore RouterRole = "core"
	RouterEdge RouterRole = "edge"
)

// Equipment holds the fields shared by every networking device
type Equipment struct {
	SerialNumber string       `json:"serial_number" yaml:"serial_number"`
	Name         string       `json:"name" yaml:"name"`
	Model        string       `json:"model,omitempty" yaml:"model,omitempty"`
	Number       int64        `json:"number" yaml:"number"`
	Status       DeviceStatus `json:"status" yaml:"status"`
}

// ID returns the stable identifier of the device
func (e Equipment) ID() string {
	if e.SerialNumber != "" {
		return e.SerialNumber
	}
	return e.Name
}

// IsUp reports whether the device is fully up
func (e Equipment) IsUp() bool {
	return e.Status.IsUp()
}

// Device is one piece of active networking equipment.
// The set of implementations is closed: Switch, Router and Firewall.
type Device interface {
	Kind() DeviceKind
	Identity() Equipment
	// PortGroups returns the device's port collections in a fixed order
	PortGroups() []PortGroup
	device()
}

// Switch forwards traffic inside the fabric
type Switch struct {
	Equipment   `yaml:",inline"`
	Layer       LinkLayer        `json:"layer" yaml:"layer"`
	Role        SwitchRole       `json:"role" yaml:"role"`
	Management  SwitchManagement `json:"management" yaml:"management"`
	LANPorts    []Port           `json:"lan_ports" yaml:"lan_ports"`
	UplinkPorts []Port           `json:"uplink_ports" yaml:"uplink_ports"`
}

func (s Switch) Kind() DeviceKind    { return KindSwitch }
func (s Switch) Identity() Equipment { return s.Equipment }
func (s Switch) device()             {}

func (s Switch) PortGroups() []PortGroup {
	return []PortGroup{
		{Role: PortRoleLAN, Ports: s.LANPorts},
		{Role: PortRoleUplink, Ports: s.UplinkPorts},
	}
}

// IsManaged reports whether the switch has a management plane
func (s Switch) IsManaged() bool {
	return s.Management == Managed
}

// Router routes between the fabric and other networks
type Router struct {
	Equipment `yaml:",inline"`
	Role      RouterRole `json:"role" yaml:"role"`
	LANPorts  []Port     `json:"lan_ports" yaml:"lan_ports"`
	WANPorts  []Port     `json:"wan_ports" yaml:"wan_ports"`
}

func (r Router) Kind() DeviceKind    { return KindRouter }
func (r Router) Identity() Equipment { return r.Equipment }
func (r Router) device()             {}

func (r Router) PortGroups() []PortGroup {
	return []PortGroup{
		{Role: PortRoleLAN, Ports: r.LANPorts},
		{Role: PortRoleWAN, Ports: r.WANPorts},
	}
}

// Firewall filters traffic at the fabric boundary
type Firewall struct {
	Equipment `yaml:",inline"`
	LANPorts  []Port `json:"lan_ports" yaml:"lan_ports"`
	WANPorts  []Port `json:"wan_ports" yaml:"wan_ports"`
}

func (f Firewall) Kind() DeviceKind    { return KindFirewall }
func (f Firewall) Identity() Equipment { return f.Equipment }
func (f Firewall) device()             {}

func (f Firewall) PortGroups() []PortGroup {
	return []PortGroup{
		{Role: PortRoleLAN, Ports: f.LANPorts},
		{Role: PortRoleWAN, Ports: f.WANPorts},
	}
}

// Port collections are never nil once a device is decoded or stored in a
// network, so every codec reads back the same value it wrote.

func (s *Switch) normalize() {
	s.LANPorts = nonNil(s.LANPorts)
	s.UplinkPorts = nonNil(s.UplinkPorts)
}

func (r *Router) normalize() {
	r.LANPorts = nonNil(r.LANPorts)
	r.WANPorts = nonNil(r.WANPorts)
}

func (f *Firewall) normalize() {
	f.LANPorts = nonNil(f.LANPorts)
	f.WANPorts = nonNil(f.WANPorts)
}

func nonNil(ports []Port) []Port {
	if ports == nil {
		return []Port{}
	}
	return ports
}

func normalizeAll[D any, P interface {
	*D
	normalize()
}](devices []D) {
	for i := range devices {
		P(&devices[i]).normalize()
	}
}

func (s *Switch) UnmarshalJSON(data []byte) error {
	type plain Switch
	if err := json.Unmarshal(data, (*plain)(s)); err != nil {
		return err
	}
	s.normalize()
	return nil
}

func (s *Switch) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain Switch
	if err := unmarshal((*plain)(s)); err != nil {
		return err
	}
	s.normalize()
	return nil
}

func (r *Router) UnmarshalJSON(data []byte) error {
	type plain Router
	if err := json.Unmarshal(data, (*plain)(r)); err != nil {
		return err
	}
	r.normalize()
	return nil
}

func (r *Router) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain Router
	if err := unmarshal((*plain)(r)); err != nil {
		return err
	}
	r.normalize()
	return nil
}

func (f *Firewall) UnmarshalJSON(data []byte) error {
	type plain Firewall
	if err := json.Unmarshal(data, (*plain)(f)); err != nil {
		return err
	}
	f.normalize()
	return nil
}

func (f *Firewall) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain Firewall
	if err := unmarshal((*plain)(f)); err != nil {
		return err
	}
	f.normalize()
	return nil
}

// PortCount returns the number of ports across all collections of a device
func PortCount(d Device) int {
	n := 0
	for _, g := range d.PortGroups() {
		n += len(g.Ports)
	}
	return n
}

// FindPort looks up a port on a device by key
func FindPort(d Device, key string) (Port, PortRole, bool) {
	for _, g := range d.PortGroups() {
		for _, p := range g.Ports {
			if p.Key() == key {
				return p, g.Role, true
			}
		}
	}
	return Port{}, "", false
}
