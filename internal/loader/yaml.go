package loader

import (
	"fmt"
	"os"

	"horao/internal/domain"
	"horao/internal/validation"

	"gopkg.in/yaml.v3"
)

// InventoryYAML represents the inventory file structure
type InventoryYAML struct {
	Version  string        `yaml:"version"`
	Networks []NetworkYAML `yaml:"networks" validate:"dive"`
}

// NetworkYAML represents one network plane
type NetworkYAML struct {
	Name      string         `yaml:"name" validate:"required"`
	Type      string         `yaml:"type" validate:"required,oneof=management control data"`
	Switches  []SwitchYAML   `yaml:"switches,omitempty" validate:"dive"`
	Routers   []RouterYAML   `yaml:"routers,omitempty" validate:"dive"`
	Firewalls []FirewallYAML `yaml:"firewalls,omitempty" validate:"dive"`
	Links     []LinkYAML     `yaml:"links,omitempty" validate:"dive"`
}

// EquipmentYAML holds the fields shared by every device
type EquipmentYAML struct {
	SerialNumber string `yaml:"serial_number" validate:"required"`
	Name         string `yaml:"name,omitempty"`
	Model        string `yaml:"model,omitempty"`
	Number       int64  `yaml:"number,omitempty"`
	Status       string `yaml:"status,omitempty" validate:"omitempty,oneof=up down degraded"`
}

// PortYAML represents a physical port
type PortYAML struct {
	SerialNumber string `yaml:"serial_number,omitempty" validate:"required_without=MAC"`
	Name         string `yaml:"name,omitempty"`
	Model        string `yaml:"model,omitempty"`
	Number       int64  `yaml:"number,omitempty"`
	MAC          string `yaml:"mac,omitempty" validate:"omitempty,mac"`
	Status       string `yaml:"status,omitempty" validate:"omitempty,oneof=up down degraded"`
	SpeedGb      int64  `yaml:"speed_gb,omitempty" validate:"min=0"`
}

// SwitchYAML represents a switch
type SwitchYAML struct {
	EquipmentYAML `yaml:",inline"`
	Layer         string     `yaml:"layer,omitempty" validate:"omitempty,oneof=layer2 layer3"`
	Role          string     `yaml:"role,omitempty" validate:"omitempty,oneof=access distribution core"`
	Management    string     `yaml:"management,omitempty" validate:"omitempty,oneof=managed unmanaged"`
	LANPorts      []PortYAML `yaml:"lan_ports,omitempty" validate:"dive"`
	UplinkPorts   []PortYAML `yaml:"uplink_ports,omitempty" validate:"dive"`
}

// RouterYAML represents a router
type RouterYAML struct {
	EquipmentYAML `yaml:",inline"`
	Role          string     `yaml:"role,omitempty" validate:"omitempty,oneof=core edge"`
	LANPorts      []PortYAML `yaml:"lan_ports,omitempty" validate:"dive"`
	WANPorts      []PortYAML `yaml:"wan_ports,omitempty" validate:"dive"`
}

// FirewallYAML represents a firewall
type FirewallYAML struct {
	EquipmentYAML `yaml:",inline"`
	LANPorts      []PortYAML `yaml:"lan_ports,omitempty" validate:"dive"`
	WANPorts      []PortYAML `yaml:"wan_ports,omitempty" validate:"dive"`
}

// LinkYAML references two ports by serial number (or MAC)
type LinkYAML struct {
	Left  string `yaml:"left" validate:"required"`
	Right string `yaml:"right" validate:"required"`
}

// LoadYAML loads networks from an inventory file
func LoadYAML(path string) ([]*domain.DataCenterNetwork, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return ParseYAML(data)
}

// ParseYAML parses networks from inventory YAML bytes
func ParseYAML(data []byte) ([]*domain.DataCenterNetwork, error) {
	var yamlData InventoryYAML
	if err := yaml.Unmarshal(data, &yamlData); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validation.Struct(&yamlData); err != nil {
		return nil, fmt.Errorf("invalid inventory: %w", err)
	}

	seen := make(map[string]bool)
	networks := make([]*domain.DataCenterNetwork, 0, len(yamlData.Networks))
	for _, n := range yamlData.Networks {
		if seen[n.Name] {
			return nil, fmt.Errorf("invalid inventory: duplicate network %q", n.Name)
		}
		seen[n.Name] = true
		networks = append(networks, convertNetwork(n))
	}

	return networks, nil
}

func convertNetwork(y NetworkYAML) *domain.DataCenterNetwork {
	ports := make(map[string]domain.Port)
	convertPorts := func(in []PortYAML) []domain.Port {
		out := make([]domain.Port, 0, len(in))
		for _, p := range in {
			port := convertPort(p)
			ports[port.Key()] = port
			out = append(out, port)
		}
		return out
	}

	switches := make([]domain.Switch, 0, len(y.Switches))
	for _, s := range y.Switches {
		sw := domain.Switch{
			Equipment:   convertEquipment(s.EquipmentYAML),
			Layer:       domain.LinkLayer(s.Layer),
			Role:        domain.SwitchRole(s.Role),
			Management:  domain.SwitchManagement(s.Management),
			LANPorts:    convertPorts(s.LANPorts),
			UplinkPorts: convertPorts(s.UplinkPorts),
		}
		if sw.Layer == "" {
			sw.Layer = domain.Layer2
		}
		if sw.Management == "" {
			sw.Management = domain.Managed
		}
		switches = append(switches, sw)
	}

	routers := make([]domain.Router, 0, len(y.Routers))
	for _, r := range y.Routers {
		routers = append(routers, domain.Router{
			Equipment: convertEquipment(r.EquipmentYAML),
			Role:      domain.RouterRole(r.Role),
			LANPorts:  convertPorts(r.LANPorts),
			WANPorts:  convertPorts(r.WANPorts),
		})
	}

	firewalls := make([]domain.Firewall, 0, len(y.Firewalls))
	for _, f := range y.Firewalls {
		firewalls = append(firewalls, domain.Firewall{
			Equipment: convertEquipment(f.EquipmentYAML),
			LANPorts:  convertPorts(f.LANPorts),
			WANPorts:  convertPorts(f.WANPorts),
		})
	}

	network := domain.NewDataCenterNetwork(y.Name, domain.NetworkType(y.Type), switches, routers, firewalls)

	// Unknown references become bare ports; the graph builder reports them
	// as dangling instead of the loader rejecting the whole file.
	links := make([]domain.Link, 0, len(y.Links))
	for _, l := range y.Links {
		links = append(links, domain.NewLink(resolvePort(ports, l.Left), resolvePort(ports, l.Right)))
	}
	network.AddLink(links...)

	return network
}

func resolvePort(ports map[string]domain.Port, ref string) domain.Port {
	if p, ok := ports[ref]; ok {
		return p
	}
	return domain.Port{SerialNumber: ref, Status: domain.StatusDown}
}

func convertEquipment(y EquipmentYAML) domain.Equipment {
	return domain.Equipment{
		SerialNumber: y.SerialNumber,
		Name:         y.Name,
		Model:        y.Model,
		Number:       y.Number,
		Status:       statusOrUp(y.Status),
	}
}

func convertPort(y PortYAML) domain.Port {
	return domain.Port{
		SerialNumber: y.SerialNumber,
		Name:         y.Name,
		Model:        y.Model,
		Number:       y.Number,
		MAC:          y.MAC,
		Status:       statusOrUp(y.Status),
		SpeedGb:      y.SpeedGb,
	}
}

// statusOrUp defaults unset health to up; health is owned by an external
// collaborator and inventories usually omit it
func statusOrUp(s string) domain.DeviceStatus {
	if s == "" {
		return domain.StatusUp
	}
	return domain.DeviceStatus(s)
}

// ExportYAML exports networks to inventory YAML format
func ExportYAML(networks []*domain.DataCenterNetwork) ([]byte, error) {
	yamlData := &InventoryYAML{
		Version:  "1",
		Networks: make([]NetworkYAML, 0, len(networks)),
	}

	for _, n := range networks {
		inv := n.Snapshot()
		ny := NetworkYAML{
			Name: n.Name(),
			Type: string(n.Type()),
		}

		for _, s := range inv.Switches {
			ny.Switches = append(ny.Switches, SwitchYAML{
				EquipmentYAML: exportEquipment(s.Equipment),
				Layer:         string(s.Layer),
				Role:          string(s.Role),
				Management:    string(s.Management),
				LANPorts:      exportPorts(s.LANPorts),
				UplinkPorts:   exportPorts(s.UplinkPorts),
			})
		}
		for _, r := range inv.Routers {
			ny.Routers = append(ny.Routers, RouterYAML{
				EquipmentYAML: exportEquipment(r.Equipment),
				Role:          string(r.Role),
				LANPorts:      exportPorts(r.LANPorts),
				WANPorts:      exportPorts(r.WANPorts),
			})
		}
		for _, f := range inv.Firewalls {
			ny.Firewalls = append(ny.Firewalls, FirewallYAML{
				EquipmentYAML: exportEquipment(f.Equipment),
				LANPorts:      exportPorts(f.LANPorts),
				WANPorts:      exportPorts(f.WANPorts),
			})
		}
		for _, l := range inv.Links {
			ny.Links = append(ny.Links, LinkYAML{Left: l.Left.Key(), Right: l.Right.Key()})
		}

		yamlData.Networks = append(yamlData.Networks, ny)
	}

	return yaml.Marshal(yamlData)
}

func exportEquipment(e domain.Equipment) EquipmentYAML {
	return EquipmentYAML{
		SerialNumber: e.SerialNumber,
		Name:         e.Name,
		Model:        e.Model,
		Number:       e.Number,
		Status:       string(e.Status),
	}
}

func exportPorts(ports []domain.Port) []PortYAML {
	out := make([]PortYAML, 0, len(ports))
	for _, p := range ports {
		out = append(out, PortYAML{
			SerialNumber: p.SerialNumber,
			Name:         p.Name,
			Model:        p.Model,
			Number:       p.Number,
			MAC:          p.MAC,
			Status:       string(p.Status),
			SpeedGb:      p.SpeedGb,
		})
	}
	return out
}
