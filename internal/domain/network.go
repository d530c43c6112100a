package domain

import (
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
)

// Inventory is an immutable snapshot of a network's devices and links.
// Values returned by DataCenterNetwork.Snapshot must not be modified.
type Inventory struct {
	Switches  []Switch
	Routers   []Router
	Firewalls []Firewall
	Links     []Link
}

// Devices returns every device: switches, then routers, then firewalls
func (inv Inventory) Devices() []Device {
	out := make([]Device, 0, len(inv.Switches)+len(inv.Routers)+len(inv.Firewalls))
	for _, s := range inv.Switches {
		out = append(out, s)
	}
	for _, r := range inv.Routers {
		out = append(out, r)
	}
	for _, f := range inv.Firewalls {
		out = append(out, f)
	}
	return out
}

// IsEmpty reports whether the inventory holds no devices
func (inv Inventory) IsEmpty() bool {
	return len(inv.Switches) == 0 && len(inv.Routers) == 0 && len(inv.Firewalls) == 0
}

// clone copies the top-level collections so an edit never touches a
// published snapshot
func (inv Inventory) clone() Inventory {
	return Inventory{
		Switches:  append(make([]Switch, 0, len(inv.Switches)), inv.Switches...),
		Routers:   append(make([]Router, 0, len(inv.Routers)), inv.Routers...),
		Firewalls: append(make([]Firewall, 0, len(inv.Firewalls)), inv.Firewalls...),
		Links:     append(make([]Link, 0, len(inv.Links)), inv.Links...),
	}
}

// Classification is the result of classifying one snapshot
type Classification struct {
	Network   string          `json:"network"`
	Topology  NetworkTopology `json:"topology"`
	Anomalies []error         `json:"-"`
	Stats     GraphStats      `json:"stats"`
}

// AnomalyMessages returns the anomalies as strings
func (c Classification) AnomalyMessages() []string {
	out := make([]string, 0, len(c.Anomalies))
	for _, a := range c.Anomalies {
		out = append(out, a.Error())
	}
	return out
}

// MarshalJSON renders anomalies as messages
func (c Classification) MarshalJSON() ([]byte, error) {
	type plain Classification
	return json.Marshal(struct {
		plain
		Anomalies []string `json:"anomalies"`
	}{plain: plain(c), Anomalies: c.AnomalyMessages()})
}

// DataCenterNetwork is one network plane of a datacenter: its devices, the
// links between them and the topology those links form.
//
// Readers are lock-free and always see a complete snapshot. Writers are
// serialized and publish a fresh Inventory on every edit.
type DataCenterNetwork struct {
	mu  sync.Mutex
	id  atomic.Pointer[identity]
	inv atomic.Pointer[Inventory]
}

type identity struct {
	name        string
	networkType NetworkType
}

// NewDataCenterNetwork creates a network with no links.
// Nil device collections are stored as empty ones.
func NewDataCenterNetwork(name string, networkType NetworkType, switches []Switch, routers []Router, firewalls []Firewall) *DataCenterNetwork {
	n := &DataCenterNetwork{}
	n.id.Store(&identity{name: name, networkType: networkType})
	n.inv.Store(canonical(Inventory{
		Switches:  switches,
		Routers:   routers,
		Firewalls: firewalls,
	}))
	return n
}

// canonical returns a private copy with nil collections, including device
// port collections, replaced by empty ones
func canonical(inv Inventory) *Inventory {
	c := inv.clone()
	normalizeAll(c.Switches)
	normalizeAll(c.Routers)
	normalizeAll(c.Firewalls)
	return &c
}

func (n *DataCenterNetwork) ident() identity {
	if id := n.id.Load(); id != nil {
		return *id
	}
	return identity{}
}

// Name returns the network name
func (n *DataCenterNetwork) Name() string { return n.ident().name }

// Type returns the network plane
func (n *DataCenterNetwork) Type() NetworkType { return n.ident().networkType }

// Snapshot returns the current inventory
func (n *DataCenterNetwork) Snapshot() Inventory {
	if inv := n.inv.Load(); inv != nil {
		return *inv
	}
	return *canonical(Inventory{})
}

// update applies edit to a private copy of the current inventory and
// publishes the result
func (n *DataCenterNetwork) update(edit func(inv *Inventory) bool) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	next := n.Snapshot().clone()
	if !edit(&next) {
		return false
	}
	n.inv.Store(&next)
	return true
}

// AddSwitch adds switches to the network
func (n *DataCenterNetwork) AddSwitch(switches ...Switch) {
	n.update(func(inv *Inventory) bool {
		inv.Switches = append(inv.Switches, switches...)
		normalizeAll(inv.Switches[len(inv.Switches)-len(switches):])
		return true
	})
}

// AddRouter adds routers to the network
func (n *DataCenterNetwork) AddRouter(routers ...Router) {
	n.update(func(inv *Inventory) bool {
		inv.Routers = append(inv.Routers, routers...)
		normalizeAll(inv.Routers[len(inv.Routers)-len(routers):])
		return true
	})
}

// AddFirewall adds firewalls to the network
func (n *DataCenterNetwork) AddFirewall(firewalls ...Firewall) {
	n.update(func(inv *Inventory) bool {
		inv.Firewalls = append(inv.Firewalls, firewalls...)
		normalizeAll(inv.Firewalls[len(inv.Firewalls)-len(firewalls):])
		return true
	})
}

// AddLink declares links between ports of the network's devices.
// Links are not validated here; BuildGraph reports anomalous ones.
func (n *DataCenterNetwork) AddLink(links ...Link) {
	n.update(func(inv *Inventory) bool {
		inv.Links = append(inv.Links, links...)
		return true
	})
}

// RemoveDevice removes the device with the given ID and every link attached
// to one of its ports. It reports whether a device was removed.
func (n *DataCenterNetwork) RemoveDevice(id string) bool {
	return n.update(func(inv *Inventory) bool {
		var removed Device
		inv.Switches, removed = removeByID(inv.Switches, id, removed)
		inv.Routers, removed = removeByID(inv.Routers, id, removed)
		inv.Firewalls, removed = removeByID(inv.Firewalls, id, removed)
		if removed == nil {
			return false
		}

		keys := make(map[string]bool)
		for _, g := range removed.PortGroups() {
			for _, p := range g.Ports {
				if k := p.Key(); k != "" {
					keys[k] = true
				}
			}
		}
		links := inv.Links[:0]
		for _, l := range inv.Links {
			if !keys[l.Left.Key()] && !keys[l.Right.Key()] {
				links = append(links, l)
			}
		}
		inv.Links = links
		return true
	})
}

func removeByID[D Device](devices []D, id string, removed Device) ([]D, Device) {
	if removed != nil {
		return devices, removed
	}
	for i, d := range devices {
		if d.Identity().ID() == id {
			return append(devices[:i], devices[i+1:]...), d
		}
	}
	return devices, nil
}

// RemoveLink removes the first link with the given key (see Link.Key).
// It reports whether a link was removed.
func (n *DataCenterNetwork) RemoveLink(key string) bool {
	return n.update(func(inv *Inventory) bool {
		for i, l := range inv.Links {
			if l.Key() == key {
				inv.Links = append(inv.Links[:i], inv.Links[i+1:]...)
				return true
			}
		}
		return false
	})
}

// Replace swaps the whole inventory in one step
func (n *DataCenterNetwork) Replace(inv Inventory) {
	next := canonical(inv)
	n.mu.Lock()
	n.inv.Store(next)
	n.mu.Unlock()
}

// Graph builds the connectivity graph of the current snapshot
func (n *DataCenterNetwork) Graph() (*Graph, error) {
	return BuildGraph(n.Snapshot())
}

// Topology classifies the current snapshot. The result is recomputed on
// every call; anomalous links are left out of the classification.
func (n *DataCenterNetwork) Topology() NetworkTopology {
	return topologyOf(n.Snapshot())
}

func topologyOf(inv Inventory) NetworkTopology {
	g, _ := BuildGraph(inv)
	return Classify(g)
}

// Classification classifies the current snapshot and reports the anomalies
// found while building its graph
func (n *DataCenterNetwork) Classification() Classification {
	g, err := n.Graph()
	c := Classification{
		Network:  n.Name(),
		Topology: Classify(g),
		Stats:    g.Stats(),
	}
	var be *BuildError
	if errors.As(err, &be) {
		c.Anomalies = be.Anomalies
	}
	return c
}

// NetworkRecord is the serialized form of a DataCenterNetwork. Topology is
// informational: it is the classification at encode time and is recomputed
// after decoding.
type NetworkRecord struct {
	Name      string          `json:"name" yaml:"name"`
	Type      NetworkType     `json:"type" yaml:"type"`
	Topology  NetworkTopology `json:"topology" yaml:"topology"`
	Switches  []Switch        `json:"switches" yaml:"switches"`
	Routers   []Router        `json:"routers" yaml:"routers"`
	Firewalls []Firewall      `json:"firewalls" yaml:"firewalls"`
	Links     []Link          `json:"links" yaml:"links"`
}

// Record captures the current snapshot as a NetworkRecord. Topology is
// classified from the same snapshot as the devices and links.
func (n *DataCenterNetwork) Record() NetworkRecord {
	id := n.ident()
	inv := n.Snapshot()
	return NetworkRecord{
		Name:      id.name,
		Type:      id.networkType,
		Topology:  topologyOf(inv),
		Switches:  inv.Switches,
		Routers:   inv.Routers,
		Firewalls: inv.Firewalls,
		Links:     inv.Links,
	}
}

// FromRecord rebuilds a network from its serialized form
func FromRecord(r NetworkRecord) *DataCenterNetwork {
	n := &DataCenterNetwork{}
	n.load(r)
	return n
}

// load swaps identity and inventory under the writer lock
func (n *DataCenterNetwork) load(r NetworkRecord) {
	next := canonical(Inventory{
		Switches:  r.Switches,
		Routers:   r.Routers,
		Firewalls: r.Firewalls,
		Links:     r.Links,
	})
	n.mu.Lock()
	n.id.Store(&identity{name: r.Name, networkType: r.Type})
	n.inv.Store(next)
	n.mu.Unlock()
}

func (n *DataCenterNetwork) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Record())
}

func (n *DataCenterNetwork) UnmarshalJSON(data []byte) error {
	var r NetworkRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	n.load(r)
	return nil
}

func (n *DataCenterNetwork) MarshalYAML() (interface{}, error) {
	return n.Record(), nil
}

func (n *DataCenterNetwork) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var r NetworkRecord
	if err := unmarshal(&r); err != nil {
		return err
	}
	n.load(r)
	return nil
}
