package domain

import "fmt"

// fabricBuilder assembles test inventories. Every cable gets two fresh
// ports, one on each device, in the requested port collection.
type fabricBuilder struct {
	switches  []Switch
	routers   []Router
	firewalls []Firewall
	links     []Link
	ports     map[string]int
	status    DeviceStatus
}

func newBuilder() *fabricBuilder {
	return &fabricBuilder{ports: make(map[string]int), status: StatusUp}
}

func equipment(id string) Equipment {
	return Equipment{SerialNumber: id, Name: id, Model: "test", Status: StatusUp}
}

func (b *fabricBuilder) sw(role SwitchRole, ids ...string) *fabricBuilder {
	for _, id := range ids {
		b.switches = append(b.switches, Switch{
			Equipment:   equipment(id),
			Layer:       Layer3,
			Role:        role,
			Management:  Managed,
			LANPorts:    []Port{},
			UplinkPorts: []Port{},
		})
	}
	return b
}

func (b *fabricBuilder) router(role RouterRole, ids ...string) *fabricBuilder {
	for _, id := range ids {
		b.routers = append(b.routers, Router{
			Equipment: equipment(id),
			Role:      role,
			LANPorts:  []Port{},
			WANPorts:  []Port{},
		})
	}
	return b
}

func (b *fabricBuilder) firewall(ids ...string) *fabricBuilder {
	for _, id := range ids {
		b.firewalls = append(b.firewalls, Firewall{
			Equipment: equipment(id),
			LANPorts:  []Port{},
			WANPorts:  []Port{},
		})
	}
	return b
}

// withStatus sets the status of ports created from now on
func (b *fabricBuilder) withStatus(s DeviceStatus) *fabricBuilder {
	b.status = s
	return b
}

func (b *fabricBuilder) newPort(id string, role PortRole) Port {
	b.ports[id]++
	p := Port{
		SerialNumber: fmt.Sprintf("%s-p%d", id, b.ports[id]),
		Name:         fmt.Sprintf("eth%d", b.ports[id]),
		Number:       int64(b.ports[id]),
		Status:       b.status,
		SpeedGb:      100,
	}

	for i := range b.switches {
		if b.switches[i].SerialNumber != id {
			continue
		}
		if role == PortRoleUplink {
			b.switches[i].UplinkPorts = append(b.switches[i].UplinkPorts, p)
		} else {
			b.switches[i].LANPorts = append(b.switches[i].LANPorts, p)
		}
		return p
	}
	for i := range b.routers {
		if b.routers[i].SerialNumber != id {
			continue
		}
		if role == PortRoleLAN {
			b.routers[i].LANPorts = append(b.routers[i].LANPorts, p)
		} else {
			b.routers[i].WANPorts = append(b.routers[i].WANPorts, p)
		}
		return p
	}
	for i := range b.firewalls {
		if b.firewalls[i].SerialNumber != id {
			continue
		}
		if role == PortRoleLAN {
			b.firewalls[i].LANPorts = append(b.firewalls[i].LANPorts, p)
		} else {
			b.firewalls[i].WANPorts = append(b.firewalls[i].WANPorts, p)
		}
		return p
	}
	panic("unknown device " + id)
}

func (b *fabricBuilder) cable(a string, aRole PortRole, c string, cRole PortRole) *fabricBuilder {
	b.links = append(b.links, NewLink(b.newPort(a, aRole), b.newPort(c, cRole)))
	return b
}

// uplink cables a lower-tier uplink port to an upper-tier lan port
func (b *fabricBuilder) uplink(lower, upper string) *fabricBuilder {
	return b.cable(lower, PortRoleUplink, upper, PortRoleLAN)
}

// local cables two lan ports
func (b *fabricBuilder) local(a, c string) *fabricBuilder {
	return b.cable(a, PortRoleLAN, c, PortRoleLAN)
}

// global cables two outward ports (uplink on switches, wan elsewhere)
func (b *fabricBuilder) global(a, c string) *fabricBuilder {
	return b.cable(a, b.outward(a), c, b.outward(c))
}

func (b *fabricBuilder) outward(id string) PortRole {
	for _, s := range b.switches {
		if s.SerialNumber == id {
			return PortRoleUplink
		}
	}
	return PortRoleWAN
}

func (b *fabricBuilder) inventory() Inventory {
	return Inventory{
		Switches:  b.switches,
		Routers:   b.routers,
		Firewalls: b.firewalls,
		Links:     b.links,
	}
}

func (b *fabricBuilder) network(name string) *DataCenterNetwork {
	n := NewDataCenterNetwork(name, NetworkData, b.switches, b.routers, b.firewalls)
	n.AddLink(b.links...)
	return n
}

func (b *fabricBuilder) classify() NetworkTopology {
	g, _ := BuildGraph(b.inventory())
	return Classify(g)
}

func ids(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return out
}

// fatTree builds a strict three-tier fabric: every access switch uplinks to
// both distribution switches of its pod and every distribution switch to
// both cores.
func fatTree(pods int) *fabricBuilder {
	b := newBuilder().sw(SwitchCore, "core0", "core1")
	for p := 0; p < pods; p++ {
		dist := ids(fmt.Sprintf("pod%d-dist", p), 2)
		access := ids(fmt.Sprintf("pod%d-acc", p), 2)
		b.sw(SwitchDistribution, dist...).sw(SwitchAccess, access...)
		for _, a := range access {
			for _, d := range dist {
				b.uplink(a, d)
			}
		}
		for _, d := range dist {
			b.uplink(d, "core0").uplink(d, "core1")
		}
	}
	return b
}

// routerGroups builds groups of complete router cliques with no global links
func routerGroups(groups, size int) (*fabricBuilder, [][]string) {
	b := newBuilder()
	members := make([][]string, groups)
	for g := range members {
		members[g] = ids(fmt.Sprintf("g%d-r", g), size)
		b.router(RouterCore, members[g]...)
		for i := 0; i < size; i++ {
			for j := i + 1; j < size; j++ {
				b.local(members[g][i], members[g][j])
			}
		}
	}
	return b, members
}
