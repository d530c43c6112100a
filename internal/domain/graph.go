package domain

import (
	"encoding/json"
	"sort"
)

// GraphNode is a device in the connectivity graph
type GraphNode struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Kind       DeviceKind       `json:"kind"`
	Status     DeviceStatus     `json:"status"`
	SwitchRole SwitchRole       `json:"switch_role,omitempty"`
	RouterRole RouterRole       `json:"router_role,omitempty"`
	Layer      LinkLayer        `json:"layer,omitempty"`
	Degree     int              `json:"degree"`
	RoleDegree map[PortRole]int `json:"role_degree"` // Links attached per port role
}

// IsSwitch reports whether the node is a switch
func (n *GraphNode) IsSwitch() bool { return n.Kind == KindSwitch }

// IsRouter reports whether the node is a router
func (n *GraphNode) IsRouter() bool { return n.Kind == KindRouter }

// GraphEdge is a link between two devices. From/To follow the link's
// Left/Right order; the graph itself is undirected.
type GraphEdge struct {
	From     string       `json:"from"`
	To       string       `json:"to"`
	FromRole PortRole     `json:"from_role"`
	ToRole   PortRole     `json:"to_role"`
	Link     Link         `json:"link"`
	Up       bool         `json:"up"`
	Status   DeviceStatus `json:"status"`
}

// Other returns the endpoint opposite to id
func (e GraphEdge) Other(id string) string {
	if e.From == id {
		return e.To
	}
	return e.From
}

// RoleAt returns the port role the edge occupies on device id
func (e GraphEdge) RoleAt(id string) PortRole {
	if e.From == id {
		return e.FromRole
	}
	return e.ToRole
}

// Global reports whether both ends sit on outward-facing ports
func (e GraphEdge) Global() bool {
	return e.FromRole.Outward() && e.ToRole.Outward()
}

// Graph is an undirected multigraph of devices and links, derived from an
// Inventory. It is never mutated after BuildGraph returns.
type Graph struct {
	nodes map[string]*GraphNode
	order []string
	edges []GraphEdge
	adj   map[string][]int
}

// GraphStats summarizes a graph
type GraphStats struct {
	Devices       int                `json:"devices"`
	Links         int                `json:"links"`
	LinksUp       int                `json:"links_up"`
	LinksDegraded int                `json:"links_degraded"`
	LinksDown     int                `json:"links_down"`
	ByKind        map[DeviceKind]int `json:"by_kind"`
}

type portOwner struct {
	deviceID string
	role     PortRole
}

// BuildGraph assembles the connectivity graph of an inventory.
// Anomalous devices and links are skipped and reported through a *BuildError;
// the returned graph is non-nil in every case.
func BuildGraph(inv Inventory) (*Graph, error) {
	g := &Graph{
		nodes: make(map[string]*GraphNode),
		adj:   make(map[string][]int),
	}
	var anomalies []error

	owners := make(map[string]portOwner)
	for _, d := range inv.Devices() {
		eq := d.Identity()
		id := eq.ID()
		if id == "" {
			anomalies = append(anomalies, &DeviceError{Kind: d.Kind(), Err: ErrMissingIdentity})
			continue
		}
		if _, exists := g.nodes[id]; exists {
			anomalies = append(anomalies, &DeviceError{DeviceID: id, Kind: d.Kind(), Err: ErrDuplicateDevice})
			continue
		}

		g.nodes[id] = newGraphNode(d)
		g.order = append(g.order, id)

		for _, group := range d.PortGroups() {
			for _, p := range group.Ports {
				key := p.Key()
				if key == "" {
					continue
				}
				if prev, taken := owners[key]; taken && prev.deviceID != id {
					anomalies = append(anomalies, &DeviceError{DeviceID: id, Kind: d.Kind(), PortKey: key, Err: ErrAmbiguousPort})
					continue
				}
				owners[key] = portOwner{deviceID: id, role: group.Role}
			}
		}
	}
	sort.Strings(g.order)

	cabled := make(map[string]bool)
	for _, link := range inv.Links {
		lk, rk := link.Left.Key(), link.Right.Key()
		left, lok := owners[lk]
		right, rok := owners[rk]

		var reason error
		switch {
		case !lok || !rok:
			reason = ErrDanglingPortReference
		case lk == rk:
			reason = ErrDuplicateLinkEndpoint
		case left.deviceID == right.deviceID:
			reason = ErrSelfLoop
		case cabled[lk] || cabled[rk]:
			reason = ErrDuplicateLinkEndpoint
		}
		if reason != nil {
			anomalies = append(anomalies, &LinkError{Link: link, Err: reason})
			continue
		}
		cabled[lk], cabled[rk] = true, true

		idx := len(g.edges)
		g.edges = append(g.edges, GraphEdge{
			From:     left.deviceID,
			To:       right.deviceID,
			FromRole: left.role,
			ToRole:   right.role,
			Link:     link,
			Up:       link.IsUp(),
			Status:   link.Status(),
		})
		g.adj[left.deviceID] = append(g.adj[left.deviceID], idx)
		g.adj[right.deviceID] = append(g.adj[right.deviceID], idx)

		from, to := g.nodes[left.deviceID], g.nodes[right.deviceID]
		from.Degree++
		from.RoleDegree[left.role]++
		to.Degree++
		to.RoleDegree[right.role]++
	}

	if len(anomalies) > 0 {
		return g, &BuildError{Anomalies: anomalies}
	}
	return g, nil
}

func newGraphNode(d Device) *GraphNode {
	eq := d.Identity()
	node := &GraphNode{
		ID:         eq.ID(),
		Name:       eq.Name,
		Kind:       d.Kind(),
		Status:     eq.Status,
		RoleDegree: make(map[PortRole]int),
	}
	switch v := d.(type) {
	case Switch:
		node.SwitchRole = v.Role
		node.Layer = v.Layer
	case Router:
		node.RouterRole = v.Role
	}
	return node
}

// Node returns a node by device ID, or nil if not found
func (g *Graph) Node(id string) *GraphNode {
	return g.nodes[id]
}

// NodeIDs returns all device IDs in sorted order
func (g *Graph) NodeIDs() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Edges returns all edges in link declaration order
func (g *Graph) Edges() []GraphEdge {
	out := make([]GraphEdge, len(g.edges))
	copy(out, g.edges)
	return out
}

// EdgesOf returns the edges attached to a device, parallel links included
func (g *Graph) EdgesOf(id string) []GraphEdge {
	idx := g.adj[id]
	out := make([]GraphEdge, 0, len(idx))
	for _, i := range idx {
		out = append(out, g.edges[i])
	}
	return out
}

// Neighbors returns the distinct devices adjacent to id, sorted
func (g *Graph) Neighbors(id string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, i := range g.adj[id] {
		other := g.edges[i].Other(id)
		if !seen[other] {
			seen[other] = true
			out = append(out, other)
		}
	}
	sort.Strings(out)
	return out
}

// Len returns the number of nodes
func (g *Graph) Len() int {
	return len(g.order)
}

// Stats summarizes node and link health
func (g *Graph) Stats() GraphStats {
	stats := GraphStats{
		Devices: len(g.order),
		Links:   len(g.edges),
		ByKind:  make(map[DeviceKind]int),
	}
	for _, n := range g.nodes {
		stats.ByKind[n.Kind]++
	}
	for _, e := range g.edges {
		switch e.Status {
		case StatusUp:
			stats.LinksUp++
		case StatusDegraded:
			stats.LinksDegraded++
		default:
			stats.LinksDown++
		}
	}
	return stats
}

// MarshalJSON renders the graph as node and edge lists
func (g *Graph) MarshalJSON() ([]byte, error) {
	view := struct {
		Nodes []*GraphNode `json:"nodes"`
		Edges []GraphEdge  `json:"edges"`
	}{
		Nodes: make([]*GraphNode, 0, len(g.order)),
		Edges: g.edges,
	}
	for _, id := range g.order {
		view.Nodes = append(view.Nodes, g.nodes[id])
	}
	if view.Edges == nil {
		view.Edges = []GraphEdge{}
	}
	return json.Marshal(view)
}

// Components partitions the graph into connected components using only the
// edges accepted by keep (all edges when keep is nil). Members and
// components are sorted.
func (g *Graph) Components(keep func(GraphEdge) bool) [][]string {
	seen := make(map[string]bool)
	var components [][]string
	for _, id := range g.order {
		if seen[id] {
			continue
		}
		seen[id] = true
		members := []string{id}
		queue := []string{id}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			for _, i := range g.adj[current] {
				e := g.edges[i]
				if keep != nil && !keep(e) {
					continue
				}
				next := e.Other(current)
				if !seen[next] {
					seen[next] = true
					members = append(members, next)
					queue = append(queue, next)
				}
			}
		}
		sort.Strings(members)
		components = append(components, members)
	}
	return components
}
