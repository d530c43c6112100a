package domain

import "sort"

// topologyMatcher tests the necessary conditions of one topology family
type topologyMatcher func(f *fabric) (NetworkTopology, bool)

// matchers run in priority order: the more specific pattern wins a tie.
var matchers = []topologyMatcher{
	matchFatTree,
	matchVL2,
	matchDragonFly,
	matchRecursive,
	matchTree,
	matchFlexible,
}

// Classify maps a connectivity graph to a topology label.
// It never fails: a graph that matches no pattern is TopologyUndefined.
func Classify(g *Graph) NetworkTopology {
	if g == nil {
		return TopologyUndefined
	}

	f := newFabric(g)
	if len(f.ids) < 2 || !f.connected() {
		return TopologyUndefined
	}

	for _, match := range matchers {
		if t, ok := match(f); ok {
			return t
		}
	}
	return TopologyUndefined
}

// fabric is the switch/router part of a graph. Firewalls sit at the
// boundary and take no part in the fabric pattern.
type fabric struct {
	ids   []string
	nodes map[string]*GraphNode
	edges []GraphEdge
	adj   map[string][]int
	pairs map[[2]string]int // distinct device pairs -> parallel link count
}

func newFabric(g *Graph) *fabric {
	f := &fabric{
		nodes: make(map[string]*GraphNode),
		adj:   make(map[string][]int),
		pairs: make(map[[2]string]int),
	}
	for _, id := range g.order {
		n := g.nodes[id]
		if n.Kind == KindFirewall {
			continue
		}
		f.ids = append(f.ids, id)
		f.nodes[id] = n
	}
	for _, e := range g.edges {
		if f.nodes[e.From] == nil || f.nodes[e.To] == nil {
			continue
		}
		idx := len(f.edges)
		f.edges = append(f.edges, e)
		f.adj[e.From] = append(f.adj[e.From], idx)
		f.adj[e.To] = append(f.adj[e.To], idx)
		f.pairs[pairKey(e.From, e.To)]++
	}
	return f
}

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

func (f *fabric) adjacent(a, b string) bool {
	return f.pairs[pairKey(a, b)] > 0
}

func (f *fabric) allKind(kind DeviceKind) bool {
	for _, id := range f.ids {
		if f.nodes[id].Kind != kind {
			return false
		}
	}
	return true
}

// connected reports whether every fabric node is reachable from the first
func (f *fabric) connected() bool {
	if len(f.ids) == 0 {
		return false
	}
	visited := map[string]bool{f.ids[0]: true}
	queue := []string{f.ids[0]}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, i := range f.adj[current] {
			next := f.edges[i].Other(current)
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return len(visited) == len(f.ids)
}

// acyclic reports whether the connected fabric, with parallel links
// collapsed, has exactly n-1 distinct adjacencies
func (f *fabric) acyclic() bool {
	return len(f.pairs) == len(f.ids)-1
}

// groups partitions the fabric into components joined by local links.
// Links with both ends on outward ports (uplink/wan) are global.
func (f *fabric) groups() (groups [][]string, groupOf map[string]int) {
	groupOf = make(map[string]int)
	for _, id := range f.ids {
		if _, seen := groupOf[id]; seen {
			continue
		}
		gi := len(groups)
		members := []string{id}
		groupOf[id] = gi
		queue := []string{id}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			for _, i := range f.adj[current] {
				e := f.edges[i]
				if e.Global() {
					continue
				}
				next := e.Other(current)
				if _, seen := groupOf[next]; !seen {
					groupOf[next] = gi
					members = append(members, next)
					queue = append(queue, next)
				}
			}
		}
		sort.Strings(members)
		groups = append(groups, members)
	}
	return groups, groupOf
}

// groupGraph counts global links between each pair of groups.
// ok is false when a global link stays inside one group.
func (f *fabric) groupGraph(groupOf map[string]int) (links map[[2]int]int, ok bool) {
	links = make(map[[2]int]int)
	for _, e := range f.edges {
		if !e.Global() {
			continue
		}
		a, b := groupOf[e.From], groupOf[e.To]
		if a == b {
			return nil, false
		}
		if a > b {
			a, b = b, a
		}
		links[[2]int{a, b}]++
	}
	return links, true
}

func completeGroupGraph(n int, links map[[2]int]int) bool {
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			if links[[2]int{a, b}] == 0 {
				return false
			}
		}
	}
	return true
}

// clique reports whether every pair of members is joined by a local link
func (f *fabric) clique(members []string) bool {
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			if !f.localLink(members[i], members[j]) {
				return false
			}
		}
	}
	return true
}

func (f *fabric) localLink(a, b string) bool {
	for _, i := range f.adj[a] {
		e := f.edges[i]
		if !e.Global() && e.Other(a) == b {
			return true
		}
	}
	return false
}

// layering places switches on the tiers present in the fabric, bottom up
type layering struct {
	levels [][]string
	level  map[string]int
	up     map[string]int // links to the level above
	down   map[string]int // links to the level below
}

// layer checks the hierarchical precondition shared by the Clos family:
// every switch has a tier role, every link joins adjacent present tiers,
// and the lower end uses an uplink port while the upper end uses a lan port.
func (f *fabric) layer() (*layering, bool) {
	if !f.allKind(KindSwitch) {
		return nil, false
	}

	var byTier [3][]string
	tierOf := make(map[string]int)
	for _, id := range f.ids {
		tier, ok := f.nodes[id].SwitchRole.Tier()
		if !ok {
			return nil, false
		}
		byTier[tier] = append(byTier[tier], id)
		tierOf[id] = tier
	}

	l := &layering{
		level: make(map[string]int),
		up:    make(map[string]int),
		down:  make(map[string]int),
	}
	for _, ids := range byTier {
		if len(ids) == 0 {
			continue
		}
		for _, id := range ids {
			l.level[id] = len(l.levels)
		}
		l.levels = append(l.levels, ids)
	}

	for _, e := range f.edges {
		lower, upper := e.From, e.To
		if l.level[lower] > l.level[upper] {
			lower, upper = upper, lower
		}
		if l.level[upper]-l.level[lower] != 1 {
			return nil, false
		}
		if e.RoleAt(lower) != PortRoleUplink || e.RoleAt(upper) != PortRoleLAN {
			return nil, false
		}
		l.up[lower]++
		l.down[upper]++
	}
	return l, true
}

func uniform(ids []string, count map[string]int) bool {
	for _, id := range ids[1:] {
		if count[id] != count[ids[0]] {
			return false
		}
	}
	return true
}

// matchFatTree: three strict tiers with uniform uplink fan-out.
// Portland and Hedera are fat-trees that differ only in their control plane,
// which connectivity cannot show, so they are never returned here.
func matchFatTree(f *fabric) (NetworkTopology, bool) {
	l, ok := f.layer()
	if !ok || len(l.levels) != 3 {
		return "", false
	}
	access, dist, core := l.levels[0], l.levels[1], l.levels[2]

	for _, id := range access {
		if l.up[id] == 0 {
			return "", false
		}
	}
	for _, id := range dist {
		if l.up[id] == 0 || l.down[id] == 0 {
			return "", false
		}
	}
	for _, id := range core {
		if l.down[id] == 0 {
			return "", false
		}
	}
	if !uniform(access, l.up) || !uniform(dist, l.up) {
		return "", false
	}
	return TopologyFatTree, true
}

// matchVL2: layered switches whose two upper tiers form a full mesh of at
// least two switches each. Fan-out below the mesh may be uneven.
func matchVL2(f *fabric) (NetworkTopology, bool) {
	l, ok := f.layer()
	if !ok || len(l.levels) < 2 {
		return "", false
	}
	top := l.levels[len(l.levels)-1]
	below := l.levels[len(l.levels)-2]
	if len(top) < 2 || len(below) < 2 {
		return "", false
	}
	for _, t := range top {
		for _, b := range below {
			if !f.adjacent(t, b) {
				return "", false
			}
		}
	}
	for _, ids := range l.levels[:len(l.levels)-1] {
		for _, id := range ids {
			if l.up[id] == 0 {
				return "", false
			}
		}
	}
	return TopologyVL2, true
}

// matchDragonFly: groups joined internally by local links and to each other
// by global links.
func matchDragonFly(f *fabric) (NetworkTopology, bool) {
	if f.acyclic() {
		return "", false
	}
	groups, groupOf := f.groups()
	if len(groups) < 2 {
		return "", false
	}
	links, ok := f.groupGraph(groupOf)
	if !ok {
		return "", false
	}

	switch {
	case f.allKind(KindSwitch):
		if f.leafSpineGroups(groups) && completeGroupGraph(len(groups), links) {
			return TopologyDragonFlyPlus, true
		}
	case f.allKind(KindRouter):
		for _, members := range groups {
			if len(members) < 2 || !f.clique(members) {
				return "", false
			}
		}
		if completeGroupGraph(len(groups), links) {
			return TopologyDragonFly, true
		}
		if flattenedButterfly(len(groups), links) {
			return TopologySlingshot, true
		}
	}
	return "", false
}

// leafSpineGroups reports whether every group splits into access leaves and
// distribution/core spines, wired as a complete leaf-spine bipartite graph,
// with only spines carrying global links.
func (f *fabric) leafSpineGroups(groups [][]string) bool {
	spine := make(map[string]bool)
	for _, members := range groups {
		var leaves, spines []string
		for _, id := range members {
			switch f.nodes[id].SwitchRole {
			case SwitchAccess:
				leaves = append(leaves, id)
			case SwitchDistribution, SwitchCore:
				spines = append(spines, id)
				spine[id] = true
			default:
				return false
			}
		}
		if len(leaves) == 0 || len(spines) == 0 {
			return false
		}
		for _, leaf := range leaves {
			for _, s := range spines {
				if !f.localLink(leaf, s) {
					return false
				}
			}
		}
	}

	for _, e := range f.edges {
		if e.Global() {
			if !spine[e.From] || !spine[e.To] {
				return false
			}
			continue
		}
		if spine[e.From] == spine[e.To] {
			return false
		}
	}
	return true
}

// flattenedButterfly recognizes an r x c rook's graph (r, c >= 2): every
// group's neighbours split into its row and its column, each a clique, with
// no links between the two.
func flattenedButterfly(n int, links map[[2]int]int) bool {
	if n < 4 {
		return false
	}
	adj := make([]map[int]bool, n)
	for i := range adj {
		adj[i] = make(map[int]bool)
	}
	for pair := range links {
		adj[pair[0]][pair[1]] = true
		adj[pair[1]][pair[0]] = true
	}

	var shape [2]int
	for g := 0; g < n; g++ {
		neighbours := make([]int, 0, len(adj[g]))
		for nb := range adj[g] {
			neighbours = append(neighbours, nb)
		}
		if len(neighbours) < 2 {
			return false
		}
		sort.Ints(neighbours)

		pivot := neighbours[0]
		row := []int{pivot}
		var col []int
		for _, nb := range neighbours[1:] {
			if adj[pivot][nb] {
				row = append(row, nb)
			} else {
				col = append(col, nb)
			}
		}
		if len(col) == 0 || !intClique(adj, row) || !intClique(adj, col) {
			return false
		}
		for _, a := range row {
			for _, b := range col {
				if adj[a][b] {
					return false
				}
			}
		}

		dims := [2]int{len(row) + 1, len(col) + 1}
		if dims[0] > dims[1] {
			dims[0], dims[1] = dims[1], dims[0]
		}
		if g == 0 {
			shape = dims
		} else if dims != shape {
			return false
		}
	}
	return shape[0]*shape[1] == n
}

func intClique(adj []map[int]bool, members []int) bool {
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			if !adj[members[i]][members[j]] {
				return false
			}
		}
	}
	return true
}

// matchRecursive: switch-only cells that are internally complete, each
// switch wiring at most one port to another cell and each adjacent cell pair
// sharing exactly one link. BCube and FiConn put servers into the cell graph;
// devices here are never servers, so only DCell and MDCube can match.
func matchRecursive(f *fabric) (NetworkTopology, bool) {
	if !f.allKind(KindSwitch) || f.acyclic() {
		return "", false
	}
	cells, cellOf := f.groups()
	if len(cells) < 2 {
		return "", false
	}
	for _, members := range cells {
		if len(members) < 2 || !f.clique(members) {
			return "", false
		}
	}

	upward := make(map[string]int)
	for _, e := range f.edges {
		if e.Global() {
			upward[e.From]++
			upward[e.To]++
		}
	}
	for _, id := range f.ids {
		if upward[id] > 1 {
			return "", false
		}
	}

	links, ok := f.groupGraph(cellOf)
	if !ok {
		return "", false
	}
	degree := make([]int, len(cells))
	for pair, count := range links {
		if count != 1 {
			return "", false
		}
		degree[pair[0]]++
		degree[pair[1]]++
	}

	if completeGroupGraph(len(cells), links) {
		return TopologyDCell, true
	}
	if len(cells) < 4 {
		return "", false
	}
	for _, d := range degree[1:] {
		if d != degree[0] {
			return "", false
		}
	}
	return TopologyMDCube, true
}

// matchTree: connected and acyclic once parallel links are collapsed
func matchTree(f *fabric) (NetworkTopology, bool) {
	if f.acyclic() {
		return TopologyTree, true
	}
	return "", false
}

// matchFlexible covers OSA, c-Through and Helios. Their defining trait is
// runtime reconfiguration, which a static inventory does not carry.
func matchFlexible(f *fabric) (NetworkTopology, bool) {
	return "", false
}
