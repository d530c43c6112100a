package domain

import "fmt"

// NetworkTopology is the closed set of canonical datacenter fabric patterns
type NetworkTopology string

const (
	TopologyTree          NetworkTopology = "tree"           // Low-radix tree or star-bus
	TopologyVL2           NetworkTopology = "vl2"            // Low-radix Clos with a full mesh between the upper tiers
	TopologyFatTree       NetworkTopology = "fat_tree"       // High-radix fat-tree with full bisection bandwidth
	TopologyPortland      NetworkTopology = "portland"       // Fat-tree plus PortLand layer-2 routing
	TopologyHedera        NetworkTopology = "hedera"         // Fat-tree plus Hedera flow scheduling
	TopologyDCell         NetworkTopology = "dcell"          // Recursive, cells fully connected at each level
	TopologyBCube         NetworkTopology = "bcube"          // Recursive, server-centric container design
	TopologyMDCube        NetworkTopology = "mdcube"         // Recursive, BCube containers in a generalized cube
	TopologyFiConn        NetworkTopology = "ficonn"         // Recursive, dual-port servers and commodity switches
	TopologyOSA           NetworkTopology = "osa"            // Flexible, fully optical
	TopologyCThrough      NetworkTopology = "cthrough"       // Flexible, hybrid electrical/optical, host driven
	TopologyHelios        NetworkTopology = "helios"         // Flexible, hybrid electrical/optical pods
	TopologyDragonFly     NetworkTopology = "dragonfly"      // Complete router groups, groups pairwise connected
	TopologySlingshot     NetworkTopology = "slingshot"      // Dragonfly with a flattened butterfly between groups
	TopologyDragonFlyPlus NetworkTopology = "dragonfly_plus" // Dragonfly with leaf/spine groups
	TopologyUndefined     NetworkTopology = "undefined"      // No canonical pattern matches
)

// AllTopologies lists every label in declaration order
var AllTopologies = []NetworkTopology{
	TopologyTree, TopologyVL2, TopologyFatTree, TopologyPortland, TopologyHedera,
	TopologyDCell, TopologyBCube, TopologyMDCube, TopologyFiConn,
	TopologyOSA, TopologyCThrough, TopologyHelios,
	TopologyDragonFly, TopologySlingshot, TopologyDragonFlyPlus,
	TopologyUndefined,
}

// TopologyFamily groups topologies that share a construction principle
type TopologyFamily string

const (
	FamilyTree      TopologyFamily = "tree"
	FamilyClos      TopologyFamily = "clos"
	FamilyFatTree   TopologyFamily = "fat_tree"
	FamilyRecursive TopologyFamily = "recursive"
	FamilyFlexible  TopologyFamily = "flexible"
	FamilyDragonFly TopologyFamily = "dragonfly"
	FamilyUndefined TopologyFamily = "undefined"
)

// Family returns the construction family of the topology
func (t NetworkTopology) Family() TopologyFamily {
	switch t {
	case TopologyTree:
		return FamilyTree
	case TopologyVL2:
		return FamilyClos
	case TopologyFatTree, TopologyPortland, TopologyHedera:
		return FamilyFatTree
	case TopologyDCell, TopologyBCube, TopologyMDCube, TopologyFiConn:
		return FamilyRecursive
	case TopologyOSA, TopologyCThrough, TopologyHelios:
		return FamilyFlexible
	case TopologyDragonFly, TopologySlingshot, TopologyDragonFlyPlus:
		return FamilyDragonFly
	}
	return FamilyUndefined
}

// ParseNetworkTopology converts a string to a NetworkTopology
func ParseNetworkTopology(s string) (NetworkTopology, error) {
	for _, t := range AllTopologies {
		if string(t) == s {
			return t, nil
		}
	}
	return TopologyUndefined, fmt.Errorf("unknown network topology %q", s)
}

// NetworkType is the plane a DataCenterNetwork carries
type NetworkType string

const (
	NetworkManagement NetworkType = "management"
	NetworkControl    NetworkType = "control"
	NetworkData       NetworkType = "data"
)

// ParseNetworkType converts a string to a NetworkType
func ParseNetworkType(s string) (NetworkType, error) {
	switch NetworkType(s) {
	case NetworkManagement, NetworkControl, NetworkData:
		return NetworkType(s), nil
	}
	return "", fmt.Errorf("unknown network type %q", s)
}
