// Package domain models the physical network fabric of a datacenter and
// infers which canonical topology it implements.
//
// # Core Types
//
// Port and Link describe the cabling. A Link is owned by the network that
// declares it and is up only when both of its ports are up.
//
// Switch, Router and Firewall are the closed set of Device implementations.
// Devices own ports in named collections (lan, uplink, wan) but never own
// other devices.
//
// DataCenterNetwork is one network plane (management, control or data). Its
// inventory is an immutable snapshot replaced as a whole on every edit, so
// readers never observe a partial change.
//
// # Classification
//
// BuildGraph turns an Inventory into an undirected multigraph, skipping and
// reporting anomalous links (dangling, self-loop, duplicate endpoint).
// Classify maps that graph to a NetworkTopology label. It is a pure function:
// the same graph always yields the same label, and a graph that matches no
// known pattern is TopologyUndefined.
//
// # Design Principles
//
// - No database, configuration or logging dependencies
// - Health never changes the structural classification
// - Deterministic iteration everywhere a result depends on order
package domain
