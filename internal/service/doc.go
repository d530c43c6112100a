// Package service implements the business logic of horao.
//
// NetworkService sits between the HTTP handlers and the repository. It owns
// the live DataCenterNetwork values, runs the topology classifier on demand
// and writes snapshots and classification history through to storage.
//
// # Event System
//
// The service publishes events on an EventBus for real-time updates via
// Server-Sent Events: networks loaded or removed, inventory reloads,
// classification results and inventory anomalies.
//
// # Design Principles
//
// - Networks are read lock-free; the service lock only guards the name index
// - A failed reload leaves the current networks in place
// - Context-aware for cancellation of storage calls
package service
