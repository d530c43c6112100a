// Package handler implements the HTTP API of horao.
//
// # Endpoints
//
//	GET  /api/networks                  network summaries
//	GET  /api/networks/{name}           full inventory
//	GET  /api/networks/{name}/topology  current classification
//	GET  /api/networks/{name}/graph     connectivity graph and anomalies
//	GET  /api/networks/{name}/history   stored classifications (?limit=N)
//	POST /api/classify                  classify one network or all
//	POST /api/reload                    reload the inventory file
//	GET  /api/export/{format}           json, yaml or snappy
//	GET  /events                        Server-Sent Events
//	GET  /metrics                       Prometheus metrics
//
// # Response Format
//
// Success responses return JSON data. Error responses return JSON with
// {error, details} and a 4xx or 5xx status: 404 for unknown networks, 400
// for malformed requests.
//
// # Middleware
//
// Recover, Logger and Metrics wrap every route; Chain composes them.
package handler
