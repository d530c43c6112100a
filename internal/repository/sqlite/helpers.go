package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"horao/internal/domain"
	"horao/internal/repository"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// millisToTime converts a stored unix millisecond timestamp
func millisToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// unmarshalJSONField safely unmarshals JSON from nullable string into target
func unmarshalJSONField(ns sql.NullString, target interface{}) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), target)
}

// marshalToNull marshals v to a nullable JSON string.
// nil and empty lists are stored as NULL.
func marshalToNull(v interface{}) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	if s, ok := v.([]string); ok && len(s) == 0 {
		return sql.NullString{}, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// ============================================================================
// Schema Evolution Guide
// ============================================================================
//
// To add a column to the classifications table:
// 1. Add the field to classificationRow (below)
// 2. APPEND it to scanArgs() and classificationColumns
// 3. Map it in toDomain()
// 4. Add it to the INSERT in RecordClassification
//
// Column order must match between classificationColumns and scanArgs().
// The networks table follows the same pattern with networkRow.

// ============================================================================
// Network Row Scanner
// ============================================================================

// networkRow holds the columns of a networks query
type networkRow struct {
	Name      string
	Type      string
	Topology  sql.NullString
	Data      []byte
	UpdatedAt int64
}

// scanArgs returns pointers in networkColumns order:
// name, network_type, topology, data, updated_at
func (r *networkRow) scanArgs() []interface{} {
	return []interface{}{
		&r.Name,      // 1
		&r.Type,      // 2
		&r.Topology,  // 3
		&r.Data,      // 4
		&r.UpdatedAt, // 5
	}
}

// networkColumns is the SELECT column list for network queries
const networkColumns = `name, network_type, topology, data, updated_at`

// ============================================================================
// Classification Row Scanner
// ============================================================================

// classificationRow holds the columns of a classifications query
type classificationRow struct {
	ID             int64
	Network        string
	Topology       string
	AnomaliesJSON  sql.NullString
	StatsJSON      sql.NullString
	ClassifiedAtMs int64
}

// scanArgs returns pointers in classificationColumns order:
// id, network, topology, anomalies, stats, classified_at
func (r *classificationRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,             // 1
		&r.Network,        // 2
		&r.Topology,       // 3
		&r.AnomaliesJSON,  // 4
		&r.StatsJSON,      // 5
		&r.ClassifiedAtMs, // 6
	}
}

// toDomain converts the scanned row to a repository.ClassificationRecord
func (r *classificationRow) toDomain() (repository.ClassificationRecord, error) {
	rec := repository.ClassificationRecord{
		ID:           r.ID,
		Network:      r.Network,
		Topology:     domain.NetworkTopology(r.Topology),
		Anomalies:    []string{},
		ClassifiedAt: millisToTime(r.ClassifiedAtMs),
	}

	if err := unmarshalJSONField(r.AnomaliesJSON, &rec.Anomalies); err != nil {
		return rec, fmt.Errorf("unmarshal anomalies: %w", err)
	}
	if err := unmarshalJSONField(r.StatsJSON, &rec.Stats); err != nil {
		return rec, fmt.Errorf("unmarshal stats: %w", err)
	}
	return rec, nil
}

// classificationColumns is the SELECT column list for classification queries
const classificationColumns = `id, network, topology, anomalies, stats, classified_at`
