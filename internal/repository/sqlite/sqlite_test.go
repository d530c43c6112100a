package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"horao/internal/domain"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestRepo creates an in-memory SQLite repository for testing
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

// assertNoError fails the test if err is not nil
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// assertEqual fails the test if expected != actual
func assertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

// testNetwork builds a two-switch star
func testNetwork(name string) *domain.DataCenterNetwork {
	up := domain.Port{SerialNumber: name + "-U1", Name: "eth0", Status: domain.StatusUp, SpeedGb: 100}
	down := domain.Port{SerialNumber: name + "-L1", Name: "eth1", Status: domain.StatusUp, SpeedGb: 100}

	access := domain.Switch{
		Equipment:   domain.Equipment{SerialNumber: name + "-ACC", Name: "access", Status: domain.StatusUp},
		Layer:       domain.Layer2,
		Role:        domain.SwitchAccess,
		Management:  domain.Managed,
		LANPorts:    []domain.Port{},
		UplinkPorts: []domain.Port{up},
	}
	dist := domain.Switch{
		Equipment:   domain.Equipment{SerialNumber: name + "-DIST", Name: "dist", Status: domain.StatusUp},
		Layer:       domain.Layer3,
		Role:        domain.SwitchDistribution,
		Management:  domain.Managed,
		LANPorts:    []domain.Port{down},
		UplinkPorts: []domain.Port{},
	}

	n := domain.NewDataCenterNetwork(name, domain.NetworkData, []domain.Switch{access, dist}, nil, nil)
	n.AddLink(domain.NewLink(up, down))
	return n
}

// fixedClock returns a clock that advances one second per call
func fixedClock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

// ============================================================================
// Helper Tests
// ============================================================================

func TestNullToString(t *testing.T) {
	tests := []struct {
		name     string
		input    sql.NullString
		expected string
	}{
		{"valid", sql.NullString{String: "tree", Valid: true}, "tree"},
		{"valid empty", sql.NullString{String: "", Valid: true}, ""},
		{"null", sql.NullString{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertEqual(t, tt.expected, nullToString(tt.input))
		})
	}
}

func TestStringToNull(t *testing.T) {
	assertEqual(t, sql.NullString{}, stringToNull(""))
	assertEqual(t, sql.NullString{String: "vl2", Valid: true}, stringToNull("vl2"))
}

func TestMarshalToNull(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  sql.NullString
	}{
		{"nil", nil, sql.NullString{}},
		{"empty list", []string{}, sql.NullString{}},
		{"list", []string{"a", "b"}, sql.NullString{String: `["a","b"]`, Valid: true}},
		{"struct", domain.GraphStats{Devices: 2}, sql.NullString{
			String: `{"devices":2,"links":0,"links_up":0,"links_degraded":0,"links_down":0,"by_kind":null}`,
			Valid:  true,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := marshalToNull(tt.input)
			assertNoError(t, err)
			assertEqual(t, tt.want, got)
		})
	}
}

func TestUnmarshalJSONField(t *testing.T) {
	var out []string
	assertNoError(t, unmarshalJSONField(sql.NullString{}, &out))
	if out != nil {
		t.Fatalf("expected untouched target, got %v", out)
	}

	assertNoError(t, unmarshalJSONField(sql.NullString{String: `["x"]`, Valid: true}, &out))
	assertEqual(t, []string{"x"}, out)

	if err := unmarshalJSONField(sql.NullString{String: `{`, Valid: true}, &out); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestClassificationRowToDomain(t *testing.T) {
	row := classificationRow{
		ID:             7,
		Network:        "data",
		Topology:       "fat_tree",
		AnomaliesJSON:  sql.NullString{String: `["link a: dangling"]`, Valid: true},
		StatsJSON:      sql.NullString{String: `{"devices":3,"links":2}`, Valid: true},
		ClassifiedAtMs: 1700000000000,
	}

	rec, err := row.toDomain()
	assertNoError(t, err)
	assertEqual(t, int64(7), rec.ID)
	assertEqual(t, domain.TopologyFatTree, rec.Topology)
	assertEqual(t, []string{"link a: dangling"}, rec.Anomalies)
	assertEqual(t, 3, rec.Stats.Devices)
	assertEqual(t, time.UnixMilli(1700000000000).UTC(), rec.ClassifiedAt)

	row.AnomaliesJSON = sql.NullString{}
	rec, err = row.toDomain()
	assertNoError(t, err)
	assertEqual(t, []string{}, rec.Anomalies)

	row.StatsJSON = sql.NullString{String: "nope", Valid: true}
	if _, err := row.toDomain(); err == nil {
		t.Fatal("expected error for malformed stats")
	}
}

// ============================================================================
// Network Tests
// ============================================================================

func TestSaveAndGetNetwork(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	n := testNetwork("data")
	assertNoError(t, repo.SaveNetwork(ctx, n))

	got, err := repo.GetNetwork(ctx, "data")
	assertNoError(t, err)
	if got == nil {
		t.Fatal("expected stored network")
	}
	assertEqual(t, n.Record(), got.Record())
	assertEqual(t, domain.TopologyTree, got.Topology())

	var topology string
	err = repo.db.QueryRow(`SELECT topology FROM networks WHERE name = ?`, "data").Scan(&topology)
	assertNoError(t, err)
	assertEqual(t, "tree", topology)
}

func TestSaveNetwork_TopologyMatchesSnapshot(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	n := testNetwork("data")
	spare := domain.Switch{Equipment: domain.Equipment{SerialNumber: "data-SPARE", Status: domain.StatusUp}}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			n.AddSwitch(spare)
			n.RemoveDevice("data-SPARE")
		}
	}()

	for i := 0; i < 20; i++ {
		assertNoError(t, repo.SaveNetwork(ctx, n))

		var topology sql.NullString
		var data []byte
		err := repo.db.QueryRow(`SELECT topology, data FROM networks WHERE name = ?`, "data").Scan(&topology, &data)
		assertNoError(t, err)

		var rec domain.NetworkRecord
		assertNoError(t, repo.codec.Unmarshal(data, &rec))
		assertEqual(t, string(rec.Topology), topology.String)
	}
	<-done
}

func TestGetNetwork_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.GetNetwork(context.Background(), "missing")
	assertNoError(t, err)
	if got != nil {
		t.Fatalf("expected nil, got %v", got.Name())
	}
}

func TestSaveNetwork_Upsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	n := testNetwork("data")
	assertNoError(t, repo.SaveNetwork(ctx, n))

	n.RemoveDevice("data-ACC")
	assertNoError(t, repo.SaveNetwork(ctx, n))

	got, err := repo.GetNetwork(ctx, "data")
	assertNoError(t, err)
	inv := got.Snapshot()
	assertEqual(t, 1, len(inv.Switches))
	assertEqual(t, 0, len(inv.Links))
	assertEqual(t, domain.TopologyUndefined, got.Topology())

	networks, err := repo.ListNetworks(ctx)
	assertNoError(t, err)
	assertEqual(t, 1, len(networks))
}

func TestListNetworks(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	networks, err := repo.ListNetworks(ctx)
	assertNoError(t, err)
	assertEqual(t, 0, len(networks))

	for _, name := range []string{"mgmt", "data", "control"} {
		assertNoError(t, repo.SaveNetwork(ctx, testNetwork(name)))
	}

	networks, err = repo.ListNetworks(ctx)
	assertNoError(t, err)
	var names []string
	for _, n := range networks {
		names = append(names, n.Name())
	}
	assertEqual(t, []string{"control", "data", "mgmt"}, names)
}

func TestListNetworks_CorruptSnapshot(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.db.Exec(`INSERT INTO networks (name, network_type, data, updated_at) VALUES (?, ?, ?, ?)`,
		"broken", "data", []byte("not snappy"), 0)
	assertNoError(t, err)

	if _, err := repo.ListNetworks(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := repo.GetNetwork(context.Background(), "broken"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestDeleteNetwork(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	n := testNetwork("data")
	assertNoError(t, repo.SaveNetwork(ctx, n))
	assertNoError(t, repo.RecordClassification(ctx, n.Classification(), 0))
	assertNoError(t, repo.SaveNetwork(ctx, testNetwork("other")))

	assertNoError(t, repo.DeleteNetwork(ctx, "data"))

	got, err := repo.GetNetwork(ctx, "data")
	assertNoError(t, err)
	if got != nil {
		t.Fatal("expected network to be deleted")
	}

	history, err := repo.ListClassifications(ctx, "data", 0)
	assertNoError(t, err)
	assertEqual(t, 0, len(history))

	// deleting an unknown network is not an error
	assertNoError(t, repo.DeleteNetwork(ctx, "missing"))

	networks, err := repo.ListNetworks(ctx)
	assertNoError(t, err)
	assertEqual(t, 1, len(networks))
}

// ============================================================================
// Classification History Tests
// ============================================================================

func TestRecordClassification(t *testing.T) {
	repo := newTestRepo(t)
	repo.now = fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	c := domain.Classification{
		Network:   "data",
		Topology:  domain.TopologyVL2,
		Anomalies: []error{errors.New("first"), fmt.Errorf("second: %w", domain.ErrDanglingPortReference)},
		Stats:     domain.GraphStats{Devices: 4, Links: 4, LinksUp: 4},
	}
	assertNoError(t, repo.RecordClassification(ctx, c, 10))

	history, err := repo.ListClassifications(ctx, "data", 0)
	assertNoError(t, err)
	assertEqual(t, 1, len(history))

	rec := history[0]
	assertEqual(t, "data", rec.Network)
	assertEqual(t, domain.TopologyVL2, rec.Topology)
	assertEqual(t, c.AnomalyMessages(), rec.Anomalies)
	assertEqual(t, 4, rec.Stats.Devices)
	assertEqual(t, time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC), rec.ClassifiedAt)
}

func TestRecordClassification_Prune(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	topologies := []domain.NetworkTopology{
		domain.TopologyTree, domain.TopologyVL2, domain.TopologyFatTree,
		domain.TopologyDCell, domain.TopologyUndefined,
	}
	for _, topo := range topologies {
		assertNoError(t, repo.RecordClassification(ctx, domain.Classification{Network: "data", Topology: topo}, 3))
		assertNoError(t, repo.RecordClassification(ctx, domain.Classification{Network: "other", Topology: topo}, 0))
	}

	history, err := repo.ListClassifications(ctx, "data", 0)
	assertNoError(t, err)
	var got []domain.NetworkTopology
	for _, rec := range history {
		got = append(got, rec.Topology)
	}
	// newest first, pruned to three
	assertEqual(t, []domain.NetworkTopology{domain.TopologyUndefined, domain.TopologyDCell, domain.TopologyFatTree}, got)

	// pruning is per network
	other, err := repo.ListClassifications(ctx, "other", 0)
	assertNoError(t, err)
	assertEqual(t, 5, len(other))

	limited, err := repo.ListClassifications(ctx, "other", 2)
	assertNoError(t, err)
	assertEqual(t, 2, len(limited))
	assertEqual(t, domain.TopologyUndefined, limited[0].Topology)
}

func TestListClassifications_Empty(t *testing.T) {
	repo := newTestRepo(t)

	history, err := repo.ListClassifications(context.Background(), "nothing", 5)
	assertNoError(t, err)
	if history == nil {
		t.Fatal("expected empty slice, got nil")
	}
	assertEqual(t, 0, len(history))
}

func TestRepository_CanceledContext(t *testing.T) {
	repo := newTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := repo.SaveNetwork(ctx, testNetwork("data")); err == nil {
		t.Fatal("expected error for canceled context")
	}
	if _, err := repo.ListNetworks(ctx); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
