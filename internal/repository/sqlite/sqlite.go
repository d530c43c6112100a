package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"horao/internal/codec"
	"horao/internal/domain"
	"horao/internal/repository"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db    *sql.DB
	codec codec.Codec
	now   func() time.Time
}

var _ repository.Repository = (*Repository)(nil)

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection serializes writers and keeps :memory: databases alive
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db, codec: codec.NewSnappyCodec(), now: time.Now}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS networks (
		name TEXT PRIMARY KEY,
		network_type TEXT NOT NULL,
		topology TEXT,
		data BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS classifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		network TEXT NOT NULL,
		topology TEXT NOT NULL,
		anomalies TEXT,
		stats TEXT,
		classified_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_classifications_network ON classifications(network, id);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveNetwork inserts or replaces a network snapshot
func (r *Repository) SaveNetwork(ctx context.Context, n *domain.DataCenterNetwork) error {
	// one record so the topology column matches the stored snapshot
	rec := n.Record()
	data, err := r.codec.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode network %s: %w", rec.Name, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO networks (name, network_type, topology, data, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			network_type = excluded.network_type,
			topology = excluded.topology,
			data = excluded.data,
			updated_at = excluded.updated_at
	`, rec.Name, string(rec.Type), stringToNull(string(rec.Topology)), data, r.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save network %s: %w", rec.Name, err)
	}
	return nil
}

// GetNetwork retrieves a network by name; it returns nil when none is stored
func (r *Repository) GetNetwork(ctx context.Context, name string) (*domain.DataCenterNetwork, error) {
	var row networkRow
	err := r.db.QueryRowContext(ctx,
		`SELECT `+networkColumns+` FROM networks WHERE name = ?`, name,
	).Scan(row.scanArgs()...)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query network: %w", err)
	}

	return r.decodeNetwork(row)
}

// ListNetworks returns every stored network ordered by name
func (r *Repository) ListNetworks(ctx context.Context) ([]*domain.DataCenterNetwork, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+networkColumns+` FROM networks ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query networks: %w", err)
	}
	defer rows.Close()

	var networks []*domain.DataCenterNetwork
	for rows.Next() {
		var row networkRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan network: %w", err)
		}
		n, err := r.decodeNetwork(row)
		if err != nil {
			return nil, err
		}
		networks = append(networks, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating networks: %w", err)
	}
	return networks, nil
}

func (r *Repository) decodeNetwork(row networkRow) (*domain.DataCenterNetwork, error) {
	n := new(domain.DataCenterNetwork)
	if err := r.codec.Unmarshal(row.Data, n); err != nil {
		return nil, fmt.Errorf("failed to decode network %s: %w", row.Name, err)
	}
	if n.Name() != row.Name {
		return nil, fmt.Errorf("network %s: stored snapshot is named %q", row.Name, n.Name())
	}
	return n, nil
}

// DeleteNetwork removes a network and its classification history
func (r *Repository) DeleteNetwork(ctx context.Context, name string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM classifications WHERE network = ?`, name); err != nil {
		return fmt.Errorf("failed to delete history: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM networks WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete network: %w", err)
	}
	return tx.Commit()
}

// RecordClassification appends a classification to the network history and
// prunes it to the newest keep entries. keep <= 0 disables pruning.
func (r *Repository) RecordClassification(ctx context.Context, c domain.Classification, keep int) error {
	anomalies, err := marshalToNull(c.AnomalyMessages())
	if err != nil {
		return fmt.Errorf("failed to marshal anomalies: %w", err)
	}
	stats, err := marshalToNull(c.Stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO classifications (network, topology, anomalies, stats, classified_at)
		VALUES (?, ?, ?, ?, ?)
	`, c.Network, string(c.Topology), anomalies, stats, r.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert classification: %w", err)
	}

	if keep > 0 {
		_, err = tx.ExecContext(ctx, `
			DELETE FROM classifications
			WHERE network = ? AND id NOT IN (
				SELECT id FROM classifications WHERE network = ? ORDER BY id DESC LIMIT ?
			)
		`, c.Network, c.Network, keep)
		if err != nil {
			return fmt.Errorf("failed to prune history: %w", err)
		}
	}

	return tx.Commit()
}

// ListClassifications returns the history of a network, newest first.
// limit <= 0 returns everything.
func (r *Repository) ListClassifications(ctx context.Context, network string, limit int) ([]repository.ClassificationRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+classificationColumns+`
		FROM classifications WHERE network = ?
		ORDER BY id DESC LIMIT ?
	`, network, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query classifications: %w", err)
	}
	defer rows.Close()

	records := []repository.ClassificationRecord{}
	for rows.Next() {
		var row classificationRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan classification: %w", err)
		}
		rec, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating classifications: %w", err)
	}
	return records, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
