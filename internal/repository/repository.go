package repository

import (
	"context"
	"time"

	"horao/internal/domain"
)

// Repository defines the interface for network persistence
type Repository interface {
	// Networks
	SaveNetwork(ctx context.Context, n *domain.DataCenterNetwork) error
	GetNetwork(ctx context.Context, name string) (*domain.DataCenterNetwork, error)
	ListNetworks(ctx context.Context) ([]*domain.DataCenterNetwork, error)
	DeleteNetwork(ctx context.Context, name string) error

	// Classification history
	RecordClassification(ctx context.Context, c domain.Classification, keep int) error
	ListClassifications(ctx context.Context, network string, limit int) ([]ClassificationRecord, error)

	// Close releases resources
	Close() error
}

// ClassificationRecord is one stored classification
type ClassificationRecord struct {
	ID           int64                  `json:"id"`
	Network      string                 `json:"network"`
	Topology     domain.NetworkTopology `json:"topology"`
	Anomalies    []string               `json:"anomalies"`
	Stats        domain.GraphStats      `json:"stats"`
	ClassifiedAt time.Time              `json:"classified_at"`
}
