package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"sync"
	"time"

	"horao/internal/codec"
	"horao/internal/config"
	"horao/internal/domain"
	"horao/internal/loader"
	"horao/internal/metrics"
	"horao/internal/repository"
)

// ErrNetworkNotFound is returned for unknown network names
var ErrNetworkNotFound = errors.New("network not found")

// Options tunes a NetworkService
type Options struct {
	// History is how many classifications are kept per network; 0 keeps all
	History  int
	LogLevel config.LogLevel
}

// NetworkService holds the live networks, classifies them and records the
// results
type NetworkService struct {
	repo     repository.Repository
	eventBus *EventBus
	metrics  *metrics.Registry
	opts     Options

	mu       sync.RWMutex
	networks map[string]*domain.DataCenterNetwork
}

// NewNetworkService creates a new network service
func NewNetworkService(repo repository.Repository, eventBus *EventBus, reg *metrics.Registry, opts Options) *NetworkService {
	if opts.LogLevel == "" {
		opts.LogLevel = config.LogInfo
	}
	return &NetworkService{
		repo:     repo,
		eventBus: eventBus,
		metrics:  reg,
		opts:     opts,
		networks: make(map[string]*domain.DataCenterNetwork),
	}
}

func (s *NetworkService) debugf(format string, args ...interface{}) {
	if s.opts.LogLevel.Enabled(config.LogDebug) {
		log.Printf("DEBUG "+format, args...)
	}
}

// Load registers networks, replacing any with the same name, and persists
// them
func (s *NetworkService) Load(ctx context.Context, networks []*domain.DataCenterNetwork) error {
	for _, n := range networks {
		if err := s.repo.SaveNetwork(ctx, n); err != nil {
			return err
		}
	}

	s.mu.Lock()
	for _, n := range networks {
		s.networks[n.Name()] = n
	}
	s.mu.Unlock()

	s.eventBus.Publish(Event{
		Type:    EventNetworksLoaded,
		Payload: map[string]interface{}{"networks": names(networks)},
	})
	s.debugf("loaded %d networks", len(networks))
	return nil
}

// Restore loads the networks saved by a previous run
func (s *NetworkService) Restore(ctx context.Context) (int, error) {
	networks, err := s.repo.ListNetworks(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to restore networks: %w", err)
	}

	s.mu.Lock()
	for _, n := range networks {
		s.networks[n.Name()] = n
	}
	s.mu.Unlock()

	return len(networks), nil
}

// Reload replaces every network with the contents of an inventory file.
// Networks absent from the file are removed along with their history.
// On a load error the current networks are left untouched.
func (s *NetworkService) Reload(ctx context.Context, path string) ([]domain.Classification, error) {
	networks, err := loader.LoadYAML(path)
	if err != nil {
		return nil, fmt.Errorf("failed to reload %s: %w", path, err)
	}

	next := make(map[string]*domain.DataCenterNetwork, len(networks))
	for _, n := range networks {
		next[n.Name()] = n
	}

	s.mu.Lock()
	var removed []string
	for name := range s.networks {
		if _, ok := next[name]; !ok {
			removed = append(removed, name)
		}
	}
	s.networks = next
	s.mu.Unlock()

	sort.Strings(removed)
	for _, name := range removed {
		if err := s.repo.DeleteNetwork(ctx, name); err != nil {
			log.Printf("Failed to delete network %s: %v", name, err)
		}
		if s.metrics != nil {
			s.metrics.ForgetNetwork(name)
		}
		s.eventBus.Publish(Event{
			Type:    EventNetworkRemoved,
			Payload: map[string]string{"network": name},
		})
	}

	s.eventBus.Publish(Event{
		Type:    EventInventoryReloaded,
		Payload: map[string]interface{}{"path": path, "networks": names(networks), "removed": removed},
	})

	return s.ClassifyAll(ctx)
}

// Get returns a network by name
func (s *NetworkService) Get(name string) (*domain.DataCenterNetwork, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.networks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNetworkNotFound, name)
	}
	return n, nil
}

// List returns every network ordered by name
func (s *NetworkService) List() []*domain.DataCenterNetwork {
	s.mu.RLock()
	out := make([]*domain.DataCenterNetwork, 0, len(s.networks))
	for _, n := range s.networks {
		out = append(out, n)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Classify classifies the current snapshot of a network, records the result
// and publishes it
func (s *NetworkService) Classify(ctx context.Context, name string) (domain.Classification, error) {
	n, err := s.Get(name)
	if err != nil {
		return domain.Classification{}, err
	}

	start := time.Now()
	c := n.Classification()
	elapsed := time.Since(start)

	if s.metrics != nil {
		s.metrics.RecordClassification(c, elapsed)
	}
	s.debugf("classified %s as %s in %s (%d devices, %d links)",
		name, c.Topology, elapsed, c.Stats.Devices, c.Stats.Links)

	if err := s.repo.SaveNetwork(ctx, n); err != nil {
		return c, err
	}
	if err := s.repo.RecordClassification(ctx, c, s.opts.History); err != nil {
		return c, err
	}

	s.eventBus.Publish(Event{
		Type:    EventTopologyClassified,
		Payload: c,
	})

	if len(c.Anomalies) > 0 {
		report := AnomalyReport{Network: name, Anomalies: c.AnomalyMessages()}
		seen := make(map[string]bool)
		for _, a := range c.Anomalies {
			reason := domain.AnomalyReason(a)
			if !seen[reason] {
				seen[reason] = true
				report.Reasons = append(report.Reasons, reason)
			}
		}
		log.Printf("Network %s has %d inventory anomalies: %v", name, len(c.Anomalies), report.Reasons)
		s.eventBus.Publish(Event{
			Type:    EventAnomaliesDetected,
			Payload: report,
		})
	}

	return c, nil
}

// ClassifyAll classifies every network. It keeps going after a failure and
// returns the joined errors.
func (s *NetworkService) ClassifyAll(ctx context.Context) ([]domain.Classification, error) {
	var (
		results []domain.Classification
		errs    []error
	)
	for _, n := range s.List() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		c, err := s.Classify(ctx, n.Name())
		if err != nil {
			errs = append(errs, fmt.Errorf("classify %s: %w", n.Name(), err))
			continue
		}
		results = append(results, c)
	}
	return results, errors.Join(errs...)
}

// History returns the stored classifications of a network, newest first
func (s *NetworkService) History(ctx context.Context, name string, limit int) ([]repository.ClassificationRecord, error) {
	if _, err := s.Get(name); err != nil {
		return nil, err
	}
	return s.repo.ListClassifications(ctx, name, limit)
}

// Export writes every network in the given codec format
func (s *NetworkService) Export(format string, w io.Writer) error {
	c, err := codec.ForFormat(format)
	if err != nil {
		return err
	}
	return c.Export(s.List(), w)
}

func names(networks []*domain.DataCenterNetwork) []string {
	out := make([]string, 0, len(networks))
	for _, n := range networks {
		out = append(out, n.Name())
	}
	return out
}
