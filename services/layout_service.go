package services

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/rocket-telemetry/dashboard/pkg/config"
	customlog "github.com/rocket-telemetry/dashboard/pkg/log"
	"gopkg.in/yaml.v3"
)

// LayoutPublisher defines the interface for announcing layout updates.
// This avoids a direct dependency on the concrete ZeroMQ publisher.
type LayoutPublisher interface {
	PublishLayoutUpdatedNotification(layout *config.Layout) error
}

// LayoutService manages the operational chart layout.
type LayoutService interface {
	LoadLayout() error
	GetLayout() *config.Layout
	GetLayoutYAML() ([]byte, error)
	UpdateLayout(newLayoutYAML []byte) error
	PersistLayout(yamlData []byte) error
	SetPublisher(p LayoutPublisher)
}

// layoutService implements the LayoutService interface.
type layoutService struct {
	layoutPath      string
	logger          customlog.Logger
	layoutPublisher LayoutPublisher
	currentLayout   *config.Layout
	mu              sync.RWMutex
	// notify runs publisher calls; tests replace it to run synchronously
	notify func(func())
}

// NewLayoutService creates a new LayoutService and loads the layout file.
// Publisher can be set later via SetPublisher.
func NewLayoutService(layoutPath string, logger customlog.Logger) (LayoutService, error) {
	if layoutPath == "" {
		return nil, fmt.Errorf("layout path cannot be empty")
	}

	service := &layoutService{
		layoutPath: layoutPath,
		logger:     logger,
		notify:     func(f func()) { go f() },
	}

	if err := service.LoadLayout(); err != nil {
		return nil, err
	}

	logger.Infof("LayoutService initialized for path: %s", layoutPath)
	return service, nil
}

// LoadLayout reads the layout file from disk. A missing file means the
// built-in default layout.
func (s *layoutService) LoadLayout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Infof("Loading chart layout from: %s", s.layoutPath)
	layout, err := config.LoadLayout(s.layoutPath)
	if err != nil {
		s.logger.Errorf("Error loading chart layout '%s': %v", s.layoutPath, err)
		return err
	}

	s.currentLayout = layout
	s.logger.Infof("Loaded chart layout ID: %s, Version: %s, %d panels", layout.LayoutID, layout.Version, len(layout.Panels))
	return nil
}

// GetLayout returns the current layout. It's read-only; modifications
// should go through UpdateLayout.
func (s *layoutService) GetLayout() *config.Layout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentLayout
}

// GetLayoutYAML returns the layout file's raw YAML, or the current layout
// marshalled when no file has been written yet.
func (s *layoutService) GetLayoutYAML() ([]byte, error) {
	s.mu.RLock()
	path := s.layoutPath
	current := s.currentLayout
	s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return yaml.Marshal(current)
	}
	if err != nil {
		s.logger.Errorf("Error reading layout file '%s' for YAML export: %v", path, err)
		return nil, fmt.Errorf("error reading layout file '%s': %w", path, err)
	}
	return data, nil
}

// UpdateLayout validates, persists and applies a new layout, then publishes
// a notification.
func (s *layoutService) UpdateLayout(newLayoutYAML []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Infof("Attempting to update chart layout from provided YAML")

	newLayout, err := config.ParseLayout(newLayoutYAML)
	if err != nil {
		s.logger.Errorf("Rejected layout update: %v", err)
		return err
	}

	// Persist before applying so a failed write leaves the old layout active
	if err := s.persistLayoutUnlocked(newLayoutYAML); err != nil {
		return err
	}

	oldID := "N/A"
	if s.currentLayout != nil {
		oldID = s.currentLayout.LayoutID
	}
	s.currentLayout = newLayout
	s.logger.Infof("Updated chart layout. ID %s -> %s, Version: %s", oldID, newLayout.LayoutID, newLayout.Version)

	if s.layoutPublisher != nil {
		publisher := s.layoutPublisher
		s.notify(func() {
			if err := publisher.PublishLayoutUpdatedNotification(newLayout); err != nil {
				s.logger.Warnf("Failed to publish layout update notification: %v", err)
			}
		})
	} else {
		s.logger.Debugf("LayoutPublisher not configured, skipping update notification.")
	}

	return nil
}

// PersistLayout writes the given YAML data to the layout file path.
func (s *layoutService) PersistLayout(yamlData []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLayoutUnlocked(yamlData)
}

// persistLayoutUnlocked assumes the caller holds the lock.
func (s *layoutService) persistLayoutUnlocked(yamlData []byte) error {
	s.logger.Infof("Persisting chart layout to: %s", s.layoutPath)
	if err := os.WriteFile(s.layoutPath, yamlData, 0644); err != nil {
		s.logger.Errorf("Error writing layout file '%s': %v", s.layoutPath, err)
		return fmt.Errorf("error writing layout file '%s': %w", s.layoutPath, err)
	}
	return nil
}

// SetPublisher allows injecting the LayoutPublisher after initialization.
func (s *layoutService) SetPublisher(p LayoutPublisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layoutPublisher = p
	s.logger.Infof("LayoutPublisher injected into LayoutService.")
}
