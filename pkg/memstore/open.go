package memstore

import (
	"fmt"

	"github.com/fracktal-labs/fracktal/internal/config"
	"github.com/fracktal-labs/fracktal/internal/logger"
	"github.com/fracktal-labs/fracktal/pkg/codec"
)

// Service is a fully wired store: configuration loaded, logging set up,
// watcher running, maintenance scheduled if enabled.
type Service struct {
	Store       *Store
	Maintenance *Maintenance

	log *logger.Logger
}

// Open loads configuration from configPath (empty means the default
// location) and brings up the store with everything the config enables.
func Open(configPath string) (*Service, error) {
	cfg, err := config.NewLoader(configPath).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	cdc, err := codec.New(cfg.Codec.Params())
	if err != nil {
		log.Close()
		return nil, err
	}

	store, err := New(Options{
		Dir:    cfg.DataDir,
		Codec:  cdc,
		Logger: log.Zerolog(),
		Watch:  cfg.Watcher.Enabled,
	})
	if err != nil {
		log.Close()
		return nil, err
	}

	svc := &Service{Store: store, log: log}

	if cfg.Maintenance.Enabled {
		m, err := NewMaintenance(store, cfg.Maintenance.Schedule, log.Zerolog())
		if err != nil {
			store.Close()
			log.Close()
			return nil, fmt.Errorf("failed to set up maintenance: %w", err)
		}
		if err := m.Start(); err != nil {
			store.Close()
			log.Close()
			return nil, fmt.Errorf("failed to start maintenance: %w", err)
		}
		svc.Maintenance = m
	}

	return svc, nil
}

// Close shuts down maintenance, the store and logging, in that order.
func (s *Service) Close() error {
	if s.Maintenance != nil {
		s.Maintenance.Stop()
	}
	err := s.Store.Close()
	if s.log != nil {
		s.log.Close()
	}
	return err
}
