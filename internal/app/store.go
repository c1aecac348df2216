package app

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/rbright/nudge/internal/config"
	"github.com/rbright/nudge/internal/engine"
	"github.com/rbright/nudge/internal/registry"
)

// Store owns the persisted configuration document for one process. Mutations
// validate before persisting, keep the in-memory state authoritative, and
// reload the attached engine when one is present. Last writer wins across
// processes; configuration changes are user-driven and idempotent.
type Store struct {
	mu        sync.Mutex
	path      string
	reg       registry.Registry
	persisted config.Document
	cfg       config.Config
	eng       *engine.Engine
	logger    *slog.Logger
}

// NewStore builds a store from a loaded configuration.
func NewStore(loaded config.Loaded, reg registry.Registry, logger *slog.Logger) *Store {
	return &Store{
		path:      loaded.Path,
		reg:       reg,
		persisted: loaded.Persisted,
		cfg:       loaded.Config,
		logger:    logger,
	}
}

// AttachEngine registers the engine that reloads on every config change.
func (s *Store) AttachEngine(eng *engine.Engine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eng = eng
}

// Config returns the current runtime configuration.
func (s *Store) Config() config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// EnabledApps returns the effective monitored-app pattern set.
func (s *Store) EnabledApps() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return config.EnabledApps(s.cfg, s.reg)
}

// Document returns the effective settings document (defaults merged with the
// persisted overrides).
func (s *Store) Document() config.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return config.Merge(config.DefaultDocument(s.reg), s.persisted)
}

// Categories returns the registry categories for API consumers.
func (s *Store) Categories() []registry.Category {
	return s.reg.Categories()
}

// Status reports the attached engine's snapshot, or a config-derived stub
// when no engine is running in this process.
func (s *Store) Status() engine.Status {
	s.mu.Lock()
	eng, cfg, reg := s.eng, s.cfg, s.reg
	s.mu.Unlock()

	if eng != nil {
		return eng.Status()
	}
	return engine.Status{
		Threshold:         cfg.Threshold,
		MonitoredAppCount: len(config.EnabledApps(cfg, reg)),
	}
}

// Update applies a mutation to the persisted document, validates, persists,
// and reloads the engine. On persistence failure the in-memory state still
// advances: memory is the source of truth for the rest of the process.
func (s *Store) Update(mutate func(config.Document) (config.Document, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := mutate(config.Merge(config.Document{}, s.persisted))
	if err != nil {
		return err
	}

	cfg, err := config.Resolve(updated, s.reg)
	if err != nil {
		return fmt.Errorf("resolve updated config: %w", err)
	}

	if err := config.Save(s.path, updated, s.reg); err != nil {
		if _, invalid := err.(*config.ValidationError); invalid {
			return err
		}
		// I/O failure: report it but keep the new state in memory.
		s.persisted = updated
		s.cfg = cfg
		s.reloadEngineLocked()
		return err
	}

	s.persisted = updated
	s.cfg = cfg
	s.reloadEngineLocked()
	return nil
}

// ApplyPatch applies a partial JSON settings document from the HTTP API.
func (s *Store) ApplyPatch(patch []byte) error {
	return s.Update(func(doc config.Document) (config.Document, error) {
		return config.PatchDocument(doc, patch)
	})
}

// ReloadFromDisk re-reads the persisted file, picking up external edits.
// Used by the file watcher and the IPC reload command.
func (s *Store) ReloadFromDisk() error {
	loaded, err := config.Load(s.path, s.reg)
	if err != nil {
		return err
	}
	for _, w := range loaded.Warnings {
		if s.logger != nil {
			s.logger.Warn("config reload warning", "message", w.Message)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.persisted = loaded.Persisted
	s.cfg = loaded.Config
	s.reloadEngineLocked()
	return nil
}

func (s *Store) reloadEngineLocked() {
	if s.eng == nil {
		return
	}
	s.eng.Reload(s.cfg, config.EnabledApps(s.cfg, s.reg))
}
