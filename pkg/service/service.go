// Package service wires the engine connection, collectors, reconciliation,
// and importers into the operations the CLI exposes.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bi-tools/appcopy/pkg/collect"
	"github.com/bi-tools/appcopy/pkg/engine"
	"github.com/bi-tools/appcopy/pkg/extmeta"
	"github.com/bi-tools/appcopy/pkg/search"
)

// Config holds service configuration.
type Config struct {
	// EngineURL is the engine's websocket endpoint.
	EngineURL string
	// ExtensionsURL is the REST endpoint serving extension metadata.
	ExtensionsURL string
	// SettleDelay is applied after every document open; see engine.Cache.
	SettleDelay time.Duration
	// IndexPath is the sqlite search index location (":memory:" by default).
	IndexPath string
	// Collect tunes how much detail collectors resolve.
	Collect collect.Options
}

// DialFunc establishes the engine connection. The service dials lazily on
// first use so commands that never touch the engine stay offline.
type DialFunc func(ctx context.Context) (engine.Global, error)

// Service owns the long-lived state: one connection cache and one extension
// metadata resolver, both instance-scoped so tests can build isolated
// services.
type Service struct {
	Log *logrus.Logger

	cfg  *Config
	dial DialFunc

	mu      sync.Mutex
	global  engine.Global
	cache   *engine.Cache
	meta    *extmeta.Resolver
	dialErr error
}

// New builds a service that dials the engine on first use.
func New(cfg *Config, dial DialFunc, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	if cfg.IndexPath == "" {
		cfg.IndexPath = ":memory:"
	}
	return &Service{Log: log, cfg: cfg, dial: dial}
}

// NewWithGlobal builds a service over an already-connected engine root.
func NewWithGlobal(cfg *Config, global engine.Global, log *logrus.Logger) (*Service, error) {
	s := New(cfg, func(ctx context.Context) (engine.Global, error) { return global, nil }, log)
	if _, err := s.Global(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// Global returns the engine root, dialing once on first use. A failed dial
// is remembered and returned to subsequent callers.
func (s *Service) Global(ctx context.Context) (engine.Global, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.global != nil {
		return s.global, nil
	}
	if s.dialErr != nil {
		return nil, s.dialErr
	}

	global, err := s.dial(ctx)
	if err != nil {
		s.dialErr = fmt.Errorf("connect to engine: %w", err)
		return nil, s.dialErr
	}
	s.global = global
	s.cache = engine.NewCache(global, s.cfg.SettleDelay)

	desktop, err := global.IsDesktopMode(ctx)
	if err != nil {
		s.Log.WithError(err).Warn("engine mode probe failed, assuming server mode")
		desktop = false
	}
	s.meta = extmeta.NewResolver(extmeta.NewHTTPSource(s.cfg.ExtensionsURL), desktop)

	return s.global, nil
}

// Cache exposes the connection cache for callers that open documents
// directly (doctor, diff).
func (s *Service) Cache(ctx context.Context) (*engine.Cache, error) {
	if _, err := s.Global(ctx); err != nil {
		return nil, err
	}
	return s.cache, nil
}

func (s *Service) resolver(ctx context.Context) (*extmeta.Resolver, error) {
	if _, err := s.Global(ctx); err != nil {
		return nil, err
	}
	return s.meta, nil
}

func (s *Service) openIndex() (*search.Index, error) {
	idx, err := search.NewIndex(s.cfg.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("open search index: %w", err)
	}
	return idx, nil
}
