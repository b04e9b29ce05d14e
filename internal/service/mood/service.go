package mood

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/zhouzirui/unlonely/backend/internal/model/mood"
	"github.com/zhouzirui/unlonely/backend/internal/storage"
)

// ErrUnavailable surfaces only when remote persistence is required.
var ErrUnavailable = errors.New("Mood storage is temporarily unavailable")

// Config controls the fallback policy.
type Config struct {
	// RequireRemote turns every database failure into ErrUnavailable instead of
	// asking the client to persist locally.
	RequireRemote bool
	// Timeout bounds the availability probe and each query separately.
	Timeout time.Duration
}

// ListResult is the GET /api/mood body.
type ListResult struct {
	UseClientStorage bool         `json:"useClientStorage"`
	Entries          []mood.Entry `json:"entries"`
}

// CreateResult is the POST /api/mood body. Entry is nil when the write failed
// after the database was found reachable.
type CreateResult struct {
	UseClientStorage bool        `json:"useClientStorage"`
	Entry            *mood.Entry `json:"entry"`
}

// Service runs the per-request availability protocol over a storage backend.
type Service struct {
	backend       storage.Backend
	requireRemote bool
	timeout       time.Duration
	clock         *clock
	logger        *log.Logger
}

// NewService wires the mood store.
func NewService(backend storage.Backend, cfg Config, logger *log.Logger) *Service {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		backend:       backend,
		requireRemote: cfg.RequireRemote,
		timeout:       timeout,
		clock:         newClock(time.Now),
		logger:        logger.WithPrefix("mood"),
	}
}

// Available probes the backend.
func (s *Service) Available(ctx context.Context) bool {
	return s.probe(ctx) == nil
}

// List returns all entries newest first, or a fallback-flagged empty result.
func (s *Service) List(ctx context.Context) (*ListResult, error) {
	if err := s.probe(ctx); err != nil {
		return s.listFallback("probe", err)
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	entries, err := s.backend.List(queryCtx)
	if err != nil {
		return s.listFallback("list", err)
	}
	return &ListResult{UseClientStorage: false, Entries: entries}, nil
}

// Create validates the mood before touching the backend, then persists it or
// tells the caller to keep it locally.
func (s *Service) Create(ctx context.Context, rawMood string, note *string) (*CreateResult, error) {
	m, err := mood.Parse(rawMood)
	if err != nil {
		return nil, err
	}
	note = mood.NormalizeNote(note)
	now := s.clock.Now()

	if err := s.probe(ctx); err != nil {
		if s.requireRemote {
			return nil, s.unavailable("probe", err)
		}
		s.logger.Warn("database unavailable, asking client to persist", "err", err)
		placeholder := mood.NewClientEntry(m, note, now)
		return &CreateResult{UseClientStorage: true, Entry: &placeholder}, nil
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	entry, err := s.backend.Create(queryCtx, m, note, now)
	if err != nil {
		if s.requireRemote {
			return nil, s.unavailable("create", err)
		}
		s.logger.Error("failed to create mood entry, asking client to persist", "err", err)
		return &CreateResult{UseClientStorage: true, Entry: nil}, nil
	}
	return &CreateResult{UseClientStorage: false, Entry: &entry}, nil
}

func (s *Service) probe(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.backend.Ping(probeCtx)
}

func (s *Service) listFallback(op string, err error) (*ListResult, error) {
	if s.requireRemote {
		return nil, s.unavailable(op, err)
	}
	s.logger.Warn("database unavailable, asking client to read local entries", "op", op, "err", err)
	return &ListResult{UseClientStorage: true, Entries: []mood.Entry{}}, nil
}

func (s *Service) unavailable(op string, err error) error {
	s.logger.Error("mood persistence failed", "op", op, "err", err)
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}

// clock hands out strictly increasing timestamps within the process, so entries
// created back to back keep their submission order.
type clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func newClock(now func() time.Time) *clock {
	return &clock{now: now}
}

func (c *clock) Now() time.Time {
	t := c.now().UTC().Truncate(time.Microsecond)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}
