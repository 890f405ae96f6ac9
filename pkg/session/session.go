// Package session keeps live viewports for the HTTP server.
//
// A session owns one viewport built from a chart, the surface set it
// renders to, and a recorder that collects the domain-change notifications
// each operation produces. Viewports are not safe for concurrent use, so
// every operation on a session goes through [Session.Do], which serializes
// access.
//
// # Usage
//
//	sess, err := session.New(chart, session.DefaultTTL, logger)
//	if err != nil {
//	    return err
//	}
//	store.Set(ctx, sess)
//
//	notes, err := sess.Do(func(v *viewport.Viewport) error {
//	    return v.ZoomToX(scale.Domain{Lo: 10, Hi: 20})
//	})
package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/panzoom/pkg/config"
	"github.com/matzehuels/panzoom/pkg/render"
	"github.com/matzehuels/panzoom/pkg/script"
	"github.com/matzehuels/panzoom/pkg/viewport"
)

// Default durations.
const (
	// DefaultTTL is how long an idle session lives.
	DefaultTTL = 30 * time.Minute

	// DefaultCleanupInterval is how often servers sweep expired sessions.
	DefaultCleanupInterval = time.Minute
)

// Session is one live viewport.
type Session struct {
	ID        string
	Chart     *config.Chart
	CreatedAt time.Time

	mu        sync.Mutex
	ttl       time.Duration
	expiresAt time.Time
	viewport  *viewport.Viewport
	surface   *render.Multi
	recorder  *script.Recorder
}

// New builds a viewport for chart at the chart's size. The session expires
// after ttl without use.
func New(chart *config.Chart, ttl time.Duration, logger *log.Logger) (*Session, error) {
	surf, err := render.NewMulti(render.Style{Title: chart.Title})
	if err != nil {
		return nil, err
	}
	rec := &script.Recorder{}
	v, err := viewport.New(rec.Attach(chart.ViewportConfig(viewport.Config{
		Surface: surf,
		Logger:  logger,
	})))
	if err != nil {
		return nil, err
	}
	if err := v.Resize(chart.Width, chart.Height); err != nil {
		return nil, err
	}
	rec.Take()

	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Chart:     chart,
		CreatedAt: now,
		ttl:       ttl,
		expiresAt: now.Add(ttl),
		viewport:  v,
		surface:   surf,
		recorder:  rec,
	}, nil
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Now().After(s.expiresAt)
}

// ExpiresAt returns the current expiry time.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

// Do runs fn with exclusive access to the viewport, extends the session's
// lifetime and returns the notifications fn caused. They are returned even
// when fn fails part way.
func (s *Session) Do(fn func(v *viewport.Viewport) error) ([]script.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiresAt = time.Now().Add(s.ttl)
	s.recorder.Take()
	err := fn(s.viewport)
	return s.recorder.Take(), err
}

// Snapshot returns the viewport state.
func (s *Session) Snapshot() viewport.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport.Snapshot()
}

// Render serializes the viewport in the given format.
func (s *Session) Render(format string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface.Render(s.viewport, format)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID. It fails with SESSION_NOT_FOUND or
	// SESSION_EXPIRED.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, s *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions and returns how many were removed.
	Cleanup(ctx context.Context) (int, error)
}
