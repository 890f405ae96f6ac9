package server

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/panzoom/pkg/config"
	"github.com/matzehuels/panzoom/pkg/errors"
	"github.com/matzehuels/panzoom/pkg/render"
	"github.com/matzehuels/panzoom/pkg/scale"
	"github.com/matzehuels/panzoom/pkg/script"
	"github.com/matzehuels/panzoom/pkg/session"
	"github.com/matzehuels/panzoom/pkg/viewport"
)

// Created is the response to a new session.
type Created struct {
	ID    string            `json:"id"`
	State viewport.Snapshot `json:"state"`
}

// Update is the response to every request that may change a viewport.
type Update struct {
	Notifications []script.Notification `json:"notifications"`
	Points        []viewport.DataPoint  `json:"points,omitempty"`
	State         viewport.Snapshot     `json:"state"`
	// SVG is only sent over the websocket.
	SVG string `json:"svg,omitempty"`
}

type resizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type domainsRequest struct {
	XDomain scale.Domain `json:"x_domain"`
	YDomain scale.Domain `json:"y_domain"`
}

type zoomRequest struct {
	Axis   string       `json:"axis"`
	Domain scale.Domain `json:"domain"`
}

type translateRequest struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Kind string  `json:"kind,omitempty"`
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read chart"))
		return
	}
	chart, err := config.Parse(data, config.FormatJSON)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := session.New(chart, s.ttl, s.logger)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Set(r.Context(), sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("created viewport", "id", sess.ID, "title", chart.Title, "series", len(chart.Series))
	writeJSON(w, http.StatusCreated, Created{ID: sess.ID, State: sess.Snapshot()})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.lookup(w, r); !ok {
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

var contentTypes = map[string]string{
	render.FormatSVG:  "image/svg+xml",
	render.FormatPNG:  "image/png",
	render.FormatText: "text/plain; charset=utf-8",
	render.FormatJSON: "application/json",
	render.FormatPDF:  "application/pdf",
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, render.FormatSVG)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, chi.URLParam(r, "format"))
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, format string) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	data, err := sess.Render(format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// apply runs fn on the session's viewport and writes the resulting update.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, sess *session.Session, fn func(v *viewport.Viewport) ([]viewport.DataPoint, error)) {
	var points []viewport.DataPoint
	notes, err := sess.Do(func(v *viewport.Viewport) error {
		var err error
		points, err = fn(v)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if notes == nil {
		notes = []script.Notification{}
	}
	writeJSON(w, http.StatusOK, Update{Notifications: notes, Points: points, State: sess.Snapshot()})
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req resizeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := config.ValidateSize(req.Width, req.Height); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.apply(w, r, sess, func(v *viewport.Viewport) ([]viewport.DataPoint, error) {
		return nil, v.Resize(req.Width, req.Height)
	})
}

func (s *Server) handleDomains(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req domainsRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.apply(w, r, sess, func(v *viewport.Viewport) ([]viewport.DataPoint, error) {
		return nil, v.SetDomains(req.XDomain, req.YDomain)
	})
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req zoomRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.apply(w, r, sess, func(v *viewport.Viewport) ([]viewport.DataPoint, error) {
		return nil, zoom(v, req.Axis, &req.Domain)
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.apply(w, r, sess, func(v *viewport.Viewport) ([]viewport.DataPoint, error) {
		return nil, v.Reset()
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var events []Event
	if err := decode(w, r, &events); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.apply(w, r, sess, func(v *viewport.Viewport) ([]viewport.DataPoint, error) {
		var points []viewport.DataPoint
		for i, e := range events {
			p, err := e.Apply(v)
			if err != nil {
				return points, errors.Wrap(errors.GetCode(err), err, "event %d (%s)", i, e.Type)
			}
			if p != nil {
				points = append(points, *p)
			}
		}
		return points, nil
	})
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req translateRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	e := Event{Type: EventHover, X: req.X, Y: req.Y}
	switch req.Kind {
	case "", EventHover:
	case EventClick:
		e.Type = EventClick
	default:
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "unknown kind %q (want hover or click)", req.Kind))
		return
	}
	s.apply(w, r, sess, func(v *viewport.Viewport) ([]viewport.DataPoint, error) {
		p, err := e.Apply(v)
		if err != nil {
			return nil, err
		}
		return []viewport.DataPoint{*p}, nil
	})
}
