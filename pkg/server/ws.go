package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/panzoom/pkg/render"
	"github.com/matzehuels/panzoom/pkg/script"
	"github.com/matzehuels/panzoom/pkg/session"
	"github.com/matzehuels/panzoom/pkg/viewport"
)

const (
	wsReadLimit    = 64 << 10
	wsReadTimeout  = 5 * time.Minute
	wsWriteTimeout = 10 * time.Second
)

// wsReply is one websocket message from the server: either an update or
// an error for the event that caused it.
type wsReply struct {
	*Update
	Error *apiError `json:"error,omitempty"`
}

// handleWS streams events in and updates out. Every event is answered with
// exactly one message carrying its notifications and the redrawn SVG.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "id", sess.ID, "err", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})
	s.logger.Debug("websocket open", "id", sess.ID)

	for {
		var e Event
		if err := conn.ReadJSON(&e); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket closed", "id", sess.ID, "err", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		reply := s.handleEvent(sess, e)
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(reply); err != nil {
			s.logger.Debug("websocket write failed", "id", sess.ID, "err", err)
			return
		}
	}
}

func (s *Server) handleEvent(sess *session.Session, e Event) wsReply {
	var point *viewport.DataPoint
	notes, err := sess.Do(func(v *viewport.Viewport) error {
		var err error
		point, err = e.Apply(v)
		return err
	})
	if err != nil {
		return wsReply{Error: newAPIError(err)}
	}

	u := &Update{Notifications: notes, State: sess.Snapshot()}
	if u.Notifications == nil {
		u.Notifications = []script.Notification{}
	}
	if point != nil {
		u.Points = []viewport.DataPoint{*point}
	}
	if doc, err := sess.Render(render.FormatSVG); err == nil {
		u.SVG = string(doc)
	}
	return wsReply{Update: u}
}
