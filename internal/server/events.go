package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/literatipub/typeset/internal/jobs"
)

// handleEvents streams a job's stage events over a websocket. Buffered
// events are replayed first; the socket closes after the terminal event.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if _, err := s.runner.Get(jobID); err != nil {
		s.writeError(w, r, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "job_id", jobID, "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	bus := s.runner.Bus()
	replay, events, cancel := bus.Subscribe(jobID)
	defer cancel()
	s.logger.Debug("event stream opened", "job_id", jobID, "subscribers", bus.Subscribers(jobID))

	stream := &eventStream{conn: conn}
	for _, ev := range replay {
		if done, err := stream.send(ev); done || err != nil {
			return
		}
	}

	// A job whose events aged out of the buffer still ends the stream.
	if stream.lastSeq == 0 {
		if job, err := s.runner.Get(jobID); err == nil && job.Status.Terminal() {
			_, _ = stream.send(terminalEvent(job))
			return
		}
	}

	// Drain client frames so close and pong messages are processed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.logger.Debug("websocket read error", "job_id", jobID, "error", err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(s.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			if done, err := stream.send(ev); done || err != nil {
				return
			}
		case <-ticker.C:
			// Catch up on anything dropped while this subscriber lagged.
			for _, ev := range bus.Since(jobID, stream.lastSeq) {
				if done, err := stream.send(ev); done || err != nil {
					return
				}
			}
			if _, err := s.runner.Get(jobID); errors.Is(err, jobs.ErrJobNotFound) {
				stream.close("job deleted")
				return
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// eventStream writes events in sequence order and never repeats one.
type eventStream struct {
	conn    *websocket.Conn
	lastSeq int64
}

// send writes ev unless already sent. done reports that ev was terminal and
// the socket has been closed.
func (e *eventStream) send(ev jobs.Event) (done bool, err error) {
	if ev.Seq != 0 && ev.Seq <= e.lastSeq {
		return false, nil
	}
	if err := e.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return false, err
	}
	if err := e.conn.WriteJSON(ev); err != nil {
		return false, err
	}
	if ev.Seq > e.lastSeq {
		e.lastSeq = ev.Seq
	}
	if ev.Type.Terminal() {
		e.close("job " + string(ev.Status))
		return true, nil
	}
	return false, nil
}

func (e *eventStream) close(reason string) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	_ = e.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

// terminalEvent rebuilds the final event from a finished job record.
func terminalEvent(job jobs.PrintJob) jobs.Event {
	ev := jobs.Event{
		JobID:  job.ID,
		Type:   jobs.EventTypeCompleted,
		Stage:  job.Stage,
		Status: job.Status,
		PDFURL: job.PDFURL,
		Error:  job.Error,
	}
	if job.Status == jobs.StatusFailed {
		ev.Type = jobs.EventTypeFailed
	}
	if job.CompletedAt != nil {
		ev.Timestamp = *job.CompletedAt
	}
	return ev
}
