package api

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/gcbaptista/go-article-discovery/internal/controller"
	"github.com/gcbaptista/go-article-discovery/model"
	"github.com/gcbaptista/go-article-discovery/services"
)

// Client event types accepted on a session socket.
const (
	EventSetSearch    = "set_search"
	EventToggleTag    = "toggle_tag"
	EventSetSort      = "set_sort"
	EventRemoveFilter = "remove_filter"
	EventClearAll     = "clear_all"
	EventURLChanged   = "url_changed"
)

// Server message types sent on a session socket.
const (
	MessageView     = "view"
	MessageNavigate = "navigate"
	MessageError    = "error"
)

const (
	sessionWriteWait      = 10 * time.Second
	sessionMaxMessageSize = 4096
)

// SessionEvent is a frame sent by the client.
type SessionEvent struct {
	Type   string        `json:"type"`
	Value  string        `json:"value,omitempty"`   // Search input, tag or raw query depending on Type
	SortBy string        `json:"sort_by,omitempty"` // set_sort only
	Order  string        `json:"order,omitempty"`   // set_sort only
	Filter *model.Filter `json:"filter,omitempty"`  // remove_filter only
}

// SessionMessage is a frame sent to the client.
type SessionMessage struct {
	Type           string      `json:"type"`
	SessionID      string      `json:"session_id,omitempty"`
	View           *model.View `json:"view,omitempty"`
	URL            string      `json:"url,omitempty"`
	PreserveScroll bool        `json:"preserve_scroll,omitempty"`
	Error          *APIError   `json:"error,omitempty"`
}

// outbox queues messages for the socket writer without blocking. The
// controller calls back while holding its lock, so pushes must never wait
// on the network.
type outbox struct {
	mu     sync.Mutex
	queue  []SessionMessage
	closed bool
	signal chan struct{}
}

func newOutbox() *outbox {
	return &outbox{signal: make(chan struct{}, 1)}
}

func (o *outbox) push(msg SessionMessage) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.queue = append(o.queue, msg)
	o.mu.Unlock()

	select {
	case o.signal <- struct{}{}:
	default:
	}
}

func (o *outbox) drain() []SessionMessage {
	o.mu.Lock()
	defer o.mu.Unlock()
	queued := o.queue
	o.queue = nil
	return queued
}

func (o *outbox) close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
}

// SessionHandler upgrades the request to a websocket and runs one
// interactive article list over it. The request query string seeds the
// initial filter state.
func (api *API) SessionHandler(c *gin.Context) {
	conn, err := api.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response
		api.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(sessionMaxMessageSize)

	sessionID := uuid.New().String()
	logger := api.logger.With(zap.String("session_id", sessionID))

	out := newOutbox()
	navigator := services.NavigatorFunc(func(url string, opts model.NavigateOptions) {
		out.push(SessionMessage{Type: MessageNavigate, URL: url, PreserveScroll: opts.PreserveScroll})
	})
	observer := func(view model.View) {
		out.push(SessionMessage{Type: MessageView, View: &view})
	}

	ctrl := api.engine.NewSession(c.Request.URL.RawQuery, navigator, observer)
	initial := ctrl.View()
	out.push(SessionMessage{Type: MessageView, SessionID: sessionID, View: &initial})

	done := make(chan struct{})
	var writerWG sync.WaitGroup
	writerWG.Add(1)
	go func() {
		defer writerWG.Done()
		api.writeSession(conn, out, done, logger)
	}()

	logger.Info("session opened", zap.String("query", c.Request.URL.RawQuery))
	api.readSession(conn, ctrl, out, logger)

	ctrl.Close()
	out.close()
	close(done)
	writerWG.Wait()
	logger.Info("session closed")
}

// readSession applies client events to the controller until the socket closes.
func (api *API) readSession(conn *websocket.Conn, ctrl *controller.Controller, out *outbox, logger *zap.Logger) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("session read failed", zap.Error(err))
			}
			return
		}

		var event SessionEvent
		if err := json.Unmarshal(data, &event); err != nil {
			out.push(errorMessage(ErrorCodeInvalidJSON, "Invalid event: "+err.Error()))
			continue
		}
		if result := ValidateSessionEvent(&event); result.HasErrors() {
			out.push(errorMessage(ErrorCodeInvalidEvent, "Event validation failed", validationDetails(result)...))
			continue
		}

		applySessionEvent(ctrl, &event)
	}
}

// writeSession sends queued messages until done is closed or a write fails.
func (api *API) writeSession(conn *websocket.Conn, out *outbox, done <-chan struct{}, logger *zap.Logger) {
	for {
		select {
		case <-done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(sessionWriteWait))
			return
		case <-out.signal:
			for _, msg := range out.drain() {
				_ = conn.SetWriteDeadline(time.Now().Add(sessionWriteWait))
				if err := conn.WriteJSON(msg); err != nil {
					logger.Warn("session write failed", zap.Error(err))
					// Unblocks the reader
					_ = conn.Close()
					return
				}
			}
		}
	}
}

func applySessionEvent(ctrl *controller.Controller, event *SessionEvent) {
	switch event.Type {
	case EventSetSearch:
		ctrl.SetSearchQuery(event.Value)
	case EventToggleTag:
		ctrl.ToggleTag(event.Value)
	case EventSetSort:
		ctrl.SetSort(model.SortBy(event.SortBy), model.SortOrder(event.Order))
	case EventRemoveFilter:
		ctrl.RemoveFilter(*event.Filter)
	case EventClearAll:
		ctrl.ClearAll()
	case EventURLChanged:
		ctrl.URLChanged(event.Value)
	}
}

func errorMessage(code ErrorCode, message string, details ...ErrorDetail) SessionMessage {
	return SessionMessage{Type: MessageError, Error: APIErrorResponse(code, message, details...)}
}
