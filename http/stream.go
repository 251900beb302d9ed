package http

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/bobinette/paperlog/endpoints"
	"github.com/bobinette/paperlog/library"
	"github.com/bobinette/paperlog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

type StreamHandler struct {
	endpoint   *endpoints.PaperEndpoint
	controller *library.Controller
	logger     log.Logger
	upgrader   websocket.Upgrader
}

func NewStreamHandler(ep *endpoints.PaperEndpoint, controller *library.Controller, logger log.Logger) *StreamHandler {
	return &StreamHandler{
		endpoint:   ep,
		controller: controller,
		logger:     logger,
	}
}

func (h *StreamHandler) Register(s *GinServer) {
	s.Engine().GET("/api/stream", h.stream)
}

// stream pushes the papers, projected with the filters of the query
// string, every time the library changes.
func (h *StreamHandler) stream(c *gin.Context) {
	req := listPapersRequest(c.Request)

	// Validate before upgrading to answer with a proper status.
	if _, err := h.endpoint.Filter(c.Request.Context(), req); err != nil {
		encodeError(c.Request.Context(), err, c.Writer)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("could not upgrade connection: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// The client sends nothing, but reading is needed to handle the
	// control frames and to notice the connection closing.
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	versions, stop := h.controller.Listen()
	defer stop()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	if err := h.push(ctx, conn, req); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-versions:
			if err := h.push(ctx, conn, req); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *StreamHandler) push(ctx context.Context, conn *websocket.Conn, req endpoints.ListPapersRequest) error {
	res, err := h.endpoint.List(ctx, req)
	if err != nil {
		res = map[string]interface{}{"error": err.Error()}
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(res); err != nil {
		h.logger.Debugf("stream closed: %v", err)
		return err
	}
	return nil
}
