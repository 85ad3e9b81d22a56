// Package web serves the animation to browsers. Frames are pushed over a
// websocket and swapped into the page as they arrive.
package web

import (
	"context"
	_ "embed"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/art2ascii/artview/pkg/log"
)

//go:embed index.html
var indexPage []byte

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StatusFunc reports the value served at /status.
type StatusFunc func() any

// Server is an HTTP display sink.
type Server struct {
	hub    *Hub
	router *gin.Engine
	logger log.Logger

	mu     sync.Mutex
	srv    *http.Server
	closed bool
}

// NewServer builds the router. status may be nil.
func NewServer(status StatusFunc, logger log.Logger) *Server {
	logger = log.OrNoop(logger)
	s := &Server{
		hub:    NewHub(logger),
		logger: logger,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
	})
	router.GET("/ws", s.handleWebSocket)
	router.GET("/status", func(c *gin.Context) {
		if status == nil {
			c.JSON(http.StatusOK, gin.H{})
			return
		}
		c.JSON(http.StatusOK, status())
	})

	s.router = router
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Render implements ports.DisplaySink.
func (s *Server) Render(markup string) error {
	return s.hub.Render(markup)
}

// Serve accepts connections on l until Close is called.
func (s *Server) Serve(l net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = l.Close()
		return nil
	}
	s.srv = srv
	s.mu.Unlock()
	s.logger.Info("web display listening", log.String("addr", "http://"+l.Addr().String()))

	err := srv.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close disconnects clients and shuts the HTTP server down.
func (s *Server) Close(ctx context.Context) error {
	s.hub.Close()

	s.mu.Lock()
	s.closed = true
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", log.Err(err))
		return
	}
	s.hub.serve(conn)
}
