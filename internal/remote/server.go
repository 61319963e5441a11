// ABOUTME: Remote control server for the soundboard
// ABOUTME: Serves a gin HTTP API and a websocket status stream
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/tilegame/soundcore/internal/app"
	"github.com/tilegame/soundcore/internal/protocol"
	"github.com/tilegame/soundcore/internal/version"
	"github.com/tilegame/soundcore/pkg/sound"
)

// Controller is the soundboard driven by remote clients
type Controller interface {
	Sounds() []string
	Play(name string, loop, echo bool) (string, error)
	StopLoops() int
	SetPaused(paused bool)
	Paused() bool
	Stats() sound.Stats
}

// Config holds server configuration
type Config struct {
	Addr           string        // Listen address (default: ":8930")
	StatusInterval time.Duration // Websocket status period (default: 500ms)
	Debug          bool
}

// Server exposes a Controller over HTTP
type Server struct {
	config     Config
	controller Controller
	engine     *gin.Engine
	upgrader   websocket.Upgrader
	httpServer *http.Server

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a remote control server
func New(controller Controller, config Config) *Server {
	if config.Addr == "" {
		config.Addr = ":8930"
	}
	if config.StatusInterval <= 0 {
		config.StatusInterval = 500 * time.Millisecond
	}
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:     config,
		controller: controller,
		engine:     gin.New(),
		upgrader: websocket.Upgrader{
			// Trusted local network only
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		stopChan: make(chan struct{}),
	}
	s.engine.Use(gin.Recovery(), func(c *gin.Context) {
		c.Header("Server", version.UserAgent())
	})
	s.routes()
	return s
}

// Handler returns the HTTP handler, for embedding or tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	s.engine.GET("/sounds", s.handleSounds)
	s.engine.POST("/sounds/:name/play", s.handlePlay)
	s.engine.POST("/stop", s.handleStop)
	s.engine.POST("/pause", s.handlePause(true))
	s.engine.POST("/resume", s.handlePause(false))
	s.engine.GET("/stats", s.handleStats)
	s.engine.GET("/ws", s.handleWebSocket)
}

// Start listens in the background and returns the bound address
func (s *Server) Start() (net.Addr, error) {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}

	s.httpServer = &http.Server{Handler: s.engine}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Remote control server error: %v", err)
		}
	}()

	log.Printf("Remote control listening on %s", ln.Addr())
	return ln.Addr(), nil
}

// Stop shuts the server down, waiting up to 5s for requests to finish
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)

		if s.httpServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.httpServer.Shutdown(ctx); err != nil {
				log.Printf("Remote control shutdown error: %v", err)
			}
		}
		s.wg.Wait()
		log.Printf("Remote control stopped")
	})
}

func (s *Server) status() protocol.Status {
	return protocol.Status{
		Paused: s.controller.Paused(),
		Sounds: s.controller.Sounds(),
		Stats:  s.controller.Stats(),
	}
}

func (s *Server) handleSounds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sounds": s.controller.Sounds()})
}

func (s *Server) handlePlay(c *gin.Context) {
	name := c.Param("name")
	loop := queryFlag(c, "loop")
	echo := queryFlag(c, "echo")

	id, err := s.controller.Play(name, loop, echo)
	if err != nil {
		c.JSON(statusFor(err), protocol.Error{Command: protocol.TypePlay, Message: err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, protocol.Played{Sound: name, Voice: id})
}

func (s *Server) handleStop(c *gin.Context) {
	c.JSON(http.StatusOK, protocol.Stopped{Voices: s.controller.StopLoops()})
}

func (s *Server) handlePause(paused bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.controller.SetPaused(paused)
		c.JSON(http.StatusOK, s.status())
	}
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.status())
}

// handleWebSocket pushes status periodically and executes commands
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("Remote client connected from %s", c.Request.RemoteAddr)

	sendChan := make(chan protocol.Message, 16)
	done := make(chan struct{})
	quit := make(chan struct{})
	defer close(quit)

	go s.readCommands(conn, sendChan, done, quit)

	ticker := time.NewTicker(s.config.StatusInterval)
	defer ticker.Stop()

	send := func(msg protocol.Message) bool {
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("Remote client write error: %v", err)
			return false
		}
		return true
	}

	if !send(protocol.Message{Type: protocol.TypeStatus, Payload: s.status()}) {
		return
	}

	for {
		select {
		case <-ticker.C:
			if !send(protocol.Message{Type: protocol.TypeStatus, Payload: s.status()}) {
				return
			}
		case msg := <-sendChan:
			if !send(msg) {
				return
			}
		case <-done:
			log.Printf("Remote client %s disconnected", c.Request.RemoteAddr)
			return
		case <-s.stopChan:
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping"))
			return
		}
	}
}

// readCommands handles client commands until the connection closes
func (s *Server) readCommands(conn *websocket.Conn, sendChan chan<- protocol.Message, done, quit chan struct{}) {
	defer close(done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var reply protocol.Message
		var cmd protocol.Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			reply = errorMessage("", fmt.Errorf("invalid command: %w", err))
		} else {
			if s.config.Debug {
				log.Printf("[DEBUG] Remote command: %+v", cmd)
			}
			reply = s.execute(cmd)
		}

		select {
		case sendChan <- reply:
		case <-quit:
			return
		}
	}
}

func (s *Server) execute(cmd protocol.Command) protocol.Message {
	switch cmd.Type {
	case protocol.TypePlay:
		id, err := s.controller.Play(cmd.Sound, cmd.Loop, cmd.Echo)
		if err != nil {
			return errorMessage(cmd.Type, err)
		}
		return protocol.Message{Type: protocol.TypePlayed, Payload: protocol.Played{Sound: cmd.Sound, Voice: id}}
	case protocol.TypeStop:
		return protocol.Message{Type: protocol.TypeStop, Payload: protocol.Stopped{Voices: s.controller.StopLoops()}}
	case protocol.TypePause:
		s.controller.SetPaused(true)
		return protocol.Message{Type: protocol.TypeStatus, Payload: s.status()}
	case protocol.TypeResume:
		s.controller.SetPaused(false)
		return protocol.Message{Type: protocol.TypeStatus, Payload: s.status()}
	default:
		return errorMessage(cmd.Type, fmt.Errorf("unknown command %q", cmd.Type))
	}
}

func errorMessage(command string, err error) protocol.Message {
	return protocol.Message{Type: protocol.TypeError, Payload: protocol.Error{Command: command, Message: err.Error()}}
}

// statusFor maps playback errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, app.ErrUnknownSound):
		return http.StatusNotFound
	case errors.Is(err, sound.ErrQueueSaturated):
		return http.StatusTooManyRequests
	case errors.Is(err, sound.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, sound.ErrUnplayable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func queryFlag(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(c.DefaultQuery(key, "false"))
	return err == nil && v
}
