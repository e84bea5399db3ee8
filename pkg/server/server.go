// Package server exposes the HTTP API consumed by the dashboard:
// recorded readings by window, live device status, node health, and a
// websocket feed of fresh readings.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inactivist/aqimon/pkg/logging"
	"github.com/inactivist/aqimon/pkg/model"
	"github.com/inactivist/aqimon/pkg/store"
)

// StatusSource reports the reader's current device status.
type StatusSource interface {
	Status() model.DeviceStatus
}

// Server wires the reading store and the reader status into the HTTP
// API.
type Server struct {
	store  *store.Store
	status StatusSource
	hub    *hub
	log    *logging.Logger
	start  time.Time
}

// New builds a Server and subscribes its live feed to store appends.
func New(st *store.Store, status StatusSource, log *logging.Logger) *Server {
	s := &Server{
		store:  st,
		status: status,
		hub:    newHub(),
		log:    log,
		start:  time.Now(),
	}
	st.OnAppend(s.hub.broadcast)
	return s
}

// Routes returns a gin engine with every API route attached.
func (s *Server) Routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	api := engine.Group("/api")
	{
		api.GET("/sensor_data", s.handleSensorData)
		api.GET("/status", s.handleStatus)
		api.GET("/healthz", s.handleHealthz)
		api.GET("/live", s.handleLive)
	}
	return engine
}

func (s *Server) handleSensorData(c *gin.Context) {
	w, err := model.ParseWindow(c.DefaultQuery("window", "all"))
	if err != nil {
		s.abortJSON(c, http.StatusBadRequest, err)
		return
	}
	series, err := s.store.Window(c.Request.Context(), w, time.Now().UTC())
	if err != nil {
		s.abortJSON(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.status.Status().Wire())
}

// abortJSON logs the failure and ends the request with a JSON error
// body.
func (s *Server) abortJSON(c *gin.Context, code int, err error) {
	s.log.Errorw("request failed",
		"path", c.Request.URL.Path, "status", code, "error", err)
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}
