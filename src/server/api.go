package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"biometric-insights/src/helpers"
	"biometric-insights/src/interfaces"
	"biometric-insights/src/logger"
	"biometric-insights/src/models"
	"biometric-insights/src/report"

	"github.com/gin-gonic/gin"
)

// InsufficientDataMessage is the error body of a refresh without base data.
const InsufficientDataMessage = "Insufficient data for analysis."

const refreshTimeout = 2 * time.Minute

// -----------------------------------------------------------------------------
// ReportServer
// -----------------------------------------------------------------------------

type ReportServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	Runner interfaces.IReportRunner
	engine *gin.Engine
	http   *http.Server

	// WebSocket clients, owned by the hub loop
	clients    map[*Client]struct{}
	clientsMu  sync.RWMutex
	broadcast  chan *models.MReportEvent
	register   chan *Client
	unregister chan *Client
	subscribe  chan *Client
	quit       chan struct{}
	stopOnce   sync.Once

	// Latest report
	latest     *models.MReport
	timeline   *models.MTimeline
	stateMutex sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewReportServer(cfg *models.MConfig, runner interfaces.IReportRunner, log *logger.Logger) *ReportServer {
	if log == nil {
		log = logger.NewLogger(cfg, "ReportServer")
	}
	if !strings.EqualFold(cfg.LogLevel, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &ReportServer{
		Config:  cfg,
		Logger:  log,
		Runner:  runner,
		engine:  gin.New(),
		clients: make(map[*Client]struct{}),
		// Buffered so Publish never waits on the hub
		broadcast:  make(chan *models.MReportEvent, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan *Client),
		quit:       make(chan struct{}),
	}

	s.engine.Use(gin.Recovery(), s.requestLogger())

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	s.http = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: s.engine,
	}
	return s
}

func (s *ReportServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *ReportServer) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.getHealth)
	api.GET("/report", s.getReport)
	api.GET("/report/text", s.getReportText)
	api.GET("/timeline", s.getTimeline)
	api.POST("/report/refresh", s.postRefresh)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// Handler exposes the router, mainly for tests.
func (s *ReportServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start runs the hub and blocks serving HTTP until Stop.
func (s *ReportServer) Start() error {
	s.Logger.Info("Starting server on %s", s.http.Addr)

	go s.handleWebsockets()

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *ReportServer) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.quit)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = s.http.Shutdown(ctx)
	})
	return err
}

// -----------------------------------------------------------------------------
// State
// -----------------------------------------------------------------------------

// Publish replaces the served report and queues it for subscribers.
func (s *ReportServer) Publish(r *models.MReport, timeline *models.MTimeline) {
	if r == nil {
		return
	}
	s.stateMutex.Lock()
	s.latest = r
	s.timeline = timeline
	s.stateMutex.Unlock()

	event := &models.MReportEvent{
		Type:      models.EventUpdate,
		Report:    r,
		Timeline:  timeline,
		Timestamp: r.GeneratedAt.Unix(),
	}
	select {
	case s.broadcast <- event:
	case <-s.quit:
	}
}

func (s *ReportServer) snapshot() (*models.MReport, *models.MTimeline) {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()
	return s.latest, s.timeline
}

// -----------------------------------------------------------------------------

// Refresh runs the pipeline and publishes the result.
func (s *ReportServer) Refresh(ctx context.Context) (*models.MReport, error) {
	if s.Runner == nil {
		return nil, fmt.Errorf("no report runner configured")
	}
	r, timeline, err := s.Runner.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	s.Publish(r, timeline)
	return r, nil
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *ReportServer) getHealth(c *gin.Context) {
	s.clientsMu.RLock()
	connections := len(s.clients)
	s.clientsMu.RUnlock()

	latest, _ := s.snapshot()
	var reportID string
	var generatedAt int64
	if latest != nil {
		reportID = latest.ID
		generatedAt = latest.GeneratedAt.Unix()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"connections":   connections,
		"latest_report": reportID,
		"latest_update": generatedAt,
	})
}

// -----------------------------------------------------------------------------

func (s *ReportServer) getReport(c *gin.Context) {
	latest, _ := s.snapshot()
	if latest == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no report generated yet"})
		return
	}
	c.JSON(http.StatusOK, latest)
}

func (s *ReportServer) getReportText(c *gin.Context) {
	latest, _ := s.snapshot()
	if latest == nil {
		c.String(http.StatusNotFound, report.NoDataMessage)
		return
	}
	c.String(http.StatusOK, latest.Text)
}

// -----------------------------------------------------------------------------

// getTimeline serves the merged timeline as JSON, or as a csv / xlsx
// download with ?format=.
func (s *ReportServer) getTimeline(c *gin.Context) {
	_, timeline := s.snapshot()
	if timeline == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no timeline available"})
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "json":
		c.JSON(http.StatusOK, timeline)
	case "csv":
		c.Header("Content-Disposition", `attachment; filename="timeline.csv"`)
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Status(http.StatusOK)
		if err := report.WriteTimelineCSV(c.Writer, timeline); err != nil {
			s.Logger.Error("Failed to write timeline csv: %v", err)
		}
	case "xlsx":
		data, err := report.TimelineXLSX(timeline)
		if err != nil {
			s.Logger.Error("Failed to build timeline workbook: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build workbook"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="timeline.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be json, csv or xlsx"})
	}
}

// -----------------------------------------------------------------------------

func (s *ReportServer) postRefresh(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), refreshTimeout)
	defer cancel()

	r, err := s.Refresh(ctx)
	if err != nil {
		if errors.Is(err, helpers.ErrInsufficientData) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": InsufficientDataMessage})
			return
		}
		s.Logger.Error("Report refresh failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, r)
}
