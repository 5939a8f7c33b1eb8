package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guiyumin/vthumb/internal/config"
	"github.com/guiyumin/vthumb/internal/downloader"
	"github.com/guiyumin/vthumb/internal/extractor"
	"github.com/guiyumin/vthumb/internal/session"
	"github.com/guiyumin/vthumb/internal/thumbnail"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// Server is the local HTTP front end over the extraction pipeline
type Server struct {
	port       int
	prober     *thumbnail.Prober
	downloader *downloader.Downloader
	history    *HistoryDB
	logger     *zap.Logger
	engine     *gin.Engine
}

// Options wires the server's collaborators. History may be nil.
type Options struct {
	Port       int
	Prober     *thumbnail.Prober
	Downloader *downloader.Downloader
	History    *HistoryDB
	Logger     *zap.Logger
}

// NewFromConfig builds Options from the user's config
func NewFromConfig(cfg *config.Config, history *HistoryDB, logger *zap.Logger) Options {
	return Options{
		Port: cfg.Server.Port,
		Prober: thumbnail.NewProber(thumbnail.ProberOptions{
			Timeout:   cfg.ProbeTimeout,
			UserAgent: cfg.UserAgent,
			Proxy:     cfg.Proxy,
			Detector:  thumbnail.Detector{PlaceholderWidth: cfg.PlaceholderWidth},
		}),
		Downloader: downloader.New(downloader.Options{
			Timeout:   cfg.ProbeTimeout,
			UserAgent: cfg.UserAgent,
			Proxy:     cfg.Proxy,
			Lang:      cfg.Language,
		}),
		History: history,
		Logger:  logger,
	}
}

// New creates a server and registers its routes
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	prober := opts.Prober
	if prober == nil {
		prober = thumbnail.NewProber(thumbnail.ProberOptions{})
	}
	dl := opts.Downloader
	if dl == nil {
		dl = downloader.New(downloader.Options{})
	}
	port := opts.Port
	if port <= 0 {
		port = config.DefaultServerPort
	}

	s := &Server{
		port:       port,
		prober:     prober,
		downloader: dl,
		history:    opts.History,
		logger:     logger,
	}

	r := gin.New()
	r.Use(requestLogger(logger), gin.Recovery())

	r.GET("/healthz", s.handleHealth)

	api := r.Group("/api")
	api.GET("/thumbnails", s.handleThumbnails)
	api.GET("/thumbnails/:id/:res", s.handleThumbnailImage)
	api.GET("/history", s.handleHistory)
	api.DELETE("/history", s.handleClearHistory)
	api.DELETE("/history/:id", s.handleDeleteHistory)

	s.engine = r
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type thumbnailsResponse struct {
	VideoID    extractor.VideoID     `json:"video_id"`
	Thumbnails []thumbnail.Candidate `json:"thumbnails"`
	Invalid    []string              `json:"invalid"`
}

func (s *Server) handleThumbnails(c *gin.Context) {
	input := c.Query("url")
	probe := c.DefaultQuery("probe", "true") != "false"

	st, err := session.New(extractor.Extractor{AllowBareID: true}).Submit(input)
	if errors.Is(err, session.ErrInputRequired) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "input required"})
		return
	}
	if err != nil {
		s.recordHistory(input, "", "not_found", 0, nil)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid url"})
		return
	}

	if probe {
		gen := st.Generation()
		for o := range s.prober.ProbeAll(c.Request.Context(), st.Candidates()) {
			if o.Err != nil {
				s.logger.Debug("probe failed", zap.String("resolution", o.Tag), zap.Error(o.Err))
			}
			st = st.Report(gen, o)
		}
	}

	visible := st.Visible()
	invalid := st.Invalid().Tags()
	s.recordHistory(input, st.VideoID().String(), "found", len(visible), invalid)

	c.JSON(http.StatusOK, thumbnailsResponse{
		VideoID:    st.VideoID(),
		Thumbnails: visible,
		Invalid:    invalid,
	})
}

func (s *Server) recordHistory(input, videoID, status string, validCount int, invalid []string) {
	if s.history == nil {
		return
	}
	if _, err := s.history.Record(input, videoID, status, validCount, invalid); err != nil {
		s.logger.Warn("failed to record history", zap.Error(err))
	}
}

func (s *Server) handleThumbnailImage(c *gin.Context) {
	id := extractor.VideoID(c.Param("id"))
	if !id.Valid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid video id"})
		return
	}
	r, err := thumbnail.ParseResolution(c.Param("res"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url := thumbnail.URL(id, r)
	data, err := s.downloader.Fetch(c.Request.Context(), url)
	if err != nil {
		s.logger.Warn("proxy fetch failed, redirecting", zap.String("url", url), zap.Error(err))
		c.Redirect(http.StatusFound, url)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, r.AssetName()))
	c.Data(http.StatusOK, "image/jpeg", data)
}

func (s *Server) handleHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history is disabled"})
		return
	}

	limit := queryInt(c, "limit", defaultHistoryLimit)
	if limit <= 0 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	records, total, err := s.history.GetHistory(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	found, notFound, err := s.history.GetStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records":   records,
		"total":     total,
		"found":     found,
		"not_found": notFound,
	})
}

func (s *Server) handleClearHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history is disabled"})
		return
	}
	n, err := s.history.ClearHistory()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

func (s *Server) handleDeleteHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history is disabled"})
		return
	}
	err := s.history.DeleteRecord(c.Param("id"))
	switch {
	case errors.Is(err, ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.Status(http.StatusNoContent)
	}
}

func queryInt(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
