// Package api exposes the stored data to dashboard clients. It is a
// read-only surface: all mutation flows through the pipeline.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"CompanyTracker/internal/infrastructure/storage"
	"CompanyTracker/internal/ports"
)

// Server serves company and mention data over HTTP.
type Server struct {
	repository ports.CompanyRepository
	logger     *slog.Logger
}

// NewServer wires the repository behind the read API.
func NewServer(repository ports.CompanyRepository, logger *slog.Logger) *Server {
	return &Server{repository: repository, logger: logger}
}

// Router builds the gin engine with all read endpoints registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/companies", s.listCompanies)
		apiGroup.GET("/companies/:id", s.companyDetail)
		apiGroup.GET("/companies/:id/timeline", s.companyTimeline)
	}

	return router
}

// Run blocks serving on addr until the listener fails.
func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *Server) listCompanies(c *gin.Context) {
	companies, err := s.repository.Companies(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, companies)
}

func (s *Server) companyDetail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	company, err := s.repository.Company(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}

	stats, err := s.repository.SentimentStats(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}

	mentions, err := s.repository.Mentions(ctx, id, c.Query("sentiment"))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"company":  company,
		"stats":    stats,
		"mentions": mentions,
	})
}

func (s *Server) companyTimeline(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid days parameter"})
			return
		}
		days = parsed
	}

	ctx := c.Request.Context()
	if _, err := s.repository.Company(ctx, id); err != nil {
		s.fail(c, err)
		return
	}

	mentions, err := s.repository.Timeline(ctx, id, days)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, mentions)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company id"})
		return 0, false
	}
	return id, true
}

func (s *Server) fail(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "company not found"})
		return
	}
	if s.logger != nil {
		s.logger.Error("api request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
