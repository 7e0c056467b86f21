// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package web

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/russross/blackfriday/v2"

	"github.com/poiesic/hnjobs"
	"github.com/poiesic/hnjobs/core"
	"github.com/poiesic/hnjobs/render"
)

// DefaultThreadURL is the thread scraped when the UI triggers ingestion.
const DefaultThreadURL = "https://news.ycombinator.com/item?id=43547611"

const timeLayout = "01/02/2006 03:04:05 PM"

// Server serves the job listing UI over HTTP.
type Server struct {
	db        *hnjobs.Database
	threadURL string
	logger    *slog.Logger
	engine    *gin.Engine
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithThreadURL sets the thread the scrape trigger ingests.
// Default is DefaultThreadURL.
func WithThreadURL(url string) ServerOption {
	return func(s *Server) {
		s.threadURL = url
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewServer creates a server over the given database.
func NewServer(db *hnjobs.Database, opts ...ServerOption) *Server {
	s := &Server{
		db:        db,
		threadURL: DefaultThreadURL,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.SetHTMLTemplate(loadTemplates())

	engine.GET("/health", s.health)
	engine.GET("/", s.index)
	engine.GET("/job/:id", s.jobDetail)
	engine.POST("/job/:id/status", s.updateStatus)
	engine.GET("/scrape", s.scrape)

	s.engine = engine
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("serving job listings", "addr", addr)
	return s.engine.Run(addr)
}

type jobRow struct {
	Id         core.ID
	Html       template.HTML
	Status     string
	InsertedAt string
}

func (s *Server) health(c *gin.Context) {
	c.HTML(http.StatusOK, "health", nil)
}

func (s *Server) index(c *gin.Context) {
	search := c.Query("search")
	postings := s.db.Search(c.Request.Context(), search)

	rows := make([]jobRow, len(postings))
	for i, p := range postings {
		rows[i] = jobRow{
			Id:         p.Id,
			Html:       markdownToHTML(p.Text),
			Status:     p.Status,
			InsertedAt: formatTime(p.InsertedAt),
		}
	}

	c.HTML(http.StatusOK, "index", gin.H{
		"Search": search,
		"Jobs":   rows,
	})
}

func (s *Server) jobDetail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid job id")
		return
	}

	posting, err := s.db.Posting(c.Request.Context(), core.ID(id))
	if err != nil {
		c.String(http.StatusNotFound, "Job not found")
		return
	}

	var userURL, itemURL string
	if posting.Author != "" {
		userURL = render.UserURL(posting.Author)
	}
	if posting.HasExternalId() {
		itemURL = render.ItemURL(posting.ExternalId)
	}

	c.HTML(http.StatusOK, "job", gin.H{
		"Id":         posting.Id,
		"Html":       markdownToHTML(render.Display(posting.Text)),
		"InsertedAt": formatTime(posting.InsertedAt),
		"UpdatedAt":  formatTime(posting.UpdatedAt),
		"AppliedAt":  formatTime(posting.AppliedAt),
		"Status":     posting.Status,
		"Author":     posting.Author,
		"ExternalId": posting.ExternalId,
		"UserURL":    userURL,
		"ItemURL":    itemURL,
	})
}

func (s *Server) updateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid job id")
		return
	}

	status := c.PostForm("status")
	if err := s.db.SetApplication(c.Request.Context(), core.ID(id), status); err != nil {
		s.logger.Error("error updating job status", "id", id, "err", err)
		c.String(http.StatusNotFound, "Job not found")
		return
	}

	c.Redirect(http.StatusSeeOther, "/job/"+strconv.FormatUint(id, 10))
}

func (s *Server) scrape(c *gin.Context) {
	// Fire and forget; the listing page reflects results once the run lands.
	go func() {
		existing, added := s.db.Ingest(context.Background(), s.threadURL)
		s.logger.Info("background scrape finished", "existing", existing, "new", added)
	}()

	c.HTML(http.StatusOK, "scrape", gin.H{
		"Message": "Scraping started successfully! The scraping process is running in the background.",
	})
}

// markdownToHTML renders posting text for embedding in a page. The text has
// already been converted to Markdown by the search boundary or render.Display.
func markdownToHTML(markdown string) template.HTML {
	return template.HTML(blackfriday.Run([]byte(markdown)))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(timeLayout)
}
