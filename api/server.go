// Package api is the main api web server
package api

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"

	"github.com/aouyang1/autoslides/api/models"
	"github.com/aouyang1/autoslides/api/web/templates"
	"github.com/aouyang1/autoslides/config"
	"github.com/aouyang1/autoslides/publish"
	"github.com/aouyang1/autoslides/settings"
	"github.com/aouyang1/autoslides/shortener"
	"github.com/aouyang1/autoslides/slideshow"
	"github.com/aouyang1/autoslides/store"
	"github.com/gin-gonic/gin"
)

//go:embed web/static
var webFiles embed.FS

// Presentations is the host document model.
type Presentations interface {
	GetPresentation(ctx context.Context, presentationID string) (*models.Presentation, error)
	RefreshCharts(ctx context.Context, presentationID string, chartIDs []string) error
}

type WebServer struct {
	router  *gin.Engine
	cfg     config.Config
	backend store.Backend

	presentations Presentations
	publisher     *publish.Publisher
	shortener     shortener.Shortener
}

func NewWebServer(cfg config.Config, backend store.Backend, presentations Presentations, revisions publish.Revisions, short shortener.Shortener) *WebServer {
	router := gin.Default()

	ws := &WebServer{
		router:        router,
		cfg:           cfg,
		backend:       backend,
		presentations: presentations,
		publisher:     publish.NewPublisher(revisions),
		shortener:     short,
	}

	// Setup routes
	ws.setupRoutes()

	return ws
}

func (ws *WebServer) setupRoutes() {
	// Create filesystem for static files (strip "web/" prefix)
	staticFS, err := fs.Sub(webFiles, "web/static")
	if err != nil {
		log.Fatalf("Failed to create static filesystem: %v", err)
	}

	// Serve static files from embedded filesystem
	ws.router.StaticFS("static", http.FS(staticFS))

	ws.router.GET("/favicon.ico", func(c *gin.Context) {
		data, err := webFiles.ReadFile("web/static/images/favicon.svg")
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, "image/svg+xml", data)
	})

	// public slideshow page
	ws.router.GET("/d/:documentID", ws.handleEmbedPage)

	ws.router.GET("/about", ws.handleAbout)

	docs := ws.router.Group("/api/documents/:documentID")
	docs.GET("/settings", ws.handleConfigure)
	docs.POST("/settings", ws.handleApplyForm)
	docs.POST("/settings/reset", ws.handleReset)
	docs.POST("/publish", ws.handlePublish)
	docs.POST("/unpublish", ws.handleUnpublish)
	docs.GET("/short-url", ws.handleShortURL)
	docs.POST("/charts/refresh", ws.handleRefreshCharts)
}

func (ws *WebServer) Start(addr string) {
	log.Printf("Starting web server on %s", addr)
	if err := ws.router.Run(addr); err != nil {
		log.Fatalf("Failed to start web server: %v", err)
	}
}

func (ws *WebServer) settingsStore(documentID string) *settings.Store {
	return settings.NewStore(ws.backend.Properties(documentID), ws.cfg.Defaults())
}

// abort logs err and answers with its text.
func abort(c *gin.Context, status int, err error) {
	slog.Error("request failed", "path", c.FullPath(), "document_id", c.Param("documentID"), "status", status, "error", err)
	c.JSON(status, models.ErrorResponse{Error: err.Error()})
}

func (ws *WebServer) handleEmbedPage(c *gin.Context) {
	documentID := c.Param("documentID")
	ctx := c.Request.Context()

	all, err := ws.settingsStore(documentID).GetAll(ctx)
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to load settings: %v", err)
		return
	}
	// a document nobody configured yet still gets a working page
	if !all.Initialized() {
		all = ws.cfg.Defaults()
	}

	pres, err := ws.presentations.GetPresentation(ctx, documentID)
	if err != nil {
		slog.Error("failed to get presentation", "document_id", documentID, "error", err)
		c.String(http.StatusBadGateway, "Failed to load presentation: %v", err)
		return
	}

	params, err := slideshow.Generate(all, ws.cfg.Geometry, pres.PageWidth, pres.PageHeight)
	if err != nil {
		c.String(http.StatusBadGateway, "Failed to size presentation: %v", err)
		return
	}

	page := templates.Page{
		Title:  pres.Name,
		URL:    templates.EmbedURL(documentID),
		Params: params,
	}

	// the page exists to be embedded anywhere
	c.Header("Content-Security-Policy", "frame-ancestors *")
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := templates.EmbedPage(page).Render(ctx, c.Writer); err != nil {
		slog.Error("failed to render embed page", "document_id", documentID, "error", err)
	}
}

func (ws *WebServer) handleAbout(c *gin.Context) {
	c.JSON(http.StatusOK, models.AboutResponse{
		Name:        "AutoSlides",
		Version:     config.Version,
		Description: "Publish a presentation as a self-refreshing slideshow that can be embedded in any web page.",
	})
}

func (ws *WebServer) settingsResponse(documentID string, all settings.Settings, chartCount int) models.SettingsResponse {
	return models.SettingsResponse{
		DocumentID: documentID,
		Settings:   all.FormValues(),
		Checked:    all.CheckedBoxes(),
		Published:  all.Published(),
		ChartCount: chartCount,
	}
}

func (ws *WebServer) handleConfigure(c *gin.Context) {
	documentID := c.Param("documentID")
	ctx := c.Request.Context()
	st := ws.settingsStore(documentID)

	if _, err := st.InitializeIfAbsent(ctx); err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}

	all, err := st.GetAll(ctx)
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}

	pres, err := ws.presentations.GetPresentation(ctx, documentID)
	if err != nil {
		abort(c, http.StatusBadGateway, fmt.Errorf("error getting presentation: %w", err))
		return
	}

	c.JSON(http.StatusOK, ws.settingsResponse(documentID, all, len(pres.ChartIDs)))
}

func (ws *WebServer) handleApplyForm(c *gin.Context) {
	documentID := c.Param("documentID")
	ctx := c.Request.Context()

	var req models.SettingsForm
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Invalid request body: %v", err)})
		return
	}

	form := req.ToForm()
	if err := form.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	st := ws.settingsStore(documentID)
	// a form can arrive before the document was ever configured
	if _, err := st.InitializeIfAbsent(ctx); err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	if err := st.ApplyForm(ctx, form); err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}

	all, err := st.GetAll(ctx)
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}

	slog.Info("settings updated", "document_id", documentID)
	c.JSON(http.StatusOK, ws.settingsResponse(documentID, all, 0))
}

func (ws *WebServer) handleReset(c *gin.Context) {
	documentID := c.Param("documentID")
	ctx := c.Request.Context()
	st := ws.settingsStore(documentID)

	if _, err := st.ResetToDefaults(ctx); err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}

	all, err := st.GetAll(ctx)
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, ws.settingsResponse(documentID, all, 0))
}

// publishStatus maps a publish failure to a status code. Revision API failures
// are upstream errors, anything else came from the settings store.
func publishStatus(err error) int {
	var hostErr *publish.HostError
	if errors.As(err, &hostErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (ws *WebServer) handlePublish(c *gin.Context) {
	documentID := c.Param("documentID")

	if err := ws.publisher.Publish(c.Request.Context(), documentID, ws.settingsStore(documentID)); err != nil {
		abort(c, publishStatus(err), err)
		return
	}

	c.JSON(http.StatusOK, models.PublishResponse{
		DocumentID: documentID,
		Published:  true,
		URL:        ws.cfg.PublicURL(documentID),
		Message:    "The presentation is publicly available.",
	})
}

func (ws *WebServer) handleUnpublish(c *gin.Context) {
	documentID := c.Param("documentID")

	if err := ws.publisher.Unpublish(c.Request.Context(), documentID, ws.settingsStore(documentID)); err != nil {
		abort(c, publishStatus(err), err)
		return
	}

	c.JSON(http.StatusOK, models.PublishResponse{
		DocumentID: documentID,
		Published:  false,
		Message:    "The presentation is no longer publicly available.",
	})
}

func (ws *WebServer) handleShortURL(c *gin.Context) {
	documentID := c.Param("documentID")
	longURL := ws.cfg.PublicURL(documentID)

	shortURL, err := shortener.Cached(c.Request.Context(), ws.settingsStore(documentID), ws.shortener, longURL)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, shortener.ErrShorten) {
			status = http.StatusBadGateway
		}
		abort(c, status, err)
		return
	}

	c.JSON(http.StatusOK, models.ShortURLResponse{URL: longURL, ShortURL: shortURL})
}

func (ws *WebServer) handleRefreshCharts(c *gin.Context) {
	documentID := c.Param("documentID")
	ctx := c.Request.Context()

	pres, err := ws.presentations.GetPresentation(ctx, documentID)
	if err != nil {
		abort(c, http.StatusBadGateway, fmt.Errorf("error getting presentation: %w", err))
		return
	}

	if len(pres.ChartIDs) == 0 {
		c.JSON(http.StatusOK, models.RefreshChartsResponse{Message: "No linked charts to refresh."})
		return
	}

	if err := ws.presentations.RefreshCharts(ctx, documentID, pres.ChartIDs); err != nil {
		abort(c, http.StatusBadGateway, fmt.Errorf("error refreshing charts: %w", err))
		return
	}

	slog.Info("refreshed linked charts", "document_id", documentID, "count", len(pres.ChartIDs))
	c.JSON(http.StatusOK, models.RefreshChartsResponse{
		Refreshed: len(pres.ChartIDs),
		Message:   fmt.Sprintf("Refreshed %d linked charts.", len(pres.ChartIDs)),
	})
}
