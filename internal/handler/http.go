package handler

import (
	"errors"
	"net/http"

	"blackboxscan/internal/middleware"
	"blackboxscan/internal/models"
	"blackboxscan/internal/service"
	"blackboxscan/internal/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIError is the JSON error body of the API endpoints.
type APIError struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Options carries handler settings taken from the service configuration.
type Options struct {
	FlashSecret    string
	SecureCookies  bool
	MaxUploadBytes int64
}

// Handler serves the site pages, the demo form posts and the JSON API.
type Handler struct {
	logger        *zap.Logger
	analysis      service.AnalysisService
	contributions service.ContributionService
	contact       service.ContactService

	flashSecret    []byte
	secureCookies  bool
	maxUploadBytes int64
}

// NewHandler creates a Handler.
func NewHandler(opts Options, logger *zap.Logger, analysis service.AnalysisService, contributions service.ContributionService, contact service.ContactService) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Handler{
		logger:         logger.Named("Handler"),
		analysis:       analysis,
		contributions:  contributions,
		contact:        contact,
		flashSecret:    []byte(opts.FlashSecret),
		secureCookies:  opts.SecureCookies,
		maxUploadBytes: opts.MaxUploadBytes,
	}
}

// RegisterRoutes registers every route. dispatchLimit, when not nil, guards
// the endpoints that call the analysis service.
func (h *Handler) RegisterRoutes(r *gin.Engine, dispatchLimit gin.HandlerFunc) {
	dispatch := []gin.HandlerFunc{}
	if dispatchLimit != nil {
		dispatch = append(dispatch, dispatchLimit)
	}

	r.GET("/", h.showStaticPage("index.html", "home", "Black Box Scan"))
	r.GET("/about", h.showStaticPage("about.html", "about", "About"))
	r.GET("/documentation", h.showStaticPage("documentation.html", "documentation", "Documentation"))

	r.GET("/contact", h.showContactPage)
	r.POST("/contact", h.handleContact)

	r.GET("/resources", h.showResourcesPage)
	r.GET("/contribute", h.showContributePage)
	r.POST("/contribute", h.handleContribute)

	r.GET("/watermarking", h.showDemoPage(watermarkingPage))
	r.POST("/watermarking/:operation", append(dispatch, h.handleDemoPost(watermarkingPage))...)
	r.GET("/demo", h.showDemoPage(scanPage))
	r.POST("/demo/:operation", append(dispatch, h.handleDemoPost(scanPage))...)

	api := r.Group("/api")
	{
		api.POST("/analysis/:operation", append(dispatch, h.apiRunAnalysis)...)
		api.GET("/contributions", h.apiListContributions)
		api.POST("/contributions", h.apiCreateContribution)
	}
}

func (h *Handler) showStaticPage(template, nav, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.render(c, http.StatusOK, template, web.NewPage(nav, title, nil))
	}
}

// render fills the common page fields and executes template.
func (h *Handler) render(c *gin.Context, status int, template string, page *web.Page) {
	if page.Flash == nil {
		flash, err := h.popFlash(c)
		if err != nil {
			h.logger.Warn("Ignoring invalid flash cookie", zap.Error(err))
		}
		page.Flash = flash
	}
	page.RequestID = middleware.RequestID(c)
	c.HTML(status, template, page)
}

// redirectWithFlash stores flash and redirects with 303 See Other.
func (h *Handler) redirectWithFlash(c *gin.Context, location string, flash web.Flash) {
	if err := h.setFlash(c, flash); err != nil {
		h.logger.Error("Failed to set flash message", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, location)
}

// handleServiceError maps service errors to JSON responses.
func handleServiceError(c *gin.Context, err error) {
	var (
		statusCode int
		apiErr     APIError
		vErr       *models.ValidationError
	)

	switch {
	case errors.As(err, &vErr):
		statusCode = http.StatusBadRequest
		apiErr = APIError{Message: vErr.Error(), Field: vErr.Field}
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrBusy):
		statusCode = http.StatusConflict
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrUnknownOperation), errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrTransport), errors.Is(err, models.ErrServer):
		statusCode = http.StatusBadGateway
		apiErr = APIError{Message: "Analysis service request failed"}
	default:
		statusCode = http.StatusInternalServerError
		apiErr = APIError{Message: "Internal server error"}
	}
	if statusCode >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(statusCode, apiErr)
}

// statusForResult picks the HTTP status of a normalized analysis result.
func statusForResult(res *models.AnalysisResult) int {
	if res.Kind != models.KindError || res.Error == nil {
		return http.StatusOK
	}
	switch res.Error.Code {
	case models.ErrorCodeValidation:
		return http.StatusBadRequest
	case models.ErrorCodeBusy:
		return http.StatusConflict
	case models.ErrorCodeUnknownOperation:
		return http.StatusNotFound
	case models.ErrorCodeUpstream:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
