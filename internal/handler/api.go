package handler

import (
	"net/http"
	"strings"

	"blackboxscan/internal/middleware"
	"blackboxscan/internal/models"
	"blackboxscan/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FormIDHeader selects the in-flight slot of an API caller. Calls without it
// get a slot of their own.
const FormIDHeader = "X-Form-ID"

// ContributionsResponse is the body of GET /api/contributions.
type ContributionsResponse struct {
	Items []models.Contribution `json:"items"`
	Total int                   `json:"total"`
}

// apiRunAnalysis runs one operation from a JSON or form body and returns the
// normalized result.
func (h *Handler) apiRunAnalysis(c *gin.Context) {
	op, err := models.ParseOperation(c.Param("operation"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	var (
		get    valueGetter
		upload *models.Upload
	)
	contentType := c.ContentType()
	if contentType == gin.MIMEMultipartPOSTForm || contentType == gin.MIMEPOSTForm {
		if usesUpload(op) {
			if upload, err = h.readUpload(c); err != nil {
				handleServiceError(c, uploadError(err))
				return
			}
		}
		get = formValues(c)
	} else {
		body := map[string]any{}
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&body); err != nil {
				c.JSON(http.StatusBadRequest, APIError{Message: "Invalid JSON body"})
				return
			}
		}
		get = jsonValues(body)
	}

	req, err := buildAnalysisRequest(op, get, upload)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	formID := strings.TrimSpace(c.GetHeader(FormIDHeader))
	if formID == "" {
		formID = uuid.NewString()
	}

	res := h.analysis.Run(c.Request.Context(), formID+":"+string(op), req, middleware.RequestID(c))
	c.JSON(statusForResult(res), res)
}

func (h *Handler) apiListContributions(c *gin.Context) {
	var filter service.ContributionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "Invalid query parameters"})
		return
	}

	records, err := h.contributions.Search(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ContributionsResponse{Items: records, Total: len(records)})
}

func (h *Handler) apiCreateContribution(c *gin.Context) {
	var in service.ContributionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("Failed to bind contribution", zap.Error(err))
		c.JSON(http.StatusBadRequest, APIError{Message: "Invalid JSON body"})
		return
	}

	record, err := h.contributions.Submit(c.Request.Context(), in)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}
