package handler

import (
	"net/http"
	"strings"

	"blackboxscan/internal/middleware"
	"blackboxscan/internal/models"
	"blackboxscan/internal/service"
	"blackboxscan/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// formIDField is the hidden input that identifies one rendered demo page.
// The in-flight slot of a form is keyed by form id and operation.
const formIDField = "form_id"

// demoPage describes one demo page and the operations its forms post to.
type demoPage struct {
	Nav        string
	Title      string
	Template   string
	Path       string
	Operations []models.Operation
}

var (
	watermarkingPage = demoPage{
		Nav:        "watermarking",
		Title:      "AI Watermarking",
		Template:   "watermarking.html",
		Path:       "/watermarking",
		Operations: models.WatermarkOperations,
	}
	scanPage = demoPage{
		Nav:        "demo",
		Title:      "Black Box Scan Demo",
		Template:   "demo.html",
		Path:       "/demo",
		Operations: models.ScanOperations,
	}
)

func (p demoPage) has(op models.Operation) bool {
	for _, known := range p.Operations {
		if known == op {
			return true
		}
	}
	return false
}

// DemoForm is the state of one operation form: the values to show and the
// latest result, if any.
type DemoForm struct {
	Operation models.Operation
	Label     string
	Action    string
	Values    map[string]string
	Result    *models.AnalysisResult
	Busy      bool
}

// Value returns the entered value of field, or its default.
func (f *DemoForm) Value(field string) string {
	return f.Values[field]
}

// Checked reports whether a checkbox field was ticked.
func (f *DemoForm) Checked(field string) bool {
	return checked(f.Values[field])
}

// DemoView is the view model of a demo page.
type DemoView struct {
	FormID string
	Active models.Operation
	Forms  map[string]*DemoForm
	Order  []*DemoForm

	Methods []models.FreqMethod
	Models  []string
}

func (h *Handler) newDemoView(page demoPage, formID string) *DemoView {
	view := &DemoView{
		FormID:  formID,
		Forms:   make(map[string]*DemoForm, len(page.Operations)),
		Methods: models.FreqMethods,
		Models:  ScanModels,
	}
	for _, op := range page.Operations {
		form := &DemoForm{
			Operation: op,
			Label:     op.Label(),
			Action:    page.Path + "/" + string(op),
			Values:    defaultValues(op),
			Busy:      h.analysis.Busy(formID + ":" + string(op)),
		}
		view.Forms[string(op)] = form
		view.Order = append(view.Order, form)
	}
	return view
}

func defaultValues(op models.Operation) map[string]string {
	values := make(map[string]string)
	for _, spec := range operationParams[op] {
		switch spec.Kind {
		case paramMethod:
			values[spec.Name] = string(models.FreqMethods[0])
		case paramBool, paramConst:
		default:
			values[spec.Name] = spec.Default
		}
	}
	return values
}

// showDemoPage renders a demo page with empty forms and a fresh form id.
func (h *Handler) showDemoPage(page demoPage) gin.HandlerFunc {
	return func(c *gin.Context) {
		view := h.newDemoView(page, uuid.NewString())
		h.render(c, http.StatusOK, page.Template, web.NewPage(page.Nav, page.Title, view))
	}
}

// handleDemoPost runs one operation and re-renders the page with the entered
// values and the result under the submitted form.
func (h *Handler) handleDemoPost(page demoPage) gin.HandlerFunc {
	return func(c *gin.Context) {
		op := models.Operation(c.Param("operation"))
		if !page.has(op) {
			h.renderNotFound(c)
			return
		}

		formID := strings.TrimSpace(c.PostForm(formIDField))
		if _, err := uuid.Parse(formID); err != nil {
			formID = uuid.NewString()
		}
		requestID := middleware.RequestID(c)

		view := h.newDemoView(page, formID)
		view.Active = op
		form := view.Forms[string(op)]
		for name := range form.Values {
			if v, ok := c.GetPostForm(name); ok {
				form.Values[name] = v
			}
		}
		for _, spec := range operationParams[op] {
			if spec.Kind == paramBool {
				form.Values[spec.Name], _ = c.GetPostForm(spec.Name)
			}
		}

		form.Result = h.runForm(c, op, formID, requestID)
		form.Busy = false

		h.render(c, statusForResult(form.Result), page.Template, web.NewPage(page.Nav, page.Title, view))
	}
}

// runForm builds the request from the posted form and runs it. Every failure
// is turned into an error result.
func (h *Handler) runForm(c *gin.Context, op models.Operation, formID, requestID string) *models.AnalysisResult {
	var upload *models.Upload
	if usesUpload(op) {
		var err error
		upload, err = h.readUpload(c)
		if err != nil {
			err = uploadError(err)
			h.logger.Warn("Rejected upload", zap.String("operation", string(op)), zap.Error(err))
			msg, code := service.FailureMessage(op, err)
			return models.NewErrorResult(op, msg, code)
		}
	}

	req, err := buildAnalysisRequest(op, formValues(c), upload)
	if err != nil {
		msg, code := service.FailureMessage(op, err)
		return models.NewErrorResult(op, msg, code)
	}
	return h.analysis.Run(c.Request.Context(), formID+":"+string(op), req, requestID)
}
