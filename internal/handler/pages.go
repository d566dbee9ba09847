package handler

import (
	"errors"
	"net/http"

	"blackboxscan/internal/models"
	"blackboxscan/internal/service"
	"blackboxscan/internal/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FormError is a form-level failure shown above the fields.
type FormError struct {
	Field   string
	Message string
}

// ContactView is the view model of the contact page.
type ContactView struct {
	Values service.ContactInput
	Error  *FormError
}

// ResourcesView is the view model of the community listing.
type ResourcesView struct {
	Listing *service.ContributionListing
	Types   []models.ContributionType
	Error   string
}

// ContributeView is the view model of the contribution form.
type ContributeView struct {
	Values service.ContributionInput
	Error  *FormError
	Types  []models.ContributionType
	Counts []service.TypeCount
	Total  int
}

func (h *Handler) showContactPage(c *gin.Context) {
	h.render(c, http.StatusOK, "contact.html", web.NewPage("contact", "Contact", &ContactView{}))
}

func (h *Handler) handleContact(c *gin.Context) {
	var in service.ContactInput
	if err := c.ShouldBind(&in); err != nil {
		h.logger.Warn("Failed to bind contact form", zap.Error(err))
	}

	_, err := h.contact.Send(c.Request.Context(), in)
	if err == nil {
		h.redirectWithFlash(c, "/contact", web.Flash{
			Type:    "success",
			Title:   "Message Sent!",
			Message: "Thank you for contacting us. We'll get back to you soon.",
		})
		return
	}

	status, formErr := formFailure(err, "Failed to send your message. Please try again.")
	if status >= http.StatusInternalServerError {
		h.logger.Error("Failed to send contact message", zap.Error(err))
	}
	view := &ContactView{Values: in, Error: formErr}
	h.render(c, status, "contact.html", web.NewPage("contact", "Contact", view))
}

func (h *Handler) showResourcesPage(c *gin.Context) {
	var filter service.ContributionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.logger.Warn("Failed to bind resources filter", zap.Error(err))
	}

	view := &ResourcesView{Types: models.ContributionTypes}
	status := http.StatusOK
	listing, err := h.contributions.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to load contributions", zap.Error(err))
		status = http.StatusInternalServerError
		view.Error = "Community contributions could not be loaded. Please try again later."
		listing = &service.ContributionListing{Filter: filter.Normalized()}
	}
	view.Listing = listing

	h.render(c, status, "resources.html", web.NewPage("resources", "Resources", view))
}

func (h *Handler) showContributePage(c *gin.Context) {
	view := &ContributeView{}
	h.render(c, http.StatusOK, "contribute.html", web.NewPage("contribute", "Contribute", h.withCounts(c, view)))
}

func (h *Handler) handleContribute(c *gin.Context) {
	var in service.ContributionInput
	if err := c.ShouldBind(&in); err != nil {
		h.logger.Warn("Failed to bind contribution form", zap.Error(err))
	}

	_, err := h.contributions.Submit(c.Request.Context(), in)
	if err == nil {
		h.redirectWithFlash(c, "/contribute", web.Flash{
			Type:    "success",
			Title:   "Contribution Submitted!",
			Message: "Thank you for contributing to Black Box Scan. We'll review your submission soon.",
		})
		return
	}

	status, formErr := formFailure(err, "Failed to submit your contribution. Please try again.")
	if status >= http.StatusInternalServerError {
		h.logger.Error("Failed to submit contribution", zap.Error(err))
	}
	view := &ContributeView{Values: in, Error: formErr}
	h.render(c, status, "contribute.html", web.NewPage("contribute", "Contribute", h.withCounts(c, view)))
}

// withCounts adds the per-type statistics. A listing failure only hides them.
func (h *Handler) withCounts(c *gin.Context, view *ContributeView) *ContributeView {
	view.Types = models.ContributionTypes
	listing, err := h.contributions.List(c.Request.Context(), service.ContributionFilter{})
	if err != nil {
		h.logger.Warn("Failed to load contribution stats", zap.Error(err))
		return view
	}
	view.Counts = listing.Counts
	view.Total = listing.Total
	return view
}

// formFailure maps a submit error to a status and a message for the form.
func formFailure(err error, fallback string) (int, *FormError) {
	var vErr *models.ValidationError
	if errors.As(err, &vErr) {
		return http.StatusBadRequest, &FormError{Field: vErr.Field, Message: vErr.Error()}
	}
	return http.StatusInternalServerError, &FormError{Message: fallback}
}

// renderNotFound serves the 404 page.
func (h *Handler) renderNotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "404.html", web.NewPage("", "Page not found", nil))
}
