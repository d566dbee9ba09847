package service

import (
	"context"
	"fmt"
	"strings"

	"blackboxscan/internal/messaging"
	"blackboxscan/internal/models"
	"blackboxscan/internal/repository"

	"go.uber.org/zap"
)

// ContributionInput is a submitted contribution form. Values are trimmed
// before validation.
type ContributionInput struct {
	Title       string `form:"title" json:"title" validate:"required"`
	Description string `form:"description" json:"description" validate:"required"`
	Type        string `form:"type" json:"type" validate:"required,oneof=research dataset methodology community"`
	GithubURL   string `form:"githubUrl" json:"githubUrl"`
	PaperURL    string `form:"paperUrl" json:"paperUrl"`
	DatasetURL  string `form:"datasetUrl" json:"datasetUrl"`
	AuthorName  string `form:"authorName" json:"authorName" validate:"required"`
	AuthorEmail string `form:"authorEmail" json:"authorEmail" validate:"required"`
}

var contributionMessages = map[string]string{
	"title":       "Please enter a title",
	"description": "Please enter a description",
	"type":        "Please select a contribution type",
	"authorName":  "Please enter your name",
	"authorEmail": "Please enter your email",
}

// ContributionFilter selects records by type ("all" or a type) and a
// case-insensitive search term.
type ContributionFilter struct {
	Search string `form:"q"`
	Type   string `form:"type"`
}

// Normalized returns the filter with a trimmed search and "all" for a blank type.
func (f ContributionFilter) Normalized() ContributionFilter {
	f.Search = strings.TrimSpace(f.Search)
	f.Type = strings.TrimSpace(f.Type)
	if f.Type == "" {
		f.Type = models.ContributionTypeAll
	}
	return f
}

// TypeCount is the number of records of one type.
type TypeCount struct {
	Type  models.ContributionType
	Count int
}

// ContributionListing is one rendering of the community listing.
type ContributionListing struct {
	Filter ContributionFilter
	Items  []models.Contribution
	// Total counts every record, ignoring the filter.
	Total  int
	Counts []TypeCount
}

// ContributionService accepts and lists community contributions.
type ContributionService interface {
	Submit(ctx context.Context, in ContributionInput) (*models.Contribution, error)
	// List loads every record and filters in memory.
	List(ctx context.Context, filter ContributionFilter) (*ContributionListing, error)
	// Search filters in the database.
	Search(ctx context.Context, filter ContributionFilter) ([]models.Contribution, error)
}

type contributionService struct {
	repo      repository.ContributionRepository
	publisher messaging.EventPublisher
	logger    *zap.Logger
}

// NewContributionService creates a ContributionService.
func NewContributionService(repo repository.ContributionRepository, publisher messaging.EventPublisher, logger *zap.Logger) ContributionService {
	return &contributionService{
		repo:      repo,
		publisher: publisher,
		logger:    logger.Named("ContributionService"),
	}
}

func (s *contributionService) Submit(ctx context.Context, in ContributionInput) (*models.Contribution, error) {
	in = ContributionInput{
		Title:       trimmed(in.Title),
		Description: trimmed(in.Description),
		Type:        trimmed(in.Type),
		GithubURL:   trimmed(in.GithubURL),
		PaperURL:    trimmed(in.PaperURL),
		DatasetURL:  trimmed(in.DatasetURL),
		AuthorName:  trimmed(in.AuthorName),
		AuthorEmail: trimmed(in.AuthorEmail),
	}
	if err := validateStruct(in, contributionMessages); err != nil {
		contributionsRejectedTotal.Inc()
		s.logger.Debug("Contribution rejected", zap.Error(err))
		return nil, err
	}

	c := &models.Contribution{
		Title:       in.Title,
		Description: in.Description,
		Type:        models.ContributionType(in.Type),
		GithubURL:   optional(in.GithubURL),
		PaperURL:    optional(in.PaperURL),
		DatasetURL:  optional(in.DatasetURL),
		AuthorName:  in.AuthorName,
		AuthorEmail: in.AuthorEmail,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to store contribution: %w", err)
	}
	contributionsCreatedTotal.WithLabelValues(string(c.Type)).Inc()

	if err := s.publisher.PublishContributionCreated(ctx, c); err != nil {
		eventPublishFailuresTotal.WithLabelValues(messaging.EventContributionCreated).Inc()
		s.logger.Warn("Contribution stored but event was not published",
			zap.String("contribution_id", c.ID.String()),
			zap.Error(err),
		)
	}
	return c, nil
}

func (s *contributionService) List(ctx context.Context, filter ContributionFilter) (*ContributionListing, error) {
	filter = filter.Normalized()
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load contributions: %w", err)
	}
	return &ContributionListing{
		Filter: filter,
		Items:  FilterContributions(all, filter.Search, filter.Type),
		Total:  len(all),
		Counts: CountByType(all),
	}, nil
}

func (s *contributionService) Search(ctx context.Context, filter ContributionFilter) ([]models.Contribution, error) {
	filter = filter.Normalized()
	var types []models.ContributionType
	if filter.Type != models.ContributionTypeAll {
		t := models.ContributionType(filter.Type)
		if !t.Valid() {
			return nil, &models.ValidationError{Field: "type", Message: fmt.Sprintf("Unknown contribution type %q", filter.Type)}
		}
		types = []models.ContributionType{t}
	}
	records, err := s.repo.ListFiltered(ctx, types, filter.Search)
	if err != nil {
		return nil, fmt.Errorf("failed to search contributions: %w", err)
	}
	return records, nil
}

// FilterContributions keeps records whose type matches typ ("all" matches
// every type) and whose title, description or author name contains search,
// ignoring case. records is not modified.
func FilterContributions(records []models.Contribution, search, typ string) []models.Contribution {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]models.Contribution, 0, len(records))
	for _, r := range records {
		if typ != models.ContributionTypeAll && string(r.Type) != typ {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(r.Title), needle) &&
			!strings.Contains(strings.ToLower(r.Description), needle) &&
			!strings.Contains(strings.ToLower(r.AuthorName), needle) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// CountByType counts records per type in display order.
func CountByType(records []models.Contribution) []TypeCount {
	counts := make(map[models.ContributionType]int, len(models.ContributionTypes))
	for _, r := range records {
		counts[r.Type]++
	}
	out := make([]TypeCount, len(models.ContributionTypes))
	for i, t := range models.ContributionTypes {
		out[i] = TypeCount{Type: t, Count: counts[t]}
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
