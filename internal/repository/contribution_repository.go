package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blackboxscan/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	pgxV5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgxV5.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgxV5.Row
}

// ContributionRepository stores community contributions. Records are
// append-only.
type ContributionRepository interface {
	// Create inserts c and fills in the store-assigned ID and CreatedAt.
	Create(ctx context.Context, c *models.Contribution) error
	// ListAll returns every record, newest first.
	ListAll(ctx context.Context) ([]models.Contribution, error)
	// ListFiltered narrows the listing in the database. Empty types means all
	// types; an empty search matches everything.
	ListFiltered(ctx context.Context, types []models.ContributionType, search string) ([]models.Contribution, error)
}

const (
	contributionColumns = `id, title, description, type, github_url, paper_url, dataset_url, author_name, author_email, created_at`

	createContributionQuery = `
        INSERT INTO contributions (title, description, type, github_url, paper_url, dataset_url, author_name, author_email)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at
    `
	listContributionsQuery = `SELECT ` + contributionColumns + ` FROM contributions ORDER BY created_at DESC, id`

	listFilteredContributionsQuery = `
        SELECT ` + contributionColumns + `
        FROM contributions
        WHERE ($1::text[] IS NULL OR type = ANY($1::text[]))
          AND ($2 = '' OR title ILIKE $3 OR description ILIKE $3 OR author_name ILIKE $3)
        ORDER BY created_at DESC, id
    `
)

type pgContributionRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgContributionRepository creates a PostgreSQL-backed repository.
func NewPgContributionRepository(db DBTX, logger *zap.Logger) ContributionRepository {
	return &pgContributionRepository{
		db:     db,
		logger: logger.Named("ContributionRepo"),
	}
}

func (r *pgContributionRepository) Create(ctx context.Context, c *models.Contribution) error {
	log := r.logger.With(zap.String("type", string(c.Type)), zap.String("title", c.Title))

	err := r.db.QueryRow(ctx, createContributionQuery,
		c.Title, c.Description, string(c.Type),
		nullIfBlank(c.GithubURL), nullIfBlank(c.PaperURL), nullIfBlank(c.DatasetURL),
		c.AuthorName, c.AuthorEmail,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		log.Error("Error creating contribution", zap.Error(err))
		return fmt.Errorf("failed to create contribution: %w", err)
	}

	c.GithubURL, c.PaperURL, c.DatasetURL = nullIfBlank(c.GithubURL), nullIfBlank(c.PaperURL), nullIfBlank(c.DatasetURL)
	log.Info("Contribution created", zap.String("id", c.ID.String()))
	return nil
}

func (r *pgContributionRepository) ListAll(ctx context.Context) ([]models.Contribution, error) {
	var records []models.Contribution
	if err := pgxscan.Select(ctx, r.db, &records, listContributionsQuery); err != nil {
		if errors.Is(err, pgxV5.ErrNoRows) {
			return []models.Contribution{}, nil
		}
		r.logger.Error("Error listing contributions", zap.Error(err))
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	if records == nil {
		records = []models.Contribution{}
	}
	return records, nil
}

func (r *pgContributionRepository) ListFiltered(ctx context.Context, types []models.ContributionType, search string) ([]models.Contribution, error) {
	log := r.logger.With(zap.Int("type_count", len(types)), zap.String("search", search))

	var typeParam any
	if len(types) > 0 {
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = string(t)
		}
		typeParam = pq.Array(names)
	}
	search = strings.TrimSpace(search)

	var records []models.Contribution
	err := pgxscan.Select(ctx, r.db, &records, listFilteredContributionsQuery, typeParam, search, "%"+escapeLike(search)+"%")
	if err != nil {
		if errors.Is(err, pgxV5.ErrNoRows) {
			return []models.Contribution{}, nil
		}
		log.Error("Error listing filtered contributions", zap.Error(err))
		return nil, fmt.Errorf("failed to list filtered contributions: %w", err)
	}
	if records == nil {
		records = []models.Contribution{}
	}
	log.Debug("Filtered contributions listed", zap.Int("count", len(records)))
	return records, nil
}

// nullIfBlank maps blank optional URLs to NULL.
func nullIfBlank(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
