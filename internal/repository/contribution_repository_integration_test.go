//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"blackboxscan/internal/database"
	"blackboxscan/internal/models"
	"blackboxscan/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

type ContributionRepositorySuite struct {
	suite.Suite
	ctx         context.Context
	pgContainer *postgres.PostgresContainer
	rdContainer *tcredis.RedisContainer
	pool        *pgxpool.Pool
	redisClient *redis.Client
	logger      *zap.Logger
}

func TestContributionRepositorySuite(t *testing.T) {
	suite.Run(t, new(ContributionRepositorySuite))
}

func (s *ContributionRepositorySuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = zap.NewNop()
	var err error

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start postgres container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err)

	s.pool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err)
	require.NoError(s.T(), database.Migrate(s.ctx, s.pool, zerolog.Nop()), "Failed to run migrations")

	s.rdContainer, err = tcredis.Run(s.ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").
				WithOccurrence(1).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start redis container")

	host, err := s.rdContainer.Host(s.ctx)
	require.NoError(s.T(), err)
	port, err := s.rdContainer.MappedPort(s.ctx, "6379/tcp")
	require.NoError(s.T(), err)
	s.redisClient = redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	require.NoError(s.T(), s.redisClient.Ping(s.ctx).Err())
}

func (s *ContributionRepositorySuite) TearDownSuite() {
	if s.redisClient != nil {
		s.redisClient.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
	if s.rdContainer != nil {
		if err := s.rdContainer.Terminate(s.ctx); err != nil {
			s.T().Logf("Failed to terminate redis container: %v", err)
		}
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.T().Logf("Failed to terminate postgres container: %v", err)
		}
	}
}

func (s *ContributionRepositorySuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, "TRUNCATE contributions")
	s.Require().NoError(err)
	s.Require().NoError(s.redisClient.FlushDB(s.ctx).Err())
}

func ptr(s string) *string { return &s }

func (s *ContributionRepositorySuite) create(repo repository.ContributionRepository, title string, typ models.ContributionType, author string) *models.Contribution {
	c := &models.Contribution{
		Title:       title,
		Description: "About " + title,
		Type:        typ,
		AuthorName:  author,
		AuthorEmail: "author@example.com",
	}
	s.Require().NoError(repo.Create(s.ctx, c))
	return c
}

func (s *ContributionRepositorySuite) TestCreateAssignsIDAndNormalizesURLs() {
	repo := repository.NewPgContributionRepository(s.pool, s.logger)

	c := &models.Contribution{
		Title:       "Probing GPT-2",
		Description: "Sentence likelihood study",
		Type:        models.ContributionResearch,
		GithubURL:   ptr("   "),
		PaperURL:    ptr(" https://arxiv.org/abs/1 "),
		AuthorName:  "Ada",
		AuthorEmail: "ada@example.com",
	}
	s.Require().NoError(repo.Create(s.ctx, c))
	s.NotEmpty(c.ID.String())
	s.False(c.CreatedAt.IsZero())

	all, err := repo.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 1)

	got := all[0]
	s.Equal(c.ID, got.ID)
	s.Nil(got.GithubURL)
	s.Nil(got.DatasetURL)
	s.Require().NotNil(got.PaperURL)
	s.Equal("https://arxiv.org/abs/1", *got.PaperURL)
	s.Equal(models.ContributionResearch, got.Type)
}

func (s *ContributionRepositorySuite) TestListAllNewestFirst() {
	repo := repository.NewPgContributionRepository(s.pool, s.logger)

	empty, err := repo.ListAll(s.ctx)
	s.Require().NoError(err)
	s.NotNil(empty)
	s.Empty(empty)

	s.create(repo, "first", models.ContributionDataset, "A")
	time.Sleep(10 * time.Millisecond)
	s.create(repo, "second", models.ContributionCommunity, "B")

	all, err := repo.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal("second", all[0].Title)
	s.Equal("first", all[1].Title)
}

func (s *ContributionRepositorySuite) TestListFiltered() {
	repo := repository.NewPgContributionRepository(s.pool, s.logger)
	s.create(repo, "Attention maps", models.ContributionResearch, "Lin")
	s.create(repo, "Probe corpus", models.ContributionDataset, "Kim")
	s.create(repo, "100% coverage", models.ContributionMethodology, "attention fan")

	byType, err := repo.ListFiltered(s.ctx, []models.ContributionType{models.ContributionDataset}, "")
	s.Require().NoError(err)
	s.Require().Len(byType, 1)
	s.Equal("Probe corpus", byType[0].Title)

	bySearch, err := repo.ListFiltered(s.ctx, nil, "ATTENTION")
	s.Require().NoError(err)
	s.Len(bySearch, 2)

	both, err := repo.ListFiltered(s.ctx, []models.ContributionType{models.ContributionResearch}, "attention")
	s.Require().NoError(err)
	s.Require().Len(both, 1)
	s.Equal("Attention maps", both[0].Title)

	literal, err := repo.ListFiltered(s.ctx, nil, "100%")
	s.Require().NoError(err)
	s.Require().Len(literal, 1)
	s.Equal("100% coverage", literal[0].Title)

	none, err := repo.ListFiltered(s.ctx, nil, "nothing like this")
	s.Require().NoError(err)
	s.NotNil(none)
	s.Empty(none)
}

func (s *ContributionRepositorySuite) TestTypeConstraint() {
	repo := repository.NewPgContributionRepository(s.pool, s.logger)

	err := repo.Create(s.ctx, &models.Contribution{
		Title: "x", Description: "y", Type: "rumor", AuthorName: "n", AuthorEmail: "e",
	})
	s.Error(err)
}

func (s *ContributionRepositorySuite) TestCachedRepositoryInvalidatesOnCreate() {
	pg := repository.NewPgContributionRepository(s.pool, s.logger)
	repo := repository.NewCachedContributionRepository(pg, s.redisClient, time.Minute, s.logger)

	s.create(repo, "cached one", models.ContributionResearch, "A")

	first, err := repo.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(first, 1)

	// A write behind the cache's back stays invisible until the next Create.
	s.create(pg, "direct", models.ContributionDataset, "B")
	stale, err := repo.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Len(stale, 1)

	s.create(repo, "cached two", models.ContributionCommunity, "C")
	fresh, err := repo.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Len(fresh, 3)

	filtered, err := repo.ListFiltered(s.ctx, []models.ContributionType{models.ContributionDataset}, "")
	s.Require().NoError(err)
	s.Require().Len(filtered, 1)
	s.Equal("direct", filtered[0].Title)
}
