package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"live-polling-service/internal/domain"
	pgarchive "live-polling-service/internal/infra/postgres"
	pgmigrations "live-polling-service/internal/infra/postgres/migrations"
	redisarchive "live-polling-service/internal/infra/redis"
)

func TestPollHistoryArchivalEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	applyMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	summary := sampleSummary()

	pgStore := pgarchive.NewHistoryArchiver(pool)
	if err := pgStore.ArchivePoll(ctx, summary); err != nil {
		t.Fatalf("pg archive: %v", err)
	}
	// Second archive of the same poll must upsert, not duplicate.
	if err := pgStore.ArchivePoll(ctx, summary); err != nil {
		t.Fatalf("pg archive repeat: %v", err)
	}

	recent, err := pgStore.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("pg recent: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected one archived poll, got %d", len(recent))
	}
	if recent[0].Poll.ID != summary.Poll.ID || recent[0].FinalTally[0].Votes != 2 {
		t.Fatalf("archived summary mismatch: %+v", recent[0])
	}

	redisStore := redisarchive.NewHistoryStore(redisClient, 100, 5*time.Minute)
	if err := redisStore.ArchivePoll(ctx, summary); err != nil {
		t.Fatalf("redis archive: %v", err)
	}
	fromRedis, err := redisStore.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("redis recent: %v", err)
	}
	if len(fromRedis) != 1 || fromRedis[0].Poll.QuestionNumber != summary.Poll.QuestionNumber {
		t.Fatalf("redis summary mismatch: %+v", fromRedis)
	}
}

func sampleSummary() domain.PollSummary {
	return domain.PollSummary{
		Poll: domain.Poll{
			ID:               "poll-integration",
			QuestionNumber:   1,
			Question:         "Which planet is red?",
			Options:          []string{"Mars", "Venus"},
			TimeLimitSeconds: 60,
			CorrectAnswer:    "Mars",
			Status:           domain.PollClosed,
			CreatedAt:        time.Now().UTC(),
		},
		FinalTally: []domain.TallyEntry{
			{Option: "Mars", Votes: 2, Percentage: 67},
			{Option: "Venus", Votes: 1, Percentage: 33},
		},
		Answers:  3,
		ClosedAt: time.Now().UTC(),
	}
}

func applyMigrations(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "poll", "POSTGRES_PASSWORD": "pollpass", "POSTGRES_DB": "polldb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://poll:pollpass@%s:%s/polldb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
