package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"funquiz/internal/app"
	"funquiz/internal/config"
	"funquiz/internal/generate"
	"funquiz/internal/infra/memory"
	"funquiz/internal/infra/postgres"
	redisinfra "funquiz/internal/infra/redis"
	"funquiz/internal/selection"
	transport "funquiz/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	sessionTTL := config.TTLDuration(cfg.Redis.TTL, 24*time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var sessions app.SessionStore
	if redisClient != nil {
		sessions = redisinfra.NewSessionStore(redisClient, sessionTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	var leaderboard app.LeaderboardStore
	switch {
	case redisClient != nil:
		leaderboard = redisinfra.NewLeaderboard(redisClient)
	case cfg.Leaderboard.File != "":
		leaderboard, err = memory.NewLeaderboardWithFile(cfg.Leaderboard.File)
		if err != nil {
			return err
		}
	default:
		leaderboard = memory.NewLeaderboard()
	}

	memoryRepo := memory.NewQuestionRepository(nil)
	var questions selection.QuestionRepository = memoryRepo
	if pool != nil {
		questions = postgres.NewQuestionRepository(pool)
	}

	var generator app.Generator
	if cfg.Generator.Script != "" {
		generator = generate.NewRunner(cfg.Generator.Python, cfg.Generator.Script, cfg.Generator.Dir)
	} else {
		// No generator script configured: synthesize placeholder
		// questions so the quiz stays playable in dev setups.
		generator = generate.NewStatic(memoryRepo)
	}

	service := app.NewQuizService(sessions, selection.NewPolicy(questions), leaderboard, generator)

	playOpts := []transport.PlayOption{}
	if cfg.Quiz.QuestionSeconds > 0 {
		playOpts = append(playOpts, transport.WithPlayQuestionDuration(time.Duration(cfg.Quiz.QuestionSeconds)*time.Second))
	}
	mux := transport.NewMux(transport.NewAPI(service), transport.NewPlayHandler(service, playOpts...))

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
