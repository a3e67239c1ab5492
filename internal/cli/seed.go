package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"funquiz/internal/config"
	"funquiz/internal/domain"
	"funquiz/internal/infra/postgres"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
)

// NewSeedCmd loads a question bank JSON file into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load questions from a JSON file into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to the question bank JSON file")
	return cmd
}

func runSeed(ctx context.Context, configPath, file string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	if file == "" {
		file = cfg.Quiz.SeedFile
	}
	if file == "" {
		return fmt.Errorf("no seed file given; use --file or quiz.seed_file")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	var questions []domain.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return fmt.Errorf("parse %s: %w", file, err)
	}
	if len(questions) == 0 {
		return fmt.Errorf("%s contains no questions", file)
	}
	for i, q := range questions {
		if q.ID == "" || q.Prompt == "" || len(q.Options) < 2 {
			return fmt.Errorf("question %d is incomplete", i)
		}
		if !q.Difficulty.Valid() {
			return fmt.Errorf("question %s has unknown difficulty %q", q.ID, q.Difficulty)
		}
	}

	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.NewQuestionRepository(pool).Insert(ctx, questions...); err != nil {
		return err
	}
	log.Printf("seeded %d questions from %s", len(questions), file)
	return nil
}
