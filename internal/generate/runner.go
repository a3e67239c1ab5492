// Package generate wraps the external question-generator script. The
// engine never depends on how questions are produced, only that new
// rows appear in the question store after a successful pass.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	"funquiz/internal/app"
	"funquiz/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Runner shells out to the generator CLI
// (`python quiz_generator.py generate --topic T --difficulty D --count N`)
// and parses its JSON report. Concurrent requests for the same topic
// and difficulty collapse into one run.
type Runner struct {
	python string
	script string
	dir    string
	sf     singleflight.Group
}

// NewRunner builds a runner. dir is the working directory the script
// expects (it resolves its own data paths relative to it).
func NewRunner(python, script, dir string) *Runner {
	if python == "" {
		python = "python"
	}
	return &Runner{python: python, script: script, dir: dir}
}

type scriptReport struct {
	Status     string `json:"status"`
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
	Generated  int    `json:"generated"`
	Saved      int    `json:"saved"`
	Message    string `json:"message"`
}

// Generate runs one generation pass and reports how many questions the
// script saved.
func (r *Runner) Generate(ctx context.Context, topic string, difficulty domain.Difficulty, count int) (app.GenerationReport, error) {
	key := topic + "|" + string(difficulty)
	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		return r.run(ctx, topic, difficulty, count)
	})
	if err != nil {
		return app.GenerationReport{}, err
	}
	return result.(app.GenerationReport), nil
}

func (r *Runner) run(ctx context.Context, topic string, difficulty domain.Difficulty, count int) (app.GenerationReport, error) {
	cmd := exec.CommandContext(ctx, r.python, r.script,
		"generate",
		"--topic", topic,
		"--difficulty", string(difficulty),
		"--count", strconv.Itoa(count),
	)
	cmd.Dir = r.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return app.GenerationReport{}, fmt.Errorf("generator run: %w (%s)", err, stderr.String())
	}

	var report scriptReport
	if err := json.Unmarshal(stdout.Bytes(), &report); err != nil {
		return app.GenerationReport{}, fmt.Errorf("generator output: %w", err)
	}
	if report.Status != "success" {
		return app.GenerationReport{}, fmt.Errorf("generator failed: %s", report.Message)
	}

	out := app.GenerationReport{
		Topic:      report.Topic,
		Difficulty: domain.Difficulty(report.Difficulty),
		Generated:  report.Generated,
		Saved:      report.Saved,
	}
	if out.Topic == "" {
		out.Topic = topic
	}
	if out.Difficulty == "" {
		out.Difficulty = difficulty
	}
	return out, nil
}
