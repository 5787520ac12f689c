// Package doctor validates slackbridge configuration and connectivity.
package doctor

import (
	"context"
	"strings"
	"time"

	"slackbridge/internal/config"
	"slackbridge/internal/storage"
)

// Result holds the outcome of a validation run.
type Result struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Issue describes a single validation error or warning.
type Issue struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
}

// Pinger reports whether the generation endpoint is reachable and usable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Doctor validates a loaded configuration and its external dependencies.
type Doctor struct {
	cfg *config.Config
	llm Pinger
}

// New creates a Doctor. llm may be nil to skip the connectivity probe.
func New(cfg *config.Config, llm Pinger) *Doctor {
	return &Doctor{cfg: cfg, llm: llm}
}

// Validate runs all checks and returns a result.
func (d *Doctor) Validate(ctx context.Context) *Result {
	r := &Result{Valid: true}

	d.checkCredentials(r)
	d.checkState(ctx, r)
	d.checkLLM(ctx, r)

	r.Valid = len(r.Errors) == 0
	return r
}

func (d *Doctor) addError(r *Result, category, field, msg string) {
	r.Errors = append(r.Errors, Issue{Category: category, Field: field, Message: msg})
}

func (d *Doctor) addWarning(r *Result, category, field, msg string) {
	r.Warnings = append(r.Warnings, Issue{Category: category, Field: field, Message: msg})
}

func (d *Doctor) checkCredentials(r *Result) {
	if d.cfg.Slack.SigningSecret == "" {
		d.addError(r, "credentials", "slack.signing_secret", "signing secret is not set")
	}
	if d.cfg.Slack.BotToken == "" {
		d.addError(r, "credentials", "slack.bot_token", "bot token is not set")
	} else if !strings.HasPrefix(d.cfg.Slack.BotToken, "xoxb-") {
		d.addWarning(r, "credentials", "slack.bot_token",
			"bot token does not look like a bot token (expected xoxb- prefix)")
	}
	if d.cfg.LLM.Token == "" {
		d.addError(r, "credentials", "llm.token", "generation API token is not set")
	}
}

// checkState verifies the SQLite database can be opened and bootstrapped.
func (d *Doctor) checkState(ctx context.Context, r *Result) {
	if d.cfg.State.Path == "" {
		d.addError(r, "state", "state.path", "state path is not set")
		return
	}

	db, err := storage.OpenSQLite(ctx, d.cfg.State.Path)
	if err != nil {
		d.addError(r, "state", "state.path", "cannot open state database: "+err.Error())
		return
	}
	defer db.Close()

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions;`).Scan(&n); err != nil {
		d.addError(r, "state", "state.path", "cannot query question bank: "+err.Error())
		return
	}
	if n == 0 {
		d.addWarning(r, "state", "state.path",
			"question bank is empty; training mode will have nothing to ask (run 'slackbridge questions load')")
	}
}

// checkLLM probes the generation endpoint with a one-word prompt.
func (d *Doctor) checkLLM(ctx context.Context, r *Result) {
	if d.llm == nil {
		return
	}

	pctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := d.llm.Ping(pctx); err != nil {
		d.addError(r, "llm", "llm.base_url", "generation endpoint probe failed: "+err.Error())
	}
}
