package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"slackbridge/internal/auth"
	"slackbridge/internal/config"
	"slackbridge/internal/dispatch"
	"slackbridge/internal/doctor"
	"slackbridge/internal/llm"
	"slackbridge/internal/log"
	"slackbridge/internal/messenger"
	"slackbridge/internal/server"
	"slackbridge/internal/storage"
	"slackbridge/internal/training"
)

const version = "1.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "start":
		os.Exit(runStart(args))
	case "doctor":
		os.Exit(runDoctor(args))
	case "questions":
		os.Exit(runQuestions(args))
	case "version":
		fmt.Printf("slackbridge version %s\n", version)
		os.Exit(0)
	case "help", "--help", "-h":
		printUsage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`slackbridge - Slack events to LLM bridge

Usage:
  slackbridge <command> [flags]

Commands:
  start             Start the webhook service in foreground
  doctor            Validate configuration and external connectivity
  questions load    Load a plain-text question bank into the database
  version           Show version information
  help              Show this help message

Flags (start, doctor, questions load):
  --config <path>   Path to config.yaml; omit to configure from environment

Flags (questions load):
  --file <path>     Question bank text file (required)
`)
}

// loadConfig builds configuration from a file when given, otherwise from the
// environment alone.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		return config.FromEnv()
	}
	return config.Load(configPath)
}

func runStart(args []string) int {
	var configPath string
	fs := flag.NewFlagSet("start", flag.ContinueOnError)
	fs.StringVar(&configPath, "config", "", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	log.Setup(cfg.Service.LogLevel, cfg.Service.LogFormat)
	logger := log.WithComponent("main")

	if configPath != "" {
		if fp, err := config.Fingerprint(configPath); err == nil {
			logger.Info("configuration loaded", "path", configPath, "fingerprint", fp)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := storage.OpenSQLite(ctx, cfg.State.Path)
	if err != nil {
		logger.Error("failed to open state database", "error", err)
		return 1
	}
	defer db.Close()

	generator := llm.New(cfg.LLM)
	poster := messenger.NewSlackPoster(cfg.Slack.BotToken)
	trainer := training.NewService(training.NewStore(db), generator, poster)

	runner := dispatch.NewRunner(cfg.Tasks.Workers, cfg.Tasks.Timeout)
	defer runner.Close()

	dispatcher := dispatch.New(runner, generator, poster, trainer)
	verifier := auth.NewVerifier(cfg.Slack.SigningSecret)

	srv := server.New(cfg.Server, verifier, dispatcher, log.WithComponent("server"))
	if err := srv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server exited", "error", err)
		return 1
	}

	logger.Info("shutdown complete")
	return 0
}

func runDoctor(args []string) int {
	var configPath string
	var skipProbe bool
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.StringVar(&configPath, "config", "", "Path to configuration file")
	fs.BoolVar(&skipProbe, "skip-probe", false, "Skip the generation endpoint probe")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	var pinger doctor.Pinger
	if !skipProbe {
		pinger = llm.New(cfg.LLM)
	}

	result := doctor.New(cfg, pinger).Validate(context.Background())

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))

	if !result.Valid {
		return 1
	}
	return 0
}

func runQuestions(args []string) int {
	if len(args) < 1 || args[0] != "load" {
		fmt.Fprintln(os.Stderr, "Usage: slackbridge questions load --file <path> [--config <path>]")
		return 1
	}

	var configPath, filePath string
	fs := flag.NewFlagSet("questions load", flag.ContinueOnError)
	fs.StringVar(&configPath, "config", "", "Path to configuration file")
	fs.StringVar(&filePath, "file", "", "Question bank text file")
	if err := fs.Parse(args[1:]); err != nil {
		return 1
	}
	if filePath == "" {
		fmt.Fprintln(os.Stderr, "--file is required")
		return 1
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	f, err := os.Open(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open question bank: %v\n", err)
		return 1
	}
	defer f.Close()

	questions, err := training.ParseQuestionBank(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Parse error: %v\n", err)
		return 1
	}

	ctx := context.Background()
	db, err := storage.OpenSQLite(ctx, cfg.State.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open state database: %v\n", err)
		return 1
	}
	defer db.Close()

	if err := training.NewStore(db).ReplaceQuestions(ctx, questions); err != nil {
		fmt.Fprintf(os.Stderr, "Load failed: %v\n", err)
		return 1
	}

	fmt.Printf("Loaded %d questions into %s\n", len(questions), cfg.State.Path)
	return 0
}
