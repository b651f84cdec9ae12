package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"lotto/cmd"
	"lotto/database"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("Failed to load .env file: %v", err)
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			if err := handleMigrationCommand(os.Args[2:]); err != nil {
				log.Fatalf("Migration error: %v", err)
			}
			return
		case "analyze":
			if err := handleAnalyzeCommand(os.Args[2:]); err != nil {
				log.Fatalf("Analysis error: %v", err)
			}
			return
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func handleMigrationCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: lotto migrate [up|down|status] [args...]")
	}

	if os.Getenv("DATABASE_URL") == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	databaseURL, err := database.ConstructDatabaseURL(os.Getenv("DATABASE_URL"), os.Getenv("DATABASE_NAME"))
	if err != nil {
		return err
	}
	migrator := database.NewMigrator(databaseURL)

	switch args[0] {
	case "up":
		return migrator.Up()
	case "down":
		steps := "1"
		if len(args) > 1 {
			steps = args[1]
		}
		return migrator.Down(steps)
	case "status":
		version, dirty, err := migrator.Status()
		if err != nil {
			return err
		}
		fmt.Printf("Current version: %d (dirty: %t)\n", version, dirty)
		return nil
	default:
		return fmt.Errorf("unknown migration command: %s", args[0])
	}
}

func handleAnalyzeCommand(args []string) error {
	trials := cmd.DefaultAnalysisTrials
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid trials value %q", args[0])
		}
		trials = n
	}
	return cmd.Analyze(os.Stdout, trials)
}
