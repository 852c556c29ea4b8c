package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"pollbot/internal/app"
	"pollbot/internal/config"
	"pollbot/internal/lib/logger/sl"
	"pollbot/internal/lib/migrator"
	"strconv"
	"syscall"
)

const usage = `usage:
  pollbot                      run the bot
  pollbot migrate up           apply all migrations
  pollbot migrate down <N>     roll back the last N migrations
  pollbot migrate version      print the current schema version`

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	if len(os.Args) > 1 {
		if err := runCommand(log, cfg, os.Args[1:]); err != nil {
			log.Error("command failed", sl.Err(err))
			os.Exit(1)
		}
		return
	}

	log.Info("starting pollbot", slog.String("env", cfg.Env))

	application := app.MustNew(log, cfg)

	go application.MustRun()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	sign := <-stop
	log.Info("received signal", slog.String("signal", sign.String()))

	application.GracefulShutdown()

	log.Info("pollbot stopped")
}

func runCommand(log *slog.Logger, cfg *config.Config, args []string) error {
	if args[0] != "migrate" || len(args) < 2 {
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}

	switch args[1] {
	case "up":
		return migrator.RunMigrations(cfg.Postgres, log)
	case "down":
		if len(args) != 3 {
			return fmt.Errorf("missing step count\n%s", usage)
		}
		steps, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid step count %q: %w", args[2], err)
		}
		return migrator.RollbackMigrations(cfg.Postgres, log, steps)
	case "version":
		version, dirty, err := migrator.Version(cfg.Postgres)
		if err != nil {
			return err
		}
		log.Info("schema version", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
		return nil
	}

	return fmt.Errorf("unknown migrate action %q\n%s", args[1], usage)
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case config.EnvLocal:
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case config.EnvDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}
