// Command memsim is the interactive memory-system simulator's REPL
// entry point (spec.md §6).
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/sisoputnfrba/go-memsim/internal/config"
	"github.com/sisoputnfrba/go-memsim/internal/facade"
	"github.com/sisoputnfrba/go-memsim/internal/repl"
)

func main() {
	configPath := flag.String("config", "", "optional JSON file overriding cache/VM defaults")
	logLevel := flag.String("log-level", "info", "debug, info, warn, or error")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(*logLevel),
	}))

	defaults, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	m := facade.New(defaults, log)
	repl.Run(m, os.Stdin, os.Stdout)
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
