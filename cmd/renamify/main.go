package main

import (
	"log/slog"
	"os"
)

func main() {
	if os.Getenv("RENAMIFY_DEBUG") != "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
