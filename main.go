package main

import (
	"log/slog"
	"os"

	"github.com/Crowley723/site-monitor/cmd"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
