package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/On-Jun9/MediaSort/internal/config"
	"github.com/On-Jun9/MediaSort/internal/history"
	"github.com/On-Jun9/MediaSort/internal/log"
	"github.com/On-Jun9/MediaSort/pkg/types"
	"github.com/mattn/go-isatty"
)

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func openLogger(cfg *config.Config, console io.Writer) (*log.Logger, error) {
	logger, err := log.New(cfg.LogFile, cfg.LogJSON, true)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger.SetConsole(console)
	return logger, nil
}

// recordHistory appends entry to the history database. Failures are reported
// but never fail the command that already did its work.
func recordHistory(cfg *config.Config, entry types.HistoryEntry, errOut io.Writer) {
	if cfg.HistoryFile == "" {
		return
	}
	store, err := history.Open(cfg.HistoryFile)
	if err != nil {
		fmt.Fprintf(errOut, "Warning: failed to open history: %v\n", err)
		return
	}
	defer store.Close()

	if _, err := store.Record(context.Background(), entry); err != nil {
		fmt.Fprintf(errOut, "Warning: failed to record history: %v\n", err)
	}
}
