package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/On-Jun9/MediaSort/internal/organize"
	"github.com/On-Jun9/MediaSort/internal/runlock"
	"github.com/On-Jun9/MediaSort/pkg/types"
	"github.com/google/uuid"
)

const errAlreadyRunning = "an organize, clean or move operation is already running"

type OrganizeResponse struct {
	Status string `json:"status"`
	RunID  string `json:"run_id"`
}

// acquireFileLock takes the cross-process lock when one is configured.
func (s *Server) acquireFileLock() (*runlock.Lock, error) {
	if s.cfg.LockFile == "" {
		return nil, nil
	}
	return runlock.Acquire(s.cfg.LockFile)
}

func (s *Server) handleOrganize(w http.ResponseWriter, r *http.Request) {
	if !s.runMu.TryLock() {
		writeAPIError(w, http.StatusConflict, errAlreadyRunning)
		return
	}

	cfg := *s.cfg
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		s.runMu.Unlock()
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := cfg.Validate(); err != nil {
		s.runMu.Unlock()
		writeError(w, http.StatusBadRequest, err)
		return
	}

	lock, err := s.acquireFileLock()
	if err != nil {
		s.runMu.Unlock()
		writeAPIError(w, http.StatusConflict, err.Error())
		return
	}

	opts := organize.Options{
		RunID:            uuid.NewString(),
		Source:           cfg.Source,
		Dest:             cfg.Dest,
		Template:         cfg.Structure,
		UncategorizedDir: cfg.UncategorizedDir,
		DryRun:           cfg.DryRun,
		HashVerify:       cfg.HashVerify,
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancelMu.Lock()
	s.cancelRun = cancel
	s.cancelMu.Unlock()

	s.rememberPaths(cfg.Source, cfg.Dest, "")
	writeJSON(w, http.StatusOK, OrganizeResponse{Status: "started", RunID: opts.RunID})

	go s.runOrganize(ctx, opts, lock)
}

// runOrganize streams one run's events to websocket clients and records it.
func (s *Server) runOrganize(ctx context.Context, opts organize.Options, lock *runlock.Lock) {
	defer s.runMu.Unlock()
	defer lock.Release()
	defer func() {
		s.cancelMu.Lock()
		s.cancelRun()
		s.cancelRun = nil
		s.cancelMu.Unlock()
	}()
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error(fmt.Sprintf("organize run %s panicked", opts.RunID), fmt.Errorf("%v", rec))
			s.broadcastJSON(organize.Event{Type: organize.EventError, RunID: opts.RunID, Error: fmt.Sprintf("Internal Server Error: %v", rec)})
		}
	}()

	events := make(chan organize.Event)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			s.broadcastJSON(ev)
		}
	}()

	stats, err := organize.New(s.fs, s.logger).Run(ctx, opts, events)
	<-done

	if err != nil && !errors.Is(err, context.Canceled) {
		// the engine already emitted an error event
		return
	}
	s.recordHistory(types.HistoryEntry{
		ID:        opts.RunID,
		Kind:      types.HistoryKindOrganize,
		Source:    opts.Source,
		Dest:      opts.Dest,
		Stats:     &stats,
		Cancelled: errors.Is(err, context.Canceled),
	})
}

func (s *Server) handleCancelOrganize(w http.ResponseWriter, r *http.Request) {
	s.cancelMu.Lock()
	cancel := s.cancelRun
	s.cancelMu.Unlock()

	if cancel == nil {
		writeAPIError(w, http.StatusConflict, "no organize run in progress")
		return
	}
	cancel()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelling"})
}

func (s *Server) recordHistory(entry types.HistoryEntry) {
	if s.history == nil {
		return
	}
	if _, err := s.history.Record(context.Background(), entry); err != nil {
		s.logger.Error("failed to record history", err)
	}
}

func (s *Server) broadcastJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.hub.broadcast <- data
}
