package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/On-Jun9/MediaSort/internal/dupes"
	"github.com/On-Jun9/MediaSort/pkg/types"
)

type PairView struct {
	First        string `json:"first"`
	Second       string `json:"second"`
	NotDuplicate bool   `json:"not_duplicate"`
}

type DuplicatesResponse struct {
	SessionID string     `json:"session_id"`
	Folder    string     `json:"folder"`
	ScannedAt time.Time  `json:"scanned_at"`
	Pairs     []PairView `json:"pairs"`
	Overrides int        `json:"overrides"`
}

type ScanRequest struct {
	Folder string `json:"folder"`
}

type MoveRequest struct {
	Target   string               `json:"target"`
	Conflict types.ConflictPolicy `json:"conflict,omitempty"`
}

func sessionView(sess *dupes.Session) DuplicatesResponse {
	pairs := make([]PairView, 0, len(sess.Pairs))
	for _, p := range sess.Pairs {
		pairs = append(pairs, PairView{First: p.First, Second: p.Second, NotDuplicate: sess.IsNotDuplicate(p)})
	}
	return DuplicatesResponse{
		SessionID: sess.ID,
		Folder:    sess.Folder,
		ScannedAt: sess.ScannedAt,
		Pairs:     pairs,
		Overrides: sess.Overrides.Len(),
	}
}

func (s *Server) handleScanDuplicates(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Folder == "" {
		writeValidationError(w, "folder", "folder path is required")
		return
	}
	folder, err := filepath.Abs(req.Folder)
	if err != nil {
		writeValidationError(w, "folder", err.Error())
		return
	}

	pairs, err := dupes.NewScanner(s.fs, s.logger).Scan(folder)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeAPIError(w, http.StatusNotFound, err.Error())
			return
		}
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.sessionMu.Lock()
	// a rescan of the same folder keeps the operator's decisions
	if s.session == nil || s.session.Folder != folder {
		s.session = dupes.NewSession()
	}
	s.session.Load(folder, pairs)
	view := sessionView(s.session)
	s.sessionMu.Unlock()

	s.rememberPaths("", "", folder)
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleGetDuplicates(w http.ResponseWriter, r *http.Request) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	if s.session == nil {
		writeAPIError(w, http.StatusNotFound, "no duplicate scan yet")
		return
	}
	writeJSON(w, http.StatusOK, sessionView(s.session))
}

func (s *Server) handleMarkNotDuplicate(w http.ResponseWriter, r *http.Request) {
	var pair types.DuplicatePair
	if err := json.NewDecoder(r.Body).Decode(&pair); err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}
	if pair.First == "" || pair.Second == "" {
		writeValidationError(w, "pair", "both first and second paths are required")
		return
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	if s.session == nil {
		writeAPIError(w, http.StatusNotFound, "no duplicate scan yet")
		return
	}

	added := s.session.MarkNotDuplicate(pair)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"added":     added,
		"overrides": s.session.Overrides.Len(),
	})
}

func (s *Server) handleCleanDuplicates(w http.ResponseWriter, r *http.Request) {
	s.resolveDuplicates(w, r, dupes.OperationClean, MoveRequest{})
}

func (s *Server) handleMoveDuplicates(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Target == "" {
		writeValidationError(w, "target", "target folder is required")
		return
	}
	target, err := filepath.Abs(req.Target)
	if err != nil {
		writeValidationError(w, "target", err.Error())
		return
	}
	req.Target = target

	switch req.Conflict {
	case "", types.ConflictPolicySkip, types.ConflictPolicyRename:
	default:
		writeValidationError(w, "conflict", "conflict must be skip or rename")
		return
	}

	s.resolveDuplicates(w, r, dupes.OperationMove, req)
}

// resolveDuplicates runs clean or move on the current session under the run
// locks and records the outcome.
func (s *Server) resolveDuplicates(w http.ResponseWriter, r *http.Request, op string, req MoveRequest) {
	if !s.runMu.TryLock() {
		writeAPIError(w, http.StatusConflict, errAlreadyRunning)
		return
	}
	defer s.runMu.Unlock()

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	if s.session == nil {
		writeAPIError(w, http.StatusNotFound, "no duplicate scan yet")
		return
	}

	lock, err := s.acquireFileLock()
	if err != nil {
		writeAPIError(w, http.StatusConflict, err.Error())
		return
	}
	defer lock.Release()

	policy := s.cfg.MoveConflict
	if req.Conflict != "" {
		policy = req.Conflict
	}
	resolver := dupes.NewResolver(s.fs, s.logger, policy)

	var summary types.ResolveSummary
	entry := types.HistoryEntry{Source: s.session.Folder}
	if op == dupes.OperationMove {
		summary, err = resolver.MoveTo(r.Context(), s.session, req.Target)
		entry.Kind = types.HistoryKindMove
		entry.Dest = req.Target
	} else {
		summary, err = resolver.CleanNow(r.Context(), s.session)
		entry.Kind = types.HistoryKindClean
	}

	entry.Resolve = &summary
	entry.Cancelled = errors.Is(err, context.Canceled)
	s.recordHistory(entry)

	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
