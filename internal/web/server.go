package web

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/On-Jun9/MediaSort/internal/config"
	"github.com/On-Jun9/MediaSort/internal/dupes"
	"github.com/On-Jun9/MediaSort/internal/history"
	"github.com/On-Jun9/MediaSort/internal/log"
	"github.com/gorilla/mux"
	"github.com/spf13/afero"
)

type Server struct {
	router    *mux.Router
	hub       *Hub
	version   string
	fs        afero.Fs
	cfg       *config.Config
	userData  *config.UserDataManager
	history   *history.Store
	logger    *log.Logger
	staticDir string

	// runMu admits one mutating operation (organize, clean, move) at a time.
	runMu     sync.Mutex
	cancelMu  sync.Mutex
	cancelRun context.CancelFunc

	sessionMu sync.Mutex
	session   *dupes.Session
}

// NewServer returns a server whose requests default to cfg. A nil cfg means
// config.DefaultConfig.
func NewServer(cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Server{
		router:  mux.NewRouter(),
		hub:     NewHub(),
		version: "unknown",
		fs:      afero.NewOsFs(),
		cfg:     cfg,
		logger:  log.Discard(),
	}

	go s.hub.Run()

	s.setupRoutes()
	return s
}

func (s *Server) SetVersion(v string) {
	s.version = v
}

// SetHistory enables run recording and GET /api/history.
func (s *Server) SetHistory(store *history.Store) {
	s.history = store
}

// SetUserData enables the settings and path-history endpoints.
func (s *Server) SetUserData(m *config.UserDataManager) {
	s.userData = m
}

func (s *Server) SetLogger(l *log.Logger) {
	if l == nil {
		l = log.Discard()
	}
	s.logger = l
}

// SetStaticDir serves a web UI from dir for every non-API path.
func (s *Server) SetStaticDir(dir string) {
	if dir == "" || s.staticDir != "" {
		return
	}
	s.staticDir = dir
	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(dir)))
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/version", s.handleVersion).Methods("GET")
	api.HandleFunc("/browse", s.handleBrowse).Methods("GET")
	api.HandleFunc("/config", s.handleGetConfig).Methods("GET")
	api.HandleFunc("/organize", s.handleOrganize).Methods("POST")
	api.HandleFunc("/organize/cancel", s.handleCancelOrganize).Methods("POST")
	api.HandleFunc("/ws", s.handleWebSocket)

	// Duplicate review session
	api.HandleFunc("/duplicates/scan", s.handleScanDuplicates).Methods("POST")
	api.HandleFunc("/duplicates", s.handleGetDuplicates).Methods("GET")
	api.HandleFunc("/duplicates/not-duplicate", s.handleMarkNotDuplicate).Methods("POST")
	api.HandleFunc("/duplicates/clean", s.handleCleanDuplicates).Methods("POST")
	api.HandleFunc("/duplicates/move", s.handleMoveDuplicates).Methods("POST")

	api.HandleFunc("/history", s.handleGetHistory).Methods("GET")

	// UserData routes (settings, path history)
	api.HandleFunc("/settings", s.handleGetSettings).Methods("GET")
	api.HandleFunc("/settings", s.handleSaveSettings).Methods("POST")
	api.HandleFunc("/path-history", s.handleGetPathHistory).Methods("GET")
	api.HandleFunc("/path-history", s.handleSavePathHistory).Methods("POST")
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(addr string) error {
	fmt.Printf("Starting MediaSort Web UI at http://%s\n", addr)
	return http.ListenAndServe(addr, s.router)
}
