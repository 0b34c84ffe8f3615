package main

import (
	"flag"
	"log"

	"github.com/On-Jun9/MediaSort/internal/config"
	"github.com/On-Jun9/MediaSort/internal/history"
	mslog "github.com/On-Jun9/MediaSort/internal/log"
	"github.com/On-Jun9/MediaSort/internal/web"
)

var (
	version = "dev" // set by ldflags during build
)

func main() {
	addr := flag.String("addr", "localhost:8080", "HTTP server address")
	static := flag.String("static", "", "directory with the web UI to serve")
	cfgFile := flag.String("config", "", "config file with request defaults (.yaml or .toml)")
	flag.Parse()

	cfg := config.DefaultConfig()
	if *cfgFile != "" {
		loaded, err := config.LoadFromFile(*cfgFile)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}
	if err := cfg.Normalize(); err != nil {
		log.Fatal(err)
	}

	logger, err := mslog.New(cfg.LogFile, cfg.LogJSON, true)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Close()

	userData, err := config.NewUserDataManager("")
	if err != nil {
		log.Fatal(err)
	}

	server := web.NewServer(cfg)
	server.SetVersion(version)
	server.SetLogger(logger)
	server.SetUserData(userData)
	server.SetStaticDir(*static)

	if cfg.HistoryFile != "" {
		store, err := history.Open(cfg.HistoryFile)
		if err != nil {
			log.Fatal(err)
		}
		defer store.Close()
		server.SetHistory(store)
	}

	if err := server.Start(*addr); err != nil {
		log.Fatal(err)
	}
}
