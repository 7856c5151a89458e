// Command prayerlock-companion runs once per OS wake-up: it reads the
// blocking record the host daemon last wrote and re-applies
// enforcement if the record is active and current. It never releases.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/sweeney/prayerlock/internal/companion"
	"github.com/sweeney/prayerlock/internal/config"
	"github.com/sweeney/prayerlock/internal/enforce"
	"github.com/sweeney/prayerlock/internal/store"
)

func main() {
	configPath := flag.String("config", "/etc/prayerlock/config.yaml", "Config file path")
	dbPath := flag.String("db", "", "Shared SQLite store path (overrides config)")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall run timeout")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("fatal: open shared store: %v", err)
	}
	defer st.Close()

	enforcer := enforce.NewRealAdapter(enforce.HelperConfig{
		Activate: cfg.Enforce.Activate,
		Release:  cfg.Enforce.Release,
		Check:    cfg.Enforce.Check,
		Request:  cfg.Enforce.Request,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	activated, err := companion.Run(ctx, st, enforcer, time.Now().In(loc))
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if activated {
		log.Printf("done: enforcement re-applied")
	} else {
		log.Printf("done: no action")
	}
}
