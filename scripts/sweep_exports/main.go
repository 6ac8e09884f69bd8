// Command sweep_exports deletes export artifacts older than the retention
// window. Run it from cron; job rows in Postgres keep their history, only
// the files on disk are pruned.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/brainspot/timesheet-api/pkg/config"
	"github.com/brainspot/timesheet-api/pkg/storage"
)

func main() {
	var (
		dir    string
		maxAge time.Duration
		dryRun bool
	)

	flag.StringVar(&dir, "dir", "", "Export storage directory (defaults to EXPORTS_STORAGE_DIR)")
	flag.DurationVar(&maxAge, "max-age", 30*24*time.Hour, "Delete artifacts older than this")
	flag.BoolVar(&dryRun, "dry-run", false, "Report what would be deleted without deleting")
	flag.Parse()

	if dir == "" {
		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		dir = cfg.Exports.StorageDir
	}

	store, err := storage.NewLocalStorage(dir)
	if err != nil {
		log.Fatalf("failed to open storage dir %s: %v", dir, err)
	}

	if dryRun {
		log.Printf("dry run: would sweep artifacts older than %s from %s", maxAge, dir)
		return
	}

	removed, err := store.Sweep(maxAge)
	if err != nil {
		log.Fatalf("sweep failed: %v", err)
	}
	log.Printf("swept %d artifacts older than %s from %s", removed, maxAge, dir)
}
