package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mroshb/anonchat_bot/internal/config"
	"github.com/mroshb/anonchat_bot/internal/database"
	"github.com/mroshb/anonchat_bot/internal/reports"
	"github.com/mroshb/anonchat_bot/internal/repositories"
)

// Writes the moderation workbook the /reports command sends, for offline review.
func main() {
	days := flag.Int("days", 30, "include reports from the last N days")
	limit := flag.Int("limit", 10000, "maximum number of reports")
	top := flag.Int("top", 50, "rows in the most-reported sheet")
	outDir := flag.String("out", ".", "output directory")
	flag.Parse()

	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := time.Now()
	since := now.AddDate(0, 0, -*days)
	repo := repositories.NewReportRepository(db)

	list, err := repo.ListSince(ctx, since, *limit)
	if err != nil {
		log.Fatal(err)
	}
	ranking, err := repo.TopReported(ctx, since, *top)
	if err != nil {
		log.Fatal(err)
	}

	buf, err := reports.Workbook(list, ranking, now)
	if err != nil {
		log.Fatal(err)
	}

	path := filepath.Join(*outDir, reports.FileName(now))
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Exported %d reports (%d reported users) to %s\n", len(list), len(ranking), path)
}
