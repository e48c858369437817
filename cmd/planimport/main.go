package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/rondoninha/leitura/internal/database"
	"github.com/rondoninha/leitura/internal/importer"
	"github.com/rondoninha/leitura/internal/logging"
	"github.com/rondoninha/leitura/internal/store"
)

// planimport loads a reading plan from an xlsx spreadsheet without going
// through the web UI. Useful for first setup and for fixing a plan from a
// shell.
func main() {
	_ = godotenv.Load()

	var (
		file = flag.String("file", "", "path to the xlsx spreadsheet")
		name = flag.String("name", "", "name of the plan to create")
	)
	flag.Parse()

	if *file == "" || *name == "" {
		fmt.Fprintln(os.Stderr, "usage: planimport -file plan.xlsx -name \"Plano 2026\"")
		os.Exit(2)
	}

	dbPath := os.Getenv("LEITURA_DB_PATH")
	if dbPath == "" {
		dbPath = "leitura.db"
	}

	logger := logging.Setup(os.Getenv("LEITURA_LOG_LEVEL"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("failed to open spreadsheet: %v", err)
	}
	defer f.Close()

	im := importer.New(store.NewPlanStore(db), logger)
	result, err := im.Import(f, *name)
	if err != nil {
		if result != nil {
			for _, re := range result.RowErrors {
				fmt.Fprintln(os.Stderr, re.Error())
			}
		}
		log.Fatalf("import failed: %v", err)
	}

	fmt.Printf("imported %q: %d entries, %d chapters\n", result.PlanName, result.EntriesAdded, result.TotalChapters)
}
