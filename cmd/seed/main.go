package main

import (
	"flag"
	"log"
	"os"

	"github.com/cafemanage/api/internal/docstore"
	"github.com/cafemanage/api/internal/store"
)

func main() {
	// CLI flags
	dir := flag.String("dir", "", "Data directory")
	force := flag.Bool("force", false, "Overwrite existing documents with defaults")
	flag.Parse()

	// Fall back to environment variable, then default
	if *dir == "" {
		*dir = os.Getenv("DATA_DIR")
	}
	if *dir == "" {
		*dir = "./data"
	}

	if *force {
		log.Println("WARNING: -force overwrites menu, tables, settings, and users with defaults!")
	}

	db, err := docstore.Open(*dir)
	if err != nil {
		log.Fatalf("Unable to open data directory: %v", err)
	}

	st := store.New(db)
	if err := st.Seed(*force); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}

	log.Printf("Seed complete in %s (default logins: admin/admin123, staff/staff123)", *dir)
	log.Println("WARNING: Change the default passwords before going to production!")
}
