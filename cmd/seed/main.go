// Command main runs the database seeder for Gatehouse.
package main

import (
	"flag"
	"log"

	"gatehouse/internal/config"
	"gatehouse/internal/database"
	"gatehouse/internal/seed"
)

func main() {
	// Parse command line flags
	numPending := flag.Int("pending", 5, "Number of pending signups to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d pending signups, clean=%v\n", *numPending, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run seeder
	s := seed.NewSeeder(db)
	if err := s.Seed(cfg, seed.Options{
		NumPendingUsers: *numPending,
		ShouldClean:     *shouldClean,
	}); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with demo data.")
	log.Println("📧 All demo users have the password: password123")
}
