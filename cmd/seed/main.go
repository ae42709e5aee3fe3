package main

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"festreg/internal/database"
	"festreg/internal/domain"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "festreg.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("Migrate failed:", err)
	}

	// Cleanup old data (registrations first, they reference competitions)
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM registrations")
	db.Exec("DELETE FROM competitions")

	// ================== COMPETITIONS ==================
	log.Println("Creating competitions...")
	competitions := []domain.Competition{
		{Name: "National Barista Championship", Price: 2500, PassportRequired: true, City: "bengaluru"},
		{Name: "Latte Art Throwdown", Price: 1500, PassportRequired: false, City: "bengaluru"},
		{Name: "Brewers Cup", Price: 2000, PassportRequired: true, City: "bengaluru"},
		{Name: "Cupping Challenge", Price: 1000, PassportRequired: false, City: "bengaluru"},
		{Name: "Roaster Showcase", Price: 3000, PassportRequired: true, City: "bengaluru"},
	}
	for i := range competitions {
		if err := db.Create(&competitions[i]).Error; err != nil {
			log.Fatal("seed competition:", err)
		}
		log.Printf("  %s (id=%d, price=%.2f)", competitions[i].Name, competitions[i].ID, competitions[i].Price)
	}

	// ================== ADMIN ==================
	// Print a bcrypt hash for ADMIN_PASSWORD_HASH when a password is given.
	if pw := os.Getenv("SEED_ADMIN_PASSWORD"); pw != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal("bcrypt:", err)
		}
		log.Println("ADMIN_PASSWORD_HASH=" + string(hash))
	}

	log.Println("Seed completed.")
}
