package main

import (
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"mechbook/internal/database"
	"mechbook/internal/domain"
)

// Dev seeding: wipes the local sqlite database and fills it with a known
// set of users and service listings.
func main() {
	db, err := database.Connect("mechbook.db")
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM payments")
	db.Exec("DELETE FROM additional_charges")
	db.Exec("DELETE FROM booking_status_history")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM services")
	db.Exec("DELETE FROM users")

	log.Println("Creating users...")

	adminHash, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	admin := domain.User{
		Email:        "admin@mechbook.local",
		PasswordHash: string(adminHash),
		Role:         domain.RoleAdmin,
		Name:         "Admin",
	}
	db.Create(&admin)
	log.Println("Admin created: admin@mechbook.local / admin123")

	customers := []domain.User{}
	for i, email := range []string{"rahim@mail.com", "karim@gmail.com", "nadia@yahoo.com"} {
		hash, _ := bcrypt.GenerateFromPassword([]byte("customer123"), bcrypt.DefaultCost)
		c := domain.User{
			Email:        email,
			PasswordHash: string(hash),
			Role:         domain.RoleCustomer,
			Name:         fmt.Sprintf("Customer %d", i+1),
			Phone:        fmt.Sprintf("+880171234%04d", i+1),
		}
		db.Create(&c)
		customers = append(customers, c)
	}

	mechanics := []domain.User{}
	for i, email := range []string{"salam@autocare.com", "jamal@quickfix.com", "rafiq@motorworks.com"} {
		hash, _ := bcrypt.GenerateFromPassword([]byte("mechanic123"), bcrypt.DefaultCost)
		m := domain.User{
			Email:        email,
			PasswordHash: string(hash),
			Role:         domain.RoleMechanic,
			Name:         fmt.Sprintf("Mechanic %d", i+1),
			Phone:        fmt.Sprintf("+880181234%04d", i+1),
			IsAvailable:  true,
		}
		db.Create(&m)
		mechanics = append(mechanics, m)
	}

	log.Println("Creating services...")
	listings := []struct {
		title    string
		category string
		price    float64
		duration int
	}{
		{"Engine oil change", "maintenance", 1200, 45},
		{"Brake pad replacement", "brakes", 2500, 90},
		{"Full engine diagnostic", "diagnostics", 1800, 60},
		{"AC gas refill", "climate", 3000, 75},
		{"Battery replacement", "electrical", 1500, 30},
		{"Clutch adjustment", "transmission", 2200, 120},
	}
	for i, l := range listings {
		m := mechanics[i%len(mechanics)]
		svc := domain.Service{
			MechanicID:        m.ID,
			Title:             l.title,
			Description:       fmt.Sprintf("%s by %s", l.title, m.Name),
			Category:          l.category,
			BasePrice:         l.price,
			EstimatedDuration: l.duration,
			IsActive:          true,
			IsAvailable:       true,
		}
		db.Create(&svc)
	}

	log.Printf("Seed complete: %d customers, %d mechanics, %d services",
		len(customers), len(mechanics), len(listings))
}
