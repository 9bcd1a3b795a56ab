package main

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"bizdir/internal/config"
	"bizdir/internal/database"
	"bizdir/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

var (
	cities = []string{"Tel Aviv", "Haifa", "Jerusalem", "Eilat", "Be'er Sheva"}
	types  = []string{"Food", "Beauty", "Retail", "Services", "Health"}
	names  = []string{"Aroma", "Golden", "Corner", "Family", "Sunrise", "Harbor", "Olive", "Cedar"}
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("Migrate failed:", err)
	}

	// likes first, they point at businesses
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM likes")
	db.Exec("DELETE FROM businesses")
	db.Exec("DELETE FROM users")

	// ================== USERS ==================
	log.Println("Creating users...")

	now := time.Now().UTC()
	users := make([]domain.User, 0, 10)
	for i := 1; i <= 10; i++ {
		uid := fmt.Sprintf("seed-uid-%02d", i)
		u := domain.User{
			ID:            uuid.NewString(),
			UID:           uid,
			Email:         fmt.Sprintf("user%02d@example.com", i),
			DisplayName:   fmt.Sprintf("Seed User %d", i),
			EmailVerified: i%2 == 0,
			ProviderData:  []domain.ProviderInfo{{ProviderID: "google.com", UID: uid}},
			Metadata: domain.UserMetadata{
				CreationTime:   now.Format(time.RFC1123),
				LastSignInTime: now.Format(time.RFC1123),
			},
		}
		if err := db.Create(&u).Error; err != nil {
			log.Fatal("create user:", err)
		}
		users = append(users, u)
	}

	// ================== BUSINESSES ==================
	log.Println("Creating businesses...")

	businesses := make([]domain.Business, 0, 25)
	for i := 0; i < 25; i++ {
		b := domain.Business{
			ID:    uuid.NewString(),
			Title: fmt.Sprintf("%s %s", names[rand.Intn(len(names))], types[i%len(types)]),
			Type:  types[i%len(types)],
			City:  cities[rand.Intn(len(cities))],
			Phone: fmt.Sprintf("0%d-%07d", 2+rand.Intn(8), rand.Intn(10000000)),
		}
		// the first users own one business each, the rest are admin listings
		if i < len(users)/2 {
			owner := users[i].UID
			b.UserID = &owner
			b.Description = "Owner-managed listing"
		}
		if err := db.Create(&b).Error; err != nil {
			log.Fatal("create business:", err)
		}
		businesses = append(businesses, b)
	}

	// demo owner keeps a stable record across runs
	demoOwner := "demo-owner"
	demo := domain.Business{
		ID:          "00000000-0000-0000-0000-000000000001",
		UserID:      &demoOwner,
		Title:       "Demo Cafe",
		Type:        "Food",
		City:        "Tel Aviv",
		Phone:       "03-0000000",
		Website:     "https://example.com",
		Description: "Seeded demo business",
	}
	db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "type", "city", "phone", "website", "description", "updated_at"}),
	}).Create(&demo)
	businesses = append(businesses, demo)

	// ================== LIKES ==================
	log.Println("Creating likes...")

	created := 0
	for _, u := range users {
		for _, b := range businesses {
			if rand.Intn(4) != 0 {
				continue
			}
			like := domain.Like{ID: uuid.NewString(), UserID: u.UID, BusinessID: b.ID}
			if err := db.Create(&like).Error; err != nil {
				log.Fatal("create like:", err)
			}
			created++
		}
	}

	log.Printf("Seed completed: users=%d businesses=%d likes=%d", len(users), len(businesses), created)
}
