package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"notifications", "payments", "orders", "affiliates", "user_permissions", "permissions", "services", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		seedUser(db, "admin@boostify.dev", "Store Admin", string(hash))
		seedUser(db, "customer@boostify.dev", "Sample Customer", string(hash))

		permissions := []struct {
			Name string
			Desc string
		}{
			{"manage_services", "Can create, update and delete catalog services"},
			{"manage_orders", "Can view all orders and change their status"},
			{"payout_affiliates", "Can send affiliate payouts"},
		}

		for _, p := range permissions {
			var pid int64
			row := db.Raw("SELECT id FROM permissions WHERE name = ?", p.Name).Row()
			if err := row.Scan(&pid); err != nil {
				if err := db.Exec("INSERT INTO permissions (name, description, created_at) VALUES (?, ?, now())", p.Name, p.Desc).Error; err != nil {
					log.Fatalf("failed to insert permission %s: %v", p.Name, err)
				}
			}
		}

		var adminUserID int64
		if err := db.Raw("SELECT id FROM users WHERE email = ?", "admin@boostify.dev").Row().Scan(&adminUserID); err != nil {
			log.Fatalf("failed to lookup admin user id: %v", err)
		}

		for _, p := range permissions {
			if err := db.Exec(`
				INSERT INTO user_permissions (user_id, permission_id, created_at)
				SELECT ?, id, now() FROM permissions WHERE name = ?
				ON CONFLICT DO NOTHING`, adminUserID, p.Name).Error; err != nil {
				log.Fatalf("failed to grant %s to admin: %v", p.Name, err)
			}
		}
		fmt.Println("Granted admin permissions to admin@boostify.dev")

		services := []struct {
			Name        string
			Description string
			PriceCents  int64
			Category    string
		}{
			{"1000 Instagram Followers", "High quality followers delivered gradually", 1499, "Followers"},
			{"5000 Video Views", "Views from real accounts, no drop guarantee", 999, "Views"},
			{"500 Post Likes", "Likes spread across selected posts", 499, "Likes"},
			{"Growth Playbook (PDF)", "Step by step guide to organic account growth", 2900, "Digital Library"},
		}

		for _, s := range services {
			var sid int64
			row := db.Raw("SELECT id FROM services WHERE name = ?", s.Name).Row()
			if err := row.Scan(&sid); err != nil {
				if err := db.Exec(`
					INSERT INTO services (name, description, price_cents, category, is_active, created_at, updated_at)
					VALUES (?, ?, ?, ?, true, now(), now())`,
					s.Name, s.Description, s.PriceCents, s.Category).Error; err != nil {
					log.Fatalf("failed to insert service %s: %v", s.Name, err)
				}
				fmt.Println("Seeded service:", s.Name)
			}
		}

		fmt.Println("Seeding complete")
	},
}

func seedUser(db *gorm.DB, email, name, passwordHash string) {
	var exists int
	row := db.Raw("SELECT 1 FROM users WHERE email = ?", email).Row()
	if err := row.Scan(&exists); err == nil {
		fmt.Println("user already exists:", email)
		return
	}

	if err := db.Exec(`
		INSERT INTO users (email, name, password_hash, is_active, created_at, updated_at)
		VALUES (?, ?, ?, true, now(), now())`, email, name, passwordHash).Error; err != nil {
		log.Fatalf("failed to insert user %s: %v", email, err)
	}
	fmt.Println("Seeded user:", email)
}
