package main

import (
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/rightsvoice/backend/internal/config"
	"github.com/rightsvoice/backend/internal/entity"
	"github.com/rightsvoice/backend/internal/server"
	"github.com/rightsvoice/backend/pkg/database"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := seedRoles(db); err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}

	if cfg.AppEnv == "development" {
		if err := seedAdminUser(db); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
	} else {
		redisClient = redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	}

	srv := server.NewServer(cfg, db, redisClient)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.Post{},
		&entity.Comment{},
		&entity.Reaction{},
		&entity.PointsEarned{},
		&entity.PointsDeduction{},
		&entity.Complaint{},
		&entity.Article{},
		&entity.Notification{},
	)
}

func seedRoles(db *gorm.DB) error {
	defaultRoles := []entity.Role{
		{Name: "admin", Description: "Platform moderator"},
		{Name: "member", Description: "Regular member"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&entity.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func seedAdminUser(db *gorm.DB) error {
	var adminRole entity.Role
	if err := db.Where("name = ?", "admin").First(&adminRole).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", "admin@rightsvoice.org").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := entity.User{
		Username:     "admin",
		Email:        "admin@rightsvoice.org",
		PasswordHash: string(hashed),
		RoleID:       &adminRole.ID,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Println("admin user seeded (admin@rightsvoice.org / admin123)")
	return nil
}
