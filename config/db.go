package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hotel-ops/models"
	"hotel-ops/repositories"
)

var DB *gorm.DB

// DemoRooms is the starter inventory used when seeding an empty database.
func DemoRooms() []models.Room {
	seed := []struct {
		number, typ string
		capacity    int
		beds        int
		price       int64
		amenities   []string
	}{
		{"101", "Solteiro", 1, 1, 80, []string{"wifi", "tv"}},
		{"102", "Casal", 2, 1, 100, []string{"wifi", "tv", "frigobar"}},
		{"201", "Casal", 2, 1, 120, []string{"wifi", "tv", "ar-condicionado"}},
		{"202", "Família", 4, 3, 90, []string{"wifi", "tv", "frigobar"}},
		{"301", "Suíte", 2, 1, 200, []string{"wifi", "tv", "banheira", "vista-mar"}},
	}

	rooms := make([]models.Room, 0, len(seed))
	for _, s := range seed {
		rooms = append(rooms, models.Room{
			ID:        uuid.NewString(),
			Number:    s.number,
			Type:      s.typ,
			Capacity:  s.capacity,
			Beds:      s.beds,
			Price:     decimal.NewFromInt(s.price),
			Amenities: s.amenities,
			Status:    models.RoomAvailable,
		})
	}
	return rooms
}

// SeedDatabase adds the demo inventory when the rooms table is empty.
func SeedDatabase(db *gorm.DB, log *zap.Logger) {
	var roomCount int64
	if err := db.Model(&models.Room{}).Count(&roomCount).Error; err != nil {
		log.Warn("failed to count rooms for seeding", zap.Error(err))
		return
	}
	if roomCount > 0 {
		log.Info("rooms already seeded", zap.Int64("count", roomCount))
		return
	}

	rooms := DemoRooms()
	if err := db.Create(&rooms).Error; err != nil {
		log.Warn("failed to seed rooms", zap.Error(err))
		return
	}
	log.Info("rooms seeded", zap.Int("count", len(rooms)))
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "UTC")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func databaseURL() string {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	return raw
}

func resolveMySQLDSN() (string, error) {
	if raw := databaseURL(); raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := envOrDefault("DB_USER", "root")
	pass := envOrDefault("DB_PASS", "")
	host := envOrDefault("DB_HOST", "127.0.0.1")
	port := envOrDefault("DB_PORT", "3306")
	dbName := envOrDefault("DB_NAME", "hotel_db")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		user, pass, host, port, dbName,
	), nil
}

// resolvePostgresDSN accepts a postgres:// URL as is; pgx parses it.
func resolvePostgresDSN() string {
	if raw := strings.TrimSpace(os.Getenv("DATABASE_URL")); raw != "" {
		return raw
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		envOrDefault("DB_HOST", "127.0.0.1"),
		envOrDefault("DB_USER", "postgres"),
		envOrDefault("DB_PASS", ""),
		envOrDefault("DB_NAME", "hotel_db"),
		envOrDefault("DB_PORT", "5432"),
		envOrDefault("DB_SSLMODE", "disable"),
	)
}

func openDialector(driver string) (gorm.Dialector, error) {
	switch driver {
	case "mysql":
		dsn, err := resolveMySQLDSN()
		if err != nil {
			return nil, err
		}
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(resolvePostgresDSN()), nil
	}
	return nil, fmt.Errorf("no SQL dialect for driver %q", driver)
}

// ConnectDatabase opens the SQL database, migrates the schema, seeds demo
// rooms if asked and stores the handle in DB.
func ConnectDatabase(cfg *Config, log *zap.Logger) error {
	dialector, err := openDialector(cfg.DBDriver)
	if err != nil {
		return err
	}

	level := logger.Warn
	if cfg.GinMode == "debug" {
		level = logger.Info
	}
	gormLogger := logger.New(
		zap.NewStdLog(log.Named("gorm")),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return err
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		log.Info("cannot get raw sql.DB", zap.Error(err))
	}

	if err := repositories.AutoMigrate(db); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	DB = db
	if cfg.SeedData {
		SeedDatabase(db, log)
	}
	return nil
}
