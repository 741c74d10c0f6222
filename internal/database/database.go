package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nissaya/reader/internal/entities"
)

func ptr[T any](v T) *T { return &v }

var defaultCategories = []entities.Category{
	{Name: "ဓမ္မပဒ", NameEn: ptr("Dhammapada"), Icon: ptr("📿"), SortOrder: ptr(1)},
	{Name: "ပရိတ်", NameEn: ptr("Paritta"), Icon: ptr("🛡"), SortOrder: ptr(2)},
	{Name: "သုတ္တန်", NameEn: ptr("Sutta"), Icon: ptr("📜"), SortOrder: ptr(3)},
	{Name: "အဘိဓမ္မာ", NameEn: ptr("Abhidhamma"), Icon: ptr("🪷"), SortOrder: ptr(4)},
}

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the teachings database, migrates it and seeds the
// default categories when none exist yet.
func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(Dialector(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	if err := database.seedCategories(); err != nil {
		return nil, fmt.Errorf("failed to seed categories: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return database, nil
}

// Migrate creates or updates every backend table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entities.Category{},
		&entities.Teaching{},
		&entities.Paragraph{},
		&entities.Bookmark{},
		&entities.DailyFeatured{},
		&entities.User{},
		&entities.AuditEvent{},
	)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) seedCategories() error {
	var count int64
	if err := d.DB.Model(&entities.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, category := range defaultCategories {
		category := category
		if err := d.DB.Create(&category).Error; err != nil {
			return fmt.Errorf("failed to create category %s: %w", category.Name, err)
		}
		log.Printf("Created category: %s", *category.NameEn)
	}
	return nil
}
