package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"kimp_radar/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage persists scan history and user configuration in SQLite.
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the database at the given path.
func NewStorage(dbPath string) (*Storage, error) {
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto Migration
	if err := db.AutoMigrate(&domain.ScanRecord{}, &domain.AppConfig{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// ======================================================================================
// Scan History Operations
// ======================================================================================

// SaveScanRecords persists one batch of scan observations.
func (s *Storage) SaveScanRecords(records []domain.ScanRecord) error {
	if len(records) == 0 {
		return nil
	}
	return s.db.Create(&records).Error
}

// RecentScans returns the newest records for one direction, newest first.
func (s *Storage) RecentScans(direction string, limit int) ([]domain.ScanRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var records []domain.ScanRecord
	err := s.db.
		Where("direction = ?", direction).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// AssetHistory returns the newest records for one asset across directions.
func (s *Storage) AssetHistory(asset string, limit int) ([]domain.ScanRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var records []domain.ScanRecord
	err := s.db.
		Where("asset = ?", asset).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// PruneBefore deletes records older than the cutoff and reports how many.
func (s *Storage) PruneBefore(cutoff time.Time) (int64, error) {
	result := s.db.Where("created_at < ?", cutoff).Delete(&domain.ScanRecord{})
	return result.RowsAffected, result.Error
}

// ======================================================================================
// Config Operations
// ======================================================================================

// SaveConfig saves a user configuration
func (s *Storage) SaveConfig(key, value string) error {
	config := domain.AppConfig{
		Key:   key,
		Value: value,
	}
	return s.db.Save(&config).Error
}

// LoadConfigMap loads all user configurations as a map
func (s *Storage) LoadConfigMap() (map[string]string, error) {
	var configs []domain.AppConfig
	if err := s.db.Find(&configs).Error; err != nil {
		return nil, err
	}

	result := make(map[string]string)
	for _, cfg := range configs {
		result[cfg.Key] = cfg.Value
	}
	return result, nil
}
