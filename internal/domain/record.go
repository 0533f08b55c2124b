package domain

import "time"

// ScanRecord is one persisted opportunity observation.
type ScanRecord struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt     time.Time `gorm:"index"`
	Direction     string    `gorm:"size:16;index"`
	Asset         string    `gorm:"size:32;index"`
	PremiumPct    float64
	DomesticPrice float64
	OverseasPrice float64
	FxRate        float64
	Selected      bool
	Chain         string `gorm:"size:64"`
	EtaMinutes    int
}

// AppConfig stores user configuration as key-value pairs
type AppConfig struct {
	Key   string `gorm:"primaryKey;size:100"`
	Value string `gorm:"size:1000"`
}
