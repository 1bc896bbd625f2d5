package storage

import "time"

// User is a registered account able to request summaries.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Summary is the persisted outcome of one completed pipeline run.
type Summary struct {
	ID         uint   `gorm:"primaryKey"`
	JobID      string `gorm:"uniqueIndex;not null"`
	SourceURL  string `gorm:"not null"`
	Title      string
	Transcript string `gorm:"type:text"`
	Body       string `gorm:"type:text"`
	CreatedAt  time.Time
}
