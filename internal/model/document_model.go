package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Document struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID      `gorm:"type:uuid;not null;index"`
	OriginalName   string         `gorm:"type:varchar(255);not null"`
	StoredFilename string         `gorm:"type:varchar(255);not null"`
	MimeType       string         `gorm:"type:varchar(127);not null"`
	Size           int64          `gorm:"not null;default:0"`
	Status         string         `gorm:"type:varchar(20);not null;default:'uploaded';index"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
