package specification

import (
	"docintel-be/pkg/rag"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentOwnedByUser struct {
	UserID uuid.UUID
}

func (s DocumentOwnedByUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("documents.user_id = ?", s.UserID)
}

type ByStatus struct {
	Status rag.DocumentStatus
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", string(s.Status))
}
