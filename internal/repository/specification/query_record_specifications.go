package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QueryRecordOwnedByUser struct {
	UserID uuid.UUID
}

func (s QueryRecordOwnedByUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("query_records.user_id = ?", s.UserID)
}
