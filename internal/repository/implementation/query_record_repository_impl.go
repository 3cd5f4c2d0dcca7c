package implementation

import (
	"context"

	"docintel-be/internal/entity"
	"docintel-be/internal/mapper"
	"docintel-be/internal/model"
	"docintel-be/internal/repository/contract"
	"docintel-be/internal/repository/specification"

	"gorm.io/gorm"
)

type QueryRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.QueryRecordMapper
}

func NewQueryRecordRepository(db *gorm.DB) contract.QueryRecordRepository {
	return &QueryRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewQueryRecordMapper(),
	}
}

func (r *QueryRecordRepositoryImpl) Create(ctx context.Context, record *entity.QueryRecord) error {
	m := r.mapper.ToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.ToEntity(m)
	return nil
}

func (r *QueryRecordRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QueryRecord, error) {
	var models []*model.QueryRecord
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
