package mapper

import (
	"docintel-be/internal/entity"
	"docintel-be/internal/model"
)

type QueryRecordMapper struct{}

func NewQueryRecordMapper() *QueryRecordMapper {
	return &QueryRecordMapper{}
}

func (m *QueryRecordMapper) ToEntity(r *model.QueryRecord) *entity.QueryRecord {
	if r == nil {
		return nil
	}

	sources := make([]entity.QuerySource, len(r.Sources))
	for i, s := range r.Sources {
		sources[i] = entity.QuerySource{
			DocumentId:   s.DocumentId,
			DocumentName: s.DocumentName,
			TextSnippet:  s.TextSnippet,
			SourceNumber: s.SourceNumber,
		}
	}

	return &entity.QueryRecord{
		Id:        r.Id,
		UserId:    r.UserId,
		Question:  r.Question,
		Sources:   sources,
		CreatedAt: r.CreatedAt,
	}
}

// ToModel truncates snippets so stored rows stay bounded.
func (m *QueryRecordMapper) ToModel(r *entity.QueryRecord) *model.QueryRecord {
	if r == nil {
		return nil
	}

	sources := make([]model.QuerySource, len(r.Sources))
	for i, s := range r.Sources {
		sources[i] = model.QuerySource{
			DocumentId:   s.DocumentId,
			DocumentName: s.DocumentName,
			TextSnippet:  entity.Snippet(s.TextSnippet),
			SourceNumber: s.SourceNumber,
		}
	}

	return &model.QueryRecord{
		Id:        r.Id,
		UserId:    r.UserId,
		Question:  r.Question,
		Sources:   sources,
		CreatedAt: r.CreatedAt,
	}
}

func (m *QueryRecordMapper) ToEntities(records []*model.QueryRecord) []*entity.QueryRecord {
	entities := make([]*entity.QueryRecord, len(records))
	for i, r := range records {
		entities[i] = m.ToEntity(r)
	}
	return entities
}
