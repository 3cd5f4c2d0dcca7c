package service

import (
	"context"
	"errors"
	"sync"

	"docintel-be/internal/entity"
	"docintel-be/internal/repository/contract"
	"docintel-be/internal/repository/specification"
	"docintel-be/internal/repository/unitofwork"
	"docintel-be/pkg/events"

	"github.com/google/uuid"
)

type fakeDocumentRepo struct {
	docs      []*entity.Document
	err       error
	lastSpecs []specification.Specification
	updated   []*entity.Document
	deleted   []uuid.UUID
}

func (r *fakeDocumentRepo) Create(_ context.Context, doc *entity.Document) error {
	r.docs = append(r.docs, doc)
	return r.err
}

func (r *fakeDocumentRepo) Update(_ context.Context, doc *entity.Document) error {
	r.updated = append(r.updated, doc)
	return r.err
}

func (r *fakeDocumentRepo) Delete(_ context.Context, id uuid.UUID) error {
	if r.err != nil {
		return r.err
	}
	r.deleted = append(r.deleted, id)
	kept := r.docs[:0]
	for _, d := range r.docs {
		if d.Id != id {
			kept = append(kept, d)
		}
	}
	r.docs = kept
	return nil
}

// FindOne honours ByID and DocumentOwnedByUser so ownership checks can be tested.
func (r *fakeDocumentRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Document, error) {
	r.lastSpecs = specs
	if r.err != nil {
		return nil, r.err
	}
	for _, d := range r.docs {
		if matches(d, specs) {
			return d, nil
		}
	}
	return nil, nil
}

func (r *fakeDocumentRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	r.lastSpecs = specs
	if r.err != nil {
		return nil, r.err
	}
	var out []*entity.Document
	for _, d := range r.docs {
		if matches(d, specs) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	docs, err := r.FindAll(ctx, specs...)
	return int64(len(docs)), err
}

func matches(d *entity.Document, specs []specification.Specification) bool {
	for _, s := range specs {
		switch spec := s.(type) {
		case specification.ByID:
			if d.Id != spec.ID {
				return false
			}
		case specification.DocumentOwnedByUser:
			if d.UserId != spec.UserID {
				return false
			}
		case specification.ByStatus:
			if d.Status != spec.Status {
				return false
			}
		}
	}
	return true
}

type fakeQueryRecordRepo struct {
	mu        sync.Mutex
	records   []*entity.QueryRecord
	err       error
	lastSpecs []specification.Specification
}

func (r *fakeQueryRecordRepo) Create(_ context.Context, record *entity.QueryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, record)
	return nil
}

func (r *fakeQueryRecordRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.QueryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSpecs = specs
	return r.records, r.err
}

func (r *fakeQueryRecordRepo) saved() []*entity.QueryRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*entity.QueryRecord(nil), r.records...)
}

type fakeUow struct {
	docs    *fakeDocumentRepo
	records *fakeQueryRecordRepo

	mu        sync.Mutex
	begun     int
	committed int
}

func (u *fakeUow) Begin(context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.begun++
	return nil
}

func (u *fakeUow) Commit() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.committed++
	return nil
}

func (u *fakeUow) Rollback() error { return nil }

func (u *fakeUow) DocumentRepository() contract.DocumentRepository       { return u.docs }
func (u *fakeUow) QueryRecordRepository() contract.QueryRecordRepository { return u.records }

func (u *fakeUow) commits() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.committed
}

type fakeUowFactory struct{ uow *fakeUow }

func (f fakeUowFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork { return f.uow }

func newFakeUow() (*fakeUow, unitofwork.RepositoryFactory) {
	uow := &fakeUow{docs: &fakeDocumentRepo{}, records: &fakeQueryRecordRepo{}}
	return uow, fakeUowFactory{uow: uow}
}

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return p.err
}

var errBoom = errors.New("boom")

type recordingEvicter struct{ evicted []uuid.UUID }

func (r *recordingEvicter) Invalidate(userId uuid.UUID) { r.evicted = append(r.evicted, userId) }
