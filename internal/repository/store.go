package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned by single-record lookups that match nothing.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a write violates a unique index. It relies on
// gorm's TranslateError being enabled on the connection.
var ErrDuplicate = errors.New("duplicate key")

// Store is the storage capability consumed by the services. A Store handed
// to a Transaction callback is bound to that transaction.
type Store interface {
	Parts() PartRepository
	Links() BomLinkRepository
	Audits() AuditRepository
	Sequences() SequenceRepository
	Stats() StatsRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Parts() PartRepository         { return NewPartRepo(s.db) }
func (s *gormStore) Links() BomLinkRepository      { return NewBomLinkRepo(s.db) }
func (s *gormStore) Audits() AuditRepository       { return NewAuditRepo(s.db) }
func (s *gormStore) Sequences() SequenceRepository { return NewSequenceRepo(s.db) }
func (s *gormStore) Stats() StatsRepository        { return NewStatsRepo(s.db) }

// Transaction runs fn atomically; any error or panic rolls back every write
// made through the transactional Store.
func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func duplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}
