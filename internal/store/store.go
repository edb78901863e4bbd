package store

import (
	"context"

	"gorm.io/gorm"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	Index() Index
	InitialMigration() error
	Close() error
}

type DataStore struct {
	index Index
	db    *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		index: NewIndexStore(db),
		db:    db,
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db)
}

func (s *DataStore) Index() Index {
	return s.index
}

func (s *DataStore) InitialMigration() error {
	return s.index.InitialMigration()
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
