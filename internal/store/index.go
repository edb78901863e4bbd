package store

import (
	"context"
	"errors"

	"github.com/contentgrid/content-search/internal/store/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Index interface {
	InitialMigration() error
	Get(ctx context.Context, id string) (*model.Document, error)
	Upsert(ctx context.Context, doc model.Document, terms []string, principals []string) (bool, error)
	Tombstone(ctx context.Context, id string, sequence int64) (bool, error)
	Search(ctx context.Context, filter *SearchQueryFilter, opts *SearchQueryOptions) ([]model.Document, error)
	Count(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) error
}

type IndexStore struct {
	db *gorm.DB
}

// Make sure we conform to Index interface
var _ Index = (*IndexStore)(nil)

func NewIndexStore(db *gorm.DB) Index {
	return &IndexStore{db: db}
}

func (s *IndexStore) InitialMigration() error {
	return s.db.AutoMigrate(&model.Document{}, &model.DocumentTerm{}, &model.DocumentPrincipal{})
}

func (s *IndexStore) getDB(ctx context.Context) *gorm.DB {
	if tx := FromContext(ctx); tx != nil {
		return tx
	}
	return s.db.WithContext(ctx)
}

// Get returns the index entry for the given id, tombstoned or not.
func (s *IndexStore) Get(ctx context.Context, id string) (*model.Document, error) {
	doc := model.Document{}
	result := s.getDB(ctx).First(&doc, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &doc, nil
}

// Upsert replaces the document row and its term/ACL postings in a single
// transaction. Readers never observe the document with postings from two
// different generations. A sequence lower than or equal to the committed
// one is a no-op and Upsert reports false; an upsert against a tombstoned
// id fails with ErrTombstoned.
func (s *IndexStore) Upsert(ctx context.Context, doc model.Document, terms []string, principals []string) (bool, error) {
	applied := false

	err := s.getDB(ctx).Transaction(func(tx *gorm.DB) error {
		existing := model.Document{}
		err := tx.First(&existing, "id = ?", doc.ID).Error
		switch {
		case err == nil:
			if existing.Deleted {
				return ErrTombstoned
			}
			if existing.Sequence >= doc.Sequence {
				// last-writer-wins by sequence, not by arrival time
				return nil
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return err
		}

		if err := tx.Where("document_id = ?", doc.ID).Delete(&model.DocumentTerm{}).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id = ?", doc.ID).Delete(&model.DocumentPrincipal{}).Error; err != nil {
			return err
		}

		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&doc).Error; err != nil {
			return err
		}

		if len(terms) > 0 {
			postings := make([]model.DocumentTerm, 0, len(terms))
			for _, term := range terms {
				postings = append(postings, model.DocumentTerm{Term: term, DocumentID: doc.ID})
			}
			if err := tx.Create(&postings).Error; err != nil {
				return err
			}
		}

		if len(principals) > 0 {
			acl := make([]model.DocumentPrincipal, 0, len(principals))
			for _, principal := range principals {
				acl = append(acl, model.DocumentPrincipal{PrincipalID: principal, DocumentID: doc.ID})
			}
			if err := tx.Create(&acl).Error; err != nil {
				return err
			}
		}

		applied = true
		return nil
	})

	return applied, err
}

// Tombstone marks the id as deleted and removes all its postings. The
// tombstone row keeps the delete sequence so later lower-sequence events
// are recognized as stale. Tombstoning an unknown id creates the
// tombstone row, covering a delete observed before its create.
func (s *IndexStore) Tombstone(ctx context.Context, id string, sequence int64) (bool, error) {
	applied := false

	err := s.getDB(ctx).Transaction(func(tx *gorm.DB) error {
		existing := model.Document{}
		err := tx.First(&existing, "id = ?", id).Error
		switch {
		case err == nil:
			if existing.Deleted {
				return nil
			}
			if existing.Sequence > sequence {
				return nil
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			existing = model.Document{ID: id}
			if err := tx.Create(&existing).Error; err != nil {
				return err
			}
		default:
			return err
		}

		if err := tx.Where("document_id = ?", id).Delete(&model.DocumentTerm{}).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id = ?", id).Delete(&model.DocumentPrincipal{}).Error; err != nil {
			return err
		}

		updates := map[string]any{"deleted": true, "sequence": sequence, "body": ""}
		if err := tx.Model(&model.Document{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		applied = true
		return nil
	})

	return applied, err
}

// Search returns the live documents matching the filter. Tombstoned
// entries never match.
func (s *IndexStore) Search(ctx context.Context, filter *SearchQueryFilter, opts *SearchQueryOptions) ([]model.Document, error) {
	docs := model.DocumentList{}

	tx := s.getDB(ctx).Model(&model.Document{}).Where("documents.deleted = ?", false)
	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}
	if opts != nil {
		for _, fn := range opts.QueryFn {
			tx = fn(tx)
		}
	}

	if result := tx.Find(&docs); result.Error != nil {
		return nil, result.Error
	}

	return docs, nil
}

func (s *IndexStore) Count(ctx context.Context) (int64, error) {
	var count int64
	result := s.getDB(ctx).Model(&model.Document{}).Where("deleted = ?", false).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

func (s *IndexStore) DeleteAll(ctx context.Context) error {
	db := s.getDB(ctx)
	for _, stm := range []string{"DELETE FROM document_terms", "DELETE FROM document_principals", "DELETE FROM documents"} {
		if result := db.Exec(stm); result.Error != nil {
			return result.Error
		}
	}
	return nil
}
