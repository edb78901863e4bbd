package store

import (
	"github.com/contentgrid/content-search/internal/store/model"
	"gorm.io/gorm"
)

type SortOrder int

const (
	Unsorted SortOrder = iota
	SortBySequence
	SortByName
)

type BaseQuerier struct {
	QueryFn []func(tx *gorm.DB) *gorm.DB
}

type SearchQueryFilter BaseQuerier

func NewSearchQueryFilter() *SearchQueryFilter {
	return &SearchQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

// ByPrincipal restricts the result set to documents whose effective ACL
// contains the given principal.
func (qf *SearchQueryFilter) ByPrincipal(principal string) *SearchQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.
			Joins("JOIN document_principals ON document_principals.document_id = documents.id").
			Where("document_principals.principal_id = ?", principal)
	})
	return qf
}

// ByTerms restricts the result set to documents whose postings contain
// every one of the given terms.
func (qf *SearchQueryFilter) ByTerms(terms []string) *SearchQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		sub := tx.Session(&gorm.Session{NewDB: true}).
			Model(&model.DocumentTerm{}).
			Select("document_id").
			Where("term IN ?", terms).
			Group("document_id").
			Having("COUNT(DISTINCT term) = ?", len(terms))
		return tx.Where("documents.id IN (?)", sub)
	})
	return qf
}

// BySite restricts the result set to documents indexed under the given site.
func (qf *SearchQueryFilter) BySite(siteID string) *SearchQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("documents.site_id = ?", siteID)
	})
	return qf
}

type SearchQueryOptions BaseQuerier

func NewSearchQueryOptions() *SearchQueryOptions {
	return &SearchQueryOptions{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (o *SearchQueryOptions) WithSortOrder(sort SortOrder) *SearchQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		switch sort {
		case SortBySequence:
			return tx.Order("documents.sequence DESC")
		case SortByName:
			return tx.Order("documents.name")
		default:
			return tx
		}
	})
	return o
}

func (o *SearchQueryOptions) WithLimit(limit int) *SearchQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Limit(limit)
	})
	return o
}
