package model

import (
	"encoding/json"
	"time"
)

// Document is an index entry: the latest committed snapshot of a content
// item together with its term postings and resolved ACL postings. A
// tombstoned document keeps its row (and sequence) so stale events stay
// no-ops, but carries no postings and never matches a query.
type Document struct {
	ID        string  `gorm:"primaryKey"`
	Name      string  `gorm:"not null"`
	IsFile    bool    `gorm:"not null"`
	OwnerID   string  `gorm:"not null"`
	SiteID    *string `gorm:"index"`
	Body      string
	Sequence  int64 `gorm:"not null"`
	Deleted   bool  `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Terms      []DocumentTerm      `gorm:"foreignKey:DocumentID;references:ID;constraint:OnDelete:CASCADE;"`
	Principals []DocumentPrincipal `gorm:"foreignKey:DocumentID;references:ID;constraint:OnDelete:CASCADE;"`
}

// DocumentTerm is one posting of the inverted index: term -> document.
// Terms are stored lowercased.
type DocumentTerm struct {
	Term       string `gorm:"primaryKey;column:term;type:VARCHAR;size:255;"`
	DocumentID string `gorm:"primaryKey;column:document_id;"`
}

// DocumentPrincipal is one entry of a document's effective ACL:
// principal -> document.
type DocumentPrincipal struct {
	PrincipalID string `gorm:"primaryKey;column:principal_id;"`
	DocumentID  string `gorm:"primaryKey;column:document_id;"`
}

type DocumentList []Document

func (d Document) String() string {
	val, _ := json.Marshal(d)
	return string(val)
}
