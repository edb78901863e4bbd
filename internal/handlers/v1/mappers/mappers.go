package mappers

import (
	apiV1 "github.com/contentgrid/content-search/api/v1"
	"github.com/contentgrid/content-search/internal/store/model"
)

func DocumentToApi(doc model.Document) apiV1.Entry {
	return apiV1.Entry{
		Id:     doc.ID,
		Name:   doc.Name,
		IsFile: doc.IsFile,
	}
}

func DocumentListToApi(docs []model.Document) apiV1.SearchResponse {
	entries := make([]apiV1.Entry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, DocumentToApi(doc))
	}
	return apiV1.SearchResponse{Entries: entries}
}
