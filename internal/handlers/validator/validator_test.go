package validator

import (
	"testing"

	apiV1 "github.com/contentgrid/content-search/api/v1"
)

func TestSearchRequestValidators(t *testing.T) {
	ptr := func(s string) *string { return &s }
	tests := []struct {
		name       string
		request    apiV1.SearchRequest
		shouldFail bool
	}{
		{
			name:    "validation ok -- query and principal",
			request: apiV1.SearchRequest{Query: "first test", RequestingPrincipalId: ptr("userSite1")},
		},
		{
			name:    "validation ok -- no principal in the body",
			request: apiV1.SearchRequest{Query: "first test"},
		},
		{
			name:       "validation ko -- empty query",
			request:    apiV1.SearchRequest{Query: ""},
			shouldFail: true,
		},
		{
			name:       "validation ko -- query without searchable terms",
			request:    apiV1.SearchRequest{Query: "!!! ..."},
			shouldFail: true,
		},
		{
			name:       "validation ko -- principal contains illegal chars",
			request:    apiV1.SearchRequest{Query: "test", RequestingPrincipalId: ptr("user;drop")},
			shouldFail: true,
		},
		{
			name:    "validation ok -- principal with domain",
			request: apiV1.SearchRequest{Query: "test", RequestingPrincipalId: ptr("user@example.org")},
		},
		{
			name: "validation ok -- consistency block",
			request: apiV1.SearchRequest{
				Query:                 "test",
				RequestingPrincipalId: ptr("userSite1"),
				Consistency:           &apiV1.Consistency{ItemId: "node-1", Sequence: 3},
			},
		},
		{
			name: "validation ko -- consistency without item",
			request: apiV1.SearchRequest{
				Query:                 "test",
				RequestingPrincipalId: ptr("userSite1"),
				Consistency:           &apiV1.Consistency{Sequence: 3},
			},
			shouldFail: true,
		},
		{
			name: "validation ko -- consistency without sequence",
			request: apiV1.SearchRequest{
				Query:                 "test",
				RequestingPrincipalId: ptr("userSite1"),
				Consistency:           &apiV1.Consistency{ItemId: "node-1"},
			},
			shouldFail: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator()
			v.Register(NewSearchValidationRules()...)

			err := v.Struct(tt.request)
			if tt.shouldFail && err == nil {
				t.Errorf("expected validation to fail")
			}
			if !tt.shouldFail && err != nil {
				t.Errorf("expected validation to pass, got: %v", err)
			}
		})
	}
}
