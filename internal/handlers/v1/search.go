package v1

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	apiV1 "github.com/contentgrid/content-search/api/v1"
	"github.com/contentgrid/content-search/internal/auth"
	"github.com/contentgrid/content-search/internal/handlers/v1/mappers"
	"github.com/contentgrid/content-search/internal/handlers/validator"
	"github.com/contentgrid/content-search/internal/service"
	"github.com/contentgrid/content-search/pkg/metrics"
	"go.uber.org/zap"
)

type ServiceHandler struct {
	searchSrv *service.SearchService
}

func NewServiceHandler(searchService *service.SearchService) *ServiceHandler {
	return &ServiceHandler{
		searchSrv: searchService,
	}
}

// (POST /api/v1/search)
func (s *ServiceHandler) Search(w http.ResponseWriter, r *http.Request) {
	request := apiV1.SearchRequest{}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		metrics.IncreaseSearchRequestsMetric("400")
		writeJSON(w, http.StatusBadRequest, apiV1.Error{Message: "invalid request body"})
		return
	}

	v := validator.NewValidator()
	v.Register(validator.NewSearchValidationRules()...)
	if err := v.Struct(request); err != nil {
		metrics.IncreaseSearchRequestsMetric("400")
		writeJSON(w, http.StatusBadRequest, apiV1.Error{Message: err.Error()})
		return
	}

	form := service.SearchForm{
		Query:     request.Query,
		Principal: requestingPrincipal(r, request),
	}
	if request.Consistency != nil {
		form.Consistency = &service.ConsistencyForm{
			ItemID:   request.Consistency.ItemId,
			Sequence: request.Consistency.Sequence,
			Timeout:  time.Duration(request.Consistency.TimeoutMs) * time.Millisecond,
		}
	}

	docs, err := s.searchSrv.Search(r.Context(), form)
	if err != nil {
		switch err.(type) {
		case *service.ErrInvalidSearchQuery, *service.ErrInvalidPrincipal, *service.ErrInvalidConsistency:
			metrics.IncreaseSearchRequestsMetric("400")
			writeJSON(w, http.StatusBadRequest, apiV1.Error{Message: err.Error()})
		default:
			zap.S().Named("search_handler").Errorw("search failed", "error", err)
			metrics.IncreaseSearchRequestsMetric("500")
			writeJSON(w, http.StatusInternalServerError, struct{}{})
		}
		return
	}

	metrics.IncreaseSearchRequestsMetric("200")
	writeJSON(w, http.StatusOK, mappers.DocumentListToApi(docs))
}

// (GET /api/v1/index/status)
func (s *ServiceHandler) IndexStatus(w http.ResponseWriter, r *http.Request) {
	itemID := r.URL.Query().Get("itemId")
	if itemID == "" {
		writeJSON(w, http.StatusBadRequest, apiV1.Error{Message: "itemId is required"})
		return
	}

	sequence, err := parseQueryInt(r, "sequence")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiV1.Error{Message: "sequence must be an integer"})
		return
	}
	timeoutMs, err := parseQueryInt(r, "timeoutMs")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiV1.Error{Message: "timeoutMs must be an integer"})
		return
	}

	visible, watermark := s.searchSrv.IndexStatus(r.Context(), itemID, sequence, time.Duration(timeoutMs)*time.Millisecond)
	writeJSON(w, http.StatusOK, apiV1.IndexStatus{Visible: visible, Watermark: watermark})
}

// (GET /health)
func (s *ServiceHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, apiV1.Health{Status: "ok"})
}

// requestingPrincipal prefers the authenticated identity. The body field
// is only honored when the deployment runs without authentication.
func requestingPrincipal(r *http.Request, request apiV1.SearchRequest) string {
	if principal, found := auth.PrincipalFromContext(r.Context()); found {
		return principal.ID
	}
	if request.RequestingPrincipalId != nil {
		return *request.RequestingPrincipalId
	}
	return ""
}

func parseQueryInt(r *http.Request, key string) (int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New("not an integer")
	}
	return val, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
