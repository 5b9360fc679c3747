// Package handler contains HTTP request handlers for the shelf API.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the incoming HTTP request (query params, body, path values)
//  2. Call the service
//  3. Write the HTTP response (status code, headers, body)
//
// Handlers do not check who may do what. The auth middleware only attaches
// the caller's identity to the context; the services decide, and a missing
// identity comes back as apperror.ErrUnauthenticated (401).
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/shelf/internal/service"
)

// RecommendationHandler exposes the Recommendation Store over JSON.
type RecommendationHandler struct {
	recs   *service.RecommendationService
	logger *slog.Logger
}

func NewRecommendationHandler(recs *service.RecommendationService, logger *slog.Logger) *RecommendationHandler {
	return &RecommendationHandler{recs: recs, logger: logger}
}

// HandleLatest returns the newest recommendations.
//
// HTTP: GET /api/recommendations/latest?limit=10
func (h *RecommendationHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}

	items, err := h.recs.ListLatest(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleFeatured returns the newest staff picks.
//
// HTTP: GET /api/recommendations/featured?limit=10
func (h *RecommendationHandler) HandleFeatured(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}

	items, err := h.recs.ListFeatured(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleList pages through the shelf.
//
// HTTP: GET /api/recommendations?genre=drama&cursor=...&numItems=20
//
// RESPONSE FORMAT:
//
//	{"page": [...], "continueCursor": "eyJzIjoi...", "isDone": false}
//
// Pass continueCursor back as ?cursor= for the next page.
func (h *RecommendationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	numItems, err := queryInt(r, "numItems")
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	page, err := h.recs.ListPaged(r.Context(), q.Get("genre"), q.Get("cursor"), numItems)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleMine pages through the caller's own recommendations.
//
// HTTP: GET /api/recommendations/mine?cursor=...&numItems=20
func (h *RecommendationHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	numItems, err := queryInt(r, "numItems")
	if err != nil {
		writeError(w, err)
		return
	}

	page, err := h.recs.ListMine(r.Context(), r.URL.Query().Get("cursor"), numItems)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleCreate adds a recommendation owned by the caller.
//
// HTTP: POST /api/recommendations
// REQUEST BODY: {"title": "...", "genre": "drama", "link": "https://...", "blurb": "..."}
// RESPONSE: 201 {"id": "..."}
func (h *RecommendationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req addRecommendationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	id, err := h.recs.Add(r.Context(), req.Title, req.Genre, req.Link, req.Blurb)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// HandleDelete removes a recommendation.
//
// HTTP: DELETE /api/recommendations/{id}
// RESPONSE: 204 No Content
func (h *RecommendationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.recs.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleToggleFeatured flips the staff-pick flag (admins only).
//
// HTTP: POST /api/recommendations/{id}/featured
// RESPONSE: 200 {"id": "...", "isFeatured": true}
func (h *RecommendationHandler) HandleToggleFeatured(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	featured, err := h.recs.ToggleFeatured(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		ID         string `json:"id"`
		IsFeatured bool   `json:"isFeatured"`
	}{id, featured})
}
