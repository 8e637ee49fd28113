package api

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// FoundHandler handles found item endpoints.
type FoundHandler struct {
	DB *sql.DB
}

type createFoundRequest struct {
	ItemName    string     `json:"item_name" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	Category    string     `json:"category" validate:"required,category"`
	Location    string     `json:"location" validate:"max=200"`
	FoundAt     *time.Time `json:"found_at"`
}

// Create handles POST /api/found.
func (h *FoundHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createFoundRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ItemName = strings.TrimSpace(req.ItemName)
	if err := validate.Struct(&req); err != nil {
		jsonError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	p := store.FoundParams{
		ItemName:    req.ItemName,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
	}
	if req.FoundAt != nil {
		if req.FoundAt.After(time.Now().Add(time.Hour)) {
			jsonError(w, http.StatusBadRequest, "found_at is in the future")
			return
		}
		p.FoundAt = *req.FoundAt
	}

	claims := GetClaims(r.Context())
	item, err := store.CreateFoundItem(r.Context(), h.DB, claims.UserID, p)
	if err != nil {
		slog.Error("failed to create found item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create found item")
		return
	}

	slog.Info("found item logged", "user", claims.Username, "found_id", item.ID, "item", item.ItemName)
	jsonResponse(w, http.StatusCreated, item)
}

// List handles GET /api/found. Students only ever see pending items. ?q=
// ranks items by fuzzy match on name and description.
func (h *FoundHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	q := r.URL.Query()

	status := q.Get("status")
	if !isStaff(claims) {
		status = model.FoundStatusPending
	}

	items, err := store.ListFoundItems(r.Context(), h.DB, status)
	if err != nil {
		slog.Error("failed to list found items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list found items")
		return
	}

	if term := strings.TrimSpace(q.Get("q")); term != "" {
		items = searchFound(items, term)
	}
	if items == nil {
		items = []model.FoundItem{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// searchFound keeps the items whose name or description fuzzily contains
// term, closest first.
func searchFound(items []model.FoundItem, term string) []model.FoundItem {
	targets := make([]string, len(items))
	for i, it := range items {
		targets[i] = it.ItemName + " " + it.Description
	}

	ranks := fuzzy.RankFindNormalizedFold(term, targets)
	sort.Stable(ranks)

	out := make([]model.FoundItem, 0, len(ranks))
	for _, rk := range ranks {
		out = append(out, items[rk.OriginalIndex])
	}
	return out
}

// load fetches the {id} found item. Students can only see pending items. On
// failure it writes the response and returns nil.
func (h *FoundHandler) load(w http.ResponseWriter, r *http.Request) *model.FoundItem {
	id, ok := pathID(w, r, "found item")
	if !ok {
		return nil
	}

	item, err := store.GetFoundItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get found item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get found item")
		return nil
	}
	if item == nil || (!isStaff(GetClaims(r.Context())) && item.Status != model.FoundStatusPending) {
		jsonError(w, http.StatusNotFound, "found item not found")
		return nil
	}
	return item
}

// Get handles GET /api/found/{id}.
func (h *FoundHandler) Get(w http.ResponseWriter, r *http.Request) {
	item := h.load(w, r)
	if item == nil {
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// UpdateStatus handles PUT /api/found/{id}/status.
func (h *FoundHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	item := h.load(w, r)
	if item == nil {
		return
	}

	var req statusRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	err := store.UpdateFoundStatus(r.Context(), h.DB, item.ID, req.Status)
	if errors.Is(err, store.ErrInvalidTransition) {
		jsonError(w, http.StatusConflict, "cannot move found item from "+item.Status+" to "+req.Status)
		return
	}
	if err != nil {
		slog.Error("failed to update found item status", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update found item")
		return
	}

	updated, err := store.GetFoundItem(r.Context(), h.DB, item.ID)
	if err != nil || updated == nil {
		jsonError(w, http.StatusInternalServerError, "failed to get found item")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("found item status changed", "user", claims.Username, "found_id", item.ID,
		"from", item.Status, "to", updated.Status)
	jsonResponse(w, http.StatusOK, updated)
}

// UploadImage handles PUT /api/found/{id}/image.
func (h *FoundHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	item := h.load(w, r)
	if item == nil {
		return
	}

	uploadImage(w, r, func(ctx context.Context, data []byte, mime string) error {
		return store.SetFoundImage(ctx, h.DB, item.ID, data, mime)
	})
}

// GetImage handles GET /api/found/{id}/image.
func (h *FoundHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	item := h.load(w, r)
	if item == nil {
		return
	}

	data, mime, err := store.GetFoundImage(r.Context(), h.DB, item.ID)
	serveImage(w, data, mime, err)
}

// Matches handles GET /api/found/{id}/matches.
func (h *FoundHandler) Matches(w http.ResponseWriter, r *http.Request) {
	item := h.load(w, r)
	if item == nil {
		return
	}

	matches, err := store.ListMatchesForFound(r.Context(), h.DB, item.ID)
	if err != nil {
		slog.Error("failed to list matches", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list matches")
		return
	}
	if matches == nil {
		matches = []model.Match{}
	}
	jsonResponse(w, http.StatusOK, matches)
}
