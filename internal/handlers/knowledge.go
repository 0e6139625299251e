package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/zenithflow/zenithflow/internal/hub"
	"github.com/zenithflow/zenithflow/internal/models"
	"github.com/zenithflow/zenithflow/internal/validation"
)

// KnowledgeHandler manages the knowledge hub: principles captured from the
// user's reading. Entries feed the coaching prompts alongside tasks and
// goals.
type KnowledgeHandler struct {
	hub *hub.Hub
}

// NewKnowledgeHandler creates a new knowledge handler
func NewKnowledgeHandler(hb *hub.Hub) *KnowledgeHandler {
	return &KnowledgeHandler{hub: hb}
}

// RegisterRoutes registers knowledge routes on the given router
// The router should already have the /knowledge prefix
func (h *KnowledgeHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListKnowledge).Methods("GET")
	r.HandleFunc("", h.CreateKnowledge).Methods("POST")
	r.HandleFunc("/{id}", h.DeleteKnowledge).Methods("DELETE")
}

// CreateKnowledgeRequest captures one principle from a book
type CreateKnowledgeRequest struct {
	BookTitle string `json:"bookTitle" validate:"required,min=1,max=500"`
	Content   string `json:"content" validate:"required,min=1,max=10000"`
	Category  string `json:"category" validate:"omitempty,knowledge_category"`
}

// ListKnowledge returns the knowledge hub entries, newest first.
func (h *KnowledgeHandler) ListKnowledge(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}

	items := ws.Store.State().Knowledge
	if items == nil {
		items = []models.KnowledgeItem{}
	}
	respondJSON(w, http.StatusOK, items)
}

// CreateKnowledge adds a knowledge entry at the front of the list.
func (h *KnowledgeHandler) CreateKnowledge(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}

	var req CreateKnowledgeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}
	req.BookTitle = validation.SanitizeText(req.BookTitle)
	req.Content = validation.SanitizeText(req.Content)
	if req.BookTitle == "" || req.Content == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Book title and content are required and cannot be empty after sanitization")
		return
	}

	category := models.KnowledgeCategory(req.Category)
	if category == "" {
		category = models.KnowledgeCategoryOther
	}
	item := models.KnowledgeItem{
		ID:        fmt.Sprintf("knowledge-%d", time.Now().UnixMilli()),
		BookTitle: req.BookTitle,
		Content:   req.Content,
		Category:  category,
	}
	ws.Store.AddKnowledge(item)

	respondJSON(w, http.StatusCreated, item)
}

// DeleteKnowledge removes a knowledge entry.
func (h *KnowledgeHandler) DeleteKnowledge(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	if !ws.Store.DeleteKnowledge(id) {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Knowledge entry not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
