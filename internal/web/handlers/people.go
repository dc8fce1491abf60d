package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-attendance/internal/registry"
)

// Directory lists and looks up enrolled people.
type Directory interface {
	Search(ctx context.Context, role registry.Role, query string) ([]registry.Person, error)
	Lookup(ctx context.Context, id string, role registry.Role) (*registry.Person, error)
}

// PeopleHandler exposes enrolled people. Encodings never leave the server.
type PeopleHandler struct {
	directory Directory
}

func NewPeopleHandler(directory Directory) *PeopleHandler {
	return &PeopleHandler{directory: directory}
}

// PeopleResponse is a role's roster
type PeopleResponse struct {
	Role   registry.Role     `json:"role"`
	Count  int               `json:"count"`
	People []registry.Person `json:"people"`
}

// List returns everyone in ?role= (students by default), narrowed by ?q= when set
func (h *PeopleHandler) List(w http.ResponseWriter, r *http.Request) {
	role := registry.Role(r.URL.Query().Get("role"))
	if role == "" {
		role = registry.Student
	}
	people, err := h.directory.Search(r.Context(), role, r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, PeopleResponse{Role: role, Count: len(people), People: people})
}

// Get returns one person by {role} and {id}
func (h *PeopleHandler) Get(w http.ResponseWriter, r *http.Request) {
	role := registry.Role(chi.URLParam(r, "role"))
	p, err := h.directory.Lookup(r.Context(), chi.URLParam(r, "id"), role)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}
