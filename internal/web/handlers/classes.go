package handlers

import "net/http"

// ClassesHandler lists the classes students can be enrolled in
type ClassesHandler struct {
	classes []string
}

func NewClassesHandler(classes []string) *ClassesHandler {
	return &ClassesHandler{classes: classes}
}

func (h *ClassesHandler) List(w http.ResponseWriter, r *http.Request) {
	classes := h.classes
	if classes == nil {
		classes = []string{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"classes": classes})
}
