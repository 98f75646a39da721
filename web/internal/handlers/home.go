package handlers

import "net/http"

// Home handles the landing page
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	// Only handle root path
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := h.newTemplateData(r, w)
	data["CurrentPage"] = "home"
	h.renderTemplate(w, "home.html", data)
}
