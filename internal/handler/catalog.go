package handler

import (
	"net/http"

	"github.com/sakif/shelf/internal/genre"
	"github.com/sakif/shelf/internal/link"
)

// HandleGenres lists the genre registry in display order.
//
// HTTP: GET /api/genres
func HandleGenres(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, genre.All())
}

// HandleLinkCheck runs the same link check Add uses, without writing
// anything, so forms can flag a bad link before submit.
//
// HTTP: GET /api/links/check?url=https://...
// RESPONSE: 200 {"url": "<normalized>"} or the usual 400 error body.
func HandleLinkCheck(w http.ResponseWriter, r *http.Request) {
	normalized, err := link.Validate(r.URL.Query().Get("url"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": normalized})
}
