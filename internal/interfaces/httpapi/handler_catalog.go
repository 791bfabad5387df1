package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) ListCatalogCompetitions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCatalogCompetitions")
	defer span.End()

	sport := r.URL.Query().Get("sport")
	items, err := h.catalogService.Competitions(ctx, sport)
	if err != nil {
		h.logger.WarnContext(ctx, "list catalog competitions failed", "sport", sport, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListCatalogTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCatalogTeams")
	defer span.End()

	sport := r.URL.Query().Get("sport")
	code := r.PathValue("code")
	items, err := h.catalogService.Teams(ctx, sport, code)
	if err != nil {
		h.logger.WarnContext(ctx, "list catalog teams failed", "competition", code, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

// ListCatalogTeamsForCompetitions serves ?competitions=eng.1,esp.1 and groups
// teams by competition code.
func (h *Handler) ListCatalogTeamsForCompetitions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCatalogTeamsForCompetitions")
	defer span.End()

	query := r.URL.Query()
	codes := strings.Split(query.Get("competitions"), ",")
	items, err := h.catalogService.TeamsForCompetitions(ctx, query.Get("sport"), codes)
	if err != nil {
		h.logger.WarnContext(ctx, "list catalog teams for competitions failed", "competitions", query.Get("competitions"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetCatalogCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCatalogCalendar")
	defer span.End()

	code := r.PathValue("code")
	item, err := h.catalogService.Calendar(ctx, r.URL.Query().Get("sport"), code)
	if err != nil {
		h.logger.WarnContext(ctx, "get catalog calendar failed", "competition", code, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}
