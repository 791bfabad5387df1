package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metrics http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
}

func registerSensorRoutes(mux *http.ServeMux, handler *Handler, adminToken string) {
	mux.HandleFunc("GET /v1/sensors", handler.ListSensors)
	mux.HandleFunc("GET /v1/sensors/{sensorID}", handler.GetSensor)

	mux.Handle("POST /v1/sensors", RequireAdminToken(adminToken, http.HandlerFunc(handler.CreateSensor)))
	mux.Handle("POST /v1/setups", RequireAdminToken(adminToken, http.HandlerFunc(handler.CreateSetup)))
	mux.Handle("PUT /v1/sensors/{sensorID}/window", RequireAdminToken(adminToken, http.HandlerFunc(handler.UpdateSensorWindow)))
	mux.Handle("POST /v1/sensors/{sensorID}/refresh", RequireAdminToken(adminToken, http.HandlerFunc(handler.RefreshSensor)))
	mux.Handle("DELETE /v1/sensors/{sensorID}", RequireAdminToken(adminToken, http.HandlerFunc(handler.DeleteSensor)))
}

func registerCatalogRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/catalog/competitions", handler.ListCatalogCompetitions)
	mux.HandleFunc("GET /v1/catalog/competitions/{code}/teams", handler.ListCatalogTeams)
	mux.HandleFunc("GET /v1/catalog/competitions/{code}/calendar", handler.GetCatalogCalendar)
	mux.HandleFunc("GET /v1/catalog/teams", handler.ListCatalogTeamsForCompetitions)
}
