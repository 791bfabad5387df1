package httpapi

import (
	"net/http"
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/sensor"
	"github.com/riskibarqy/matchfeed/internal/usecase"
)

type createSensorRequest struct {
	Name                string `json:"name" validate:"omitempty,max=120"`
	Source              string `json:"source" validate:"omitempty,oneof=espn football-data"`
	Sport               string `json:"sport" validate:"omitempty,oneof=soccer basketball"`
	Kind                string `json:"kind" validate:"required"`
	CompetitionCode     string `json:"competition_code" validate:"omitempty,max=64"`
	TeamID              string `json:"team_id" validate:"omitempty,max=64"`
	TeamName            string `json:"team_name" validate:"omitempty,max=120"`
	StartDate           string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate             string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	PollIntervalSeconds int    `json:"poll_interval_seconds" validate:"omitempty,min=1"`
}

type setupRequest struct {
	Selection           string   `json:"selection" validate:"required,oneof=competition team all_today paid"`
	Sport               string   `json:"sport" validate:"omitempty,oneof=soccer basketball"`
	CompetitionCode     string   `json:"competition_code" validate:"omitempty,max=64"`
	TeamID              string   `json:"team_id" validate:"omitempty,max=64"`
	TeamName            string   `json:"team_name" validate:"omitempty,max=120"`
	PaidKinds           []string `json:"paid_kinds" validate:"omitempty,dive,required"`
	StartDate           string   `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate             string   `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	PollIntervalSeconds int      `json:"poll_interval_seconds" validate:"omitempty,min=1"`
}

type updateWindowRequest struct {
	StartDate           string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate             string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	PollIntervalSeconds int    `json:"poll_interval_seconds" validate:"omitempty,min=1"`
}

type refreshResponse struct {
	Outcome string             `json:"outcome"`
	Sensor  usecase.SensorView `json:"sensor"`
}

func seconds(v int) time.Duration {
	return time.Duration(v) * time.Second
}

func (h *Handler) ListSensors(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSensors")
	defer span.End()

	items, err := h.sensorService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list sensors failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetSensor(w http.ResponseWriter, r *http.Request) {
	sensorID := r.PathValue("sensorID")
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSensor", sensorIDAttr(sensorID))
	defer span.End()

	item, err := h.sensorService.Get(ctx, sensorID)
	if err != nil {
		h.logger.WarnContext(ctx, "get sensor failed", "sensor_id", sensorID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}

func (h *Handler) CreateSensor(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateSensor")
	defer span.End()

	var req createSensorRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.sensorService.Create(ctx, usecase.CreateSensorInput{
		Name:            req.Name,
		Source:          sensor.Source(req.Source),
		Sport:           sensor.Sport(req.Sport),
		Kind:            sensor.DataKind(req.Kind),
		CompetitionCode: req.CompetitionCode,
		TeamID:          req.TeamID,
		TeamName:        req.TeamName,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		PollInterval:    seconds(req.PollIntervalSeconds),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create sensor failed", "kind", req.Kind, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, item)
}

func (h *Handler) CreateSetup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateSetup")
	defer span.End()

	var req setupRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	kinds := make([]sensor.DataKind, 0, len(req.PaidKinds))
	for _, kind := range req.PaidKinds {
		kinds = append(kinds, sensor.DataKind(kind))
	}

	result, err := h.sensorService.Setup(ctx, usecase.SetupInput{
		Selection:       usecase.SetupSelection(req.Selection),
		Sport:           sensor.Sport(req.Sport),
		CompetitionCode: req.CompetitionCode,
		TeamID:          req.TeamID,
		TeamName:        req.TeamName,
		PaidKinds:       kinds,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		PollInterval:    seconds(req.PollIntervalSeconds),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "setup failed", "selection", req.Selection, "error", err)
		writeError(ctx, w, err)
		return
	}

	status := http.StatusCreated
	if len(result.Created) == 0 {
		status = http.StatusOK
	}
	writeSuccess(ctx, w, status, result)
}

func (h *Handler) UpdateSensorWindow(w http.ResponseWriter, r *http.Request) {
	sensorID := r.PathValue("sensorID")
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateSensorWindow", sensorIDAttr(sensorID))
	defer span.End()

	var req updateWindowRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.sensorService.UpdateWindow(ctx, sensorID, usecase.UpdateWindowInput{
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		PollInterval: seconds(req.PollIntervalSeconds),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update sensor window failed", "sensor_id", sensorID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}

func (h *Handler) RefreshSensor(w http.ResponseWriter, r *http.Request) {
	sensorID := r.PathValue("sensorID")
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshSensor", sensorIDAttr(sensorID))
	defer span.End()

	item, outcome, err := h.sensorService.RefreshNow(ctx, sensorID)
	if err != nil {
		h.logger.WarnContext(ctx, "refresh sensor failed", "sensor_id", sensorID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, refreshResponse{Outcome: string(outcome), Sensor: item})
}

func (h *Handler) DeleteSensor(w http.ResponseWriter, r *http.Request) {
	sensorID := r.PathValue("sensorID")
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteSensor", sensorIDAttr(sensorID))
	defer span.End()

	if err := h.sensorService.Delete(ctx, sensorID); err != nil {
		h.logger.WarnContext(ctx, "delete sensor failed", "sensor_id", sensorID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"id": sensorID, "status": "deleted"})
}
