package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchfeed/internal/domain/sensor"
	qb "github.com/riskibarqy/matchfeed/internal/platform/querybuilder"
)

const sensorConfigTable = "sensor_configs"

var sensorConfigColumns = []string{
	"id", "sensor_id", "setup_id", "name", "source", "sport", "kind",
	"competition_code", "team_id", "team_name", "start_date", "end_date",
	"poll_interval_seconds", "created_at", "updated_at", "deleted_at",
}

type SensorConfigRepository struct {
	db *sqlx.DB
}

func NewSensorConfigRepository(db *sqlx.DB) *SensorConfigRepository {
	return &SensorConfigRepository{db: db}
}

func (r *SensorConfigRepository) Upsert(ctx context.Context, cfg sensor.Config) error {
	updatedAt := cfg.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	model := sensorConfigInsertModel{
		SensorID:            strings.TrimSpace(cfg.ID),
		SetupID:             optionalString(cfg.SetupID),
		Name:                cfg.Name,
		Source:              string(cfg.Source),
		Sport:               string(cfg.Sport),
		Kind:                string(cfg.Kind),
		CompetitionCode:     optionalString(cfg.CompetitionCode),
		TeamID:              optionalString(cfg.TeamID),
		TeamName:            optionalString(cfg.TeamName),
		StartDate:           cfg.StartDate,
		EndDate:             cfg.EndDate,
		PollIntervalSeconds: int64(cfg.PollInterval / time.Second),
		UpdatedAt:           updatedAt,
	}

	query, args, err := qb.UpsertModel(sensorConfigTable, "sensor_id", model, "deleted_at = NULL")
	if err != nil {
		return fmt.Errorf("build upsert sensor config query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert sensor config: %w", err)
	}
	return nil
}

func (r *SensorConfigRepository) GetByID(ctx context.Context, id string) (sensor.Config, bool, error) {
	query, args, err := qb.Select(sensorConfigColumns...).
		From(sensorConfigTable).
		Where(
			qb.Eq("sensor_id", strings.TrimSpace(id)),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return sensor.Config{}, false, fmt.Errorf("build get sensor config query: %w", err)
	}

	var row sensorConfigTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return sensor.Config{}, false, nil
		}
		return sensor.Config{}, false, fmt.Errorf("get sensor config: %w", err)
	}
	return sensorConfigFromRow(row), true, nil
}

func (r *SensorConfigRepository) List(ctx context.Context) ([]sensor.Config, error) {
	query, args, err := qb.Select(sensorConfigColumns...).
		From(sensorConfigTable).
		Where(qb.IsNull("deleted_at")).
		OrderBy("sensor_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list sensor configs query: %w", err)
	}

	var rows []sensorConfigTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list sensor configs: %w", err)
	}

	out := make([]sensor.Config, 0, len(rows))
	for _, row := range rows {
		out = append(out, sensorConfigFromRow(row))
	}
	return out, nil
}

// Delete is a soft delete; Upsert of the same id revives the row.
func (r *SensorConfigRepository) Delete(ctx context.Context, id string) error {
	query, args, err := qb.Update(sensorConfigTable).
		SetExpr("deleted_at", "NOW()").
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("sensor_id", strings.TrimSpace(id)),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete sensor config query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete sensor config: %w", err)
	}
	return nil
}

func sensorConfigFromRow(row sensorConfigTableModel) sensor.Config {
	return sensor.Config{
		ID:              row.SensorID,
		SetupID:         strings.TrimSpace(row.SetupID.String),
		Name:            row.Name,
		Source:          sensor.Source(row.Source),
		Sport:           sensor.Sport(row.Sport),
		Kind:            sensor.DataKind(row.Kind),
		CompetitionCode: strings.TrimSpace(row.CompetitionCode.String),
		TeamID:          strings.TrimSpace(row.TeamID.String),
		TeamName:        strings.TrimSpace(row.TeamName.String),
		StartDate:       sensor.TruncateDay(row.StartDate),
		EndDate:         sensor.TruncateDay(row.EndDate),
		PollInterval:    time.Duration(row.PollIntervalSeconds) * time.Second,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
