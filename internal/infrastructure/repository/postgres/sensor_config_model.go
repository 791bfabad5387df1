package postgres

import (
	"database/sql"
	"time"
)

type sensorConfigTableModel struct {
	ID                  int64          `db:"id"`
	SensorID            string         `db:"sensor_id"`
	SetupID             sql.NullString `db:"setup_id"`
	Name                string         `db:"name"`
	Source              string         `db:"source"`
	Sport               string         `db:"sport"`
	Kind                string         `db:"kind"`
	CompetitionCode     sql.NullString `db:"competition_code"`
	TeamID              sql.NullString `db:"team_id"`
	TeamName            sql.NullString `db:"team_name"`
	StartDate           time.Time      `db:"start_date"`
	EndDate             time.Time      `db:"end_date"`
	PollIntervalSeconds int64          `db:"poll_interval_seconds"`
	CreatedAt           time.Time      `db:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at"`
	DeletedAt           *time.Time     `db:"deleted_at"`
}

type sensorConfigInsertModel struct {
	SensorID            string    `db:"sensor_id"`
	SetupID             *string   `db:"setup_id"`
	Name                string    `db:"name"`
	Source              string    `db:"source"`
	Sport               string    `db:"sport"`
	Kind                string    `db:"kind"`
	CompetitionCode     *string   `db:"competition_code"`
	TeamID              *string   `db:"team_id"`
	TeamName            *string   `db:"team_name"`
	StartDate           time.Time `db:"start_date"`
	EndDate             time.Time `db:"end_date"`
	PollIntervalSeconds int64     `db:"poll_interval_seconds"`
	UpdatedAt           time.Time `db:"updated_at"`
}
