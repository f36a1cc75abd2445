package postgres

import (
	"database/sql"
	"time"
)

type teamTableModel struct {
	ID       int64  `db:"id,readonly"`
	Name     string `db:"name"`
	LogoFile string `db:"logo_file"`
}

type matchTableModel struct {
	ID        int64     `db:"id,readonly"`
	Team1ID   int64     `db:"team1_id"`
	Team2ID   int64     `db:"team2_id"`
	KickoffAt time.Time `db:"kickoff_at"`
	Season    int       `db:"season"`
	Week      string    `db:"week"`
}

type matchResultTableModel struct {
	ID           int64         `db:"id,readonly"`
	MatchID      int64         `db:"match_id"`
	Score        string        `db:"score"`
	WinnerTeamID sql.NullInt64 `db:"winner_team_id"`
}

type standingTableModel struct {
	ID     int64  `db:"id,readonly"`
	TeamID int64  `db:"team_id"`
	Year   int    `db:"year"`
	Week   string `db:"week"`
	Record string `db:"record"`
}

type seasonIndexTableModel struct {
	ID   int64  `db:"id,readonly"`
	Year int    `db:"year"`
	Week string `db:"week"`
}

type pickTableModel struct {
	ID        int64     `db:"id,readonly"`
	UserID    int64     `db:"user_id"`
	MatchID   int64     `db:"match_id"`
	TeamID    int64     `db:"team_id"`
	UpdatedAt time.Time `db:"updated_at"`
}

type weeklyRecordTableModel struct {
	ID        int64     `db:"id,readonly"`
	UserID    int64     `db:"user_id"`
	Year      int       `db:"year"`
	Week      string    `db:"week"`
	Wins      int       `db:"wins"`
	Losses    int       `db:"losses"`
	Ties      int       `db:"ties"`
	Record    string    `db:"record"`
	CreatedAt time.Time `db:"created_at"`
}

type userTableModel struct {
	ID           int64     `db:"id,readonly"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	ImageFile    string    `db:"image_file"`
	CreatedAt    time.Time `db:"created_at"`
}

type jobRunTableModel struct {
	ID           string     `db:"id"`
	JobName      string     `db:"job_name"`
	Trigger      string     `db:"triggered_by"`
	Status       string     `db:"status"`
	Summary      string     `db:"summary"`
	ErrorMessage *string    `db:"error_message"`
	StartedAt    time.Time  `db:"started_at"`
	FinishedAt   *time.Time `db:"finished_at"`
	TraceID      *string    `db:"trace_id"`
	SpanID       *string    `db:"span_id"`
}
