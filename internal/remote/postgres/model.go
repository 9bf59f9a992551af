package postgres

import (
	"database/sql"

	"github.com/Jslock56/competehq/internal/remote"
)

type documentRow struct {
	Kind      string         `db:"kind"`
	ID        string         `db:"id"`
	TeamID    sql.NullString `db:"team_id"`
	GameID    sql.NullString `db:"game_id"`
	Payload   []byte         `db:"payload"`
	UpdatedAt int64          `db:"updated_at"`
	DeletedAt sql.NullInt64  `db:"deleted_at"`
}

var documentColumns = []string{"kind", "id", "team_id", "game_id", "payload", "updated_at", "deleted_at"}

func (r documentRow) toDocument() remote.Document {
	return remote.Document{
		Kind:      r.Kind,
		ID:        r.ID,
		TeamID:    r.TeamID.String,
		GameID:    r.GameID.String,
		Payload:   r.Payload,
		UpdatedAt: r.UpdatedAt,
		Deleted:   r.DeletedAt.Valid,
	}
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
