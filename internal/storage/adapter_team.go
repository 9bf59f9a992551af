package storage

import (
	"context"

	"github.com/Jslock56/competehq/internal/domain/team"
	"github.com/Jslock56/competehq/internal/localstore"
)

func (a *Adapter) ListTeams(ctx context.Context) ([]team.Team, error) {
	ctx, span := startStorageSpan(ctx, "storage.ListTeams")
	defer span.End()

	return listRecords[team.Team](ctx, a, localstore.KindTeam, "")
}

func (a *Adapter) GetTeam(ctx context.Context, id string) (team.Team, error) {
	ctx, span := startStorageSpan(ctx, "storage.GetTeam")
	defer span.End()

	return getRecord[team.Team](ctx, a, localstore.KindTeam, id)
}

func (a *Adapter) SaveTeam(ctx context.Context, t team.Team) bool {
	ctx, span := startStorageSpan(ctx, "storage.SaveTeam")
	defer span.End()

	return saveRecord(ctx, a, localstore.KindTeam, t, "", "")
}

// DeleteTeam removes the team record only. Child entities keep their own
// per-team indexes; cascading is the caller's job.
func (a *Adapter) DeleteTeam(ctx context.Context, id string) bool {
	ctx, span := startStorageSpan(ctx, "storage.DeleteTeam")
	defer span.End()

	return deleteRecord(ctx, a, localstore.KindTeam, id, "")
}
