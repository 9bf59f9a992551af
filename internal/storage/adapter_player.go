package storage

import (
	"context"

	"github.com/Jslock56/competehq/internal/domain/player"
	"github.com/Jslock56/competehq/internal/localstore"
)

func (a *Adapter) ListPlayersByTeam(ctx context.Context, teamID string) ([]player.Player, error) {
	ctx, span := startStorageSpan(ctx, "storage.ListPlayersByTeam")
	defer span.End()

	return listRecords[player.Player](ctx, a, localstore.KindPlayer, teamID)
}

func (a *Adapter) GetPlayer(ctx context.Context, id string) (player.Player, error) {
	ctx, span := startStorageSpan(ctx, "storage.GetPlayer")
	defer span.End()

	return getRecord[player.Player](ctx, a, localstore.KindPlayer, id)
}

func (a *Adapter) SavePlayer(ctx context.Context, p player.Player) bool {
	ctx, span := startStorageSpan(ctx, "storage.SavePlayer")
	defer span.End()

	return saveRecord(ctx, a, localstore.KindPlayer, p, p.TeamID, "")
}

func (a *Adapter) DeletePlayer(ctx context.Context, teamID, id string) bool {
	ctx, span := startStorageSpan(ctx, "storage.DeletePlayer")
	defer span.End()

	return deleteRecord(ctx, a, localstore.KindPlayer, id, teamID)
}
