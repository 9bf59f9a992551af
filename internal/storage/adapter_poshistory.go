package storage

import (
	"context"

	"github.com/Jslock56/competehq/internal/domain/poshistory"
	"github.com/Jslock56/competehq/internal/localstore"
)

func (a *Adapter) ListPositionHistoriesByTeam(ctx context.Context, teamID string) ([]poshistory.History, error) {
	ctx, span := startStorageSpan(ctx, "storage.ListPositionHistoriesByTeam")
	defer span.End()

	return listRecords[poshistory.History](ctx, a, localstore.KindPositionHistory, teamID)
}

func (a *Adapter) GetPositionHistory(ctx context.Context, id string) (poshistory.History, error) {
	ctx, span := startStorageSpan(ctx, "storage.GetPositionHistory")
	defer span.End()

	return getRecord[poshistory.History](ctx, a, localstore.KindPositionHistory, id)
}

func (a *Adapter) SavePositionHistory(ctx context.Context, h poshistory.History) bool {
	ctx, span := startStorageSpan(ctx, "storage.SavePositionHistory")
	defer span.End()

	return saveRecord(ctx, a, localstore.KindPositionHistory, h, h.TeamID, "")
}

func (a *Adapter) DeletePositionHistory(ctx context.Context, teamID, id string) bool {
	ctx, span := startStorageSpan(ctx, "storage.DeletePositionHistory")
	defer span.End()

	return deleteRecord(ctx, a, localstore.KindPositionHistory, id, teamID)
}
