package storage

import (
	"context"
	"sort"

	"github.com/Jslock56/competehq/internal/domain/game"
	"github.com/Jslock56/competehq/internal/localstore"
)

func (a *Adapter) ListGamesByTeam(ctx context.Context, teamID string) ([]game.Game, error) {
	ctx, span := startStorageSpan(ctx, "storage.ListGamesByTeam")
	defer span.End()

	return listRecords[game.Game](ctx, a, localstore.KindGame, teamID)
}

func (a *Adapter) GetGame(ctx context.Context, id string) (game.Game, error) {
	ctx, span := startStorageSpan(ctx, "storage.GetGame")
	defer span.End()

	return getRecord[game.Game](ctx, a, localstore.KindGame, id)
}

func (a *Adapter) SaveGame(ctx context.Context, g game.Game) bool {
	ctx, span := startStorageSpan(ctx, "storage.SaveGame")
	defer span.End()

	return saveRecord(ctx, a, localstore.KindGame, g, g.TeamID, "")
}

func (a *Adapter) DeleteGame(ctx context.Context, teamID, id string) bool {
	ctx, span := startStorageSpan(ctx, "storage.DeleteGame")
	defer span.End()

	return deleteRecord(ctx, a, localstore.KindGame, id, teamID)
}

// UpcomingGames returns the team's games dated now or later, soonest first.
func (a *Adapter) UpcomingGames(ctx context.Context, teamID string) ([]game.Game, error) {
	ctx, span := startStorageSpan(ctx, "storage.UpcomingGames")
	defer span.End()

	games, err := a.ListGamesByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	cutoff := a.now().UnixMilli()
	out := make([]game.Game, 0, len(games))
	for _, g := range games {
		if g.Date >= cutoff {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// PastGames returns the team's games dated before now, most recent first.
func (a *Adapter) PastGames(ctx context.Context, teamID string) ([]game.Game, error) {
	ctx, span := startStorageSpan(ctx, "storage.PastGames")
	defer span.End()

	games, err := a.ListGamesByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	cutoff := a.now().UnixMilli()
	out := make([]game.Game, 0, len(games))
	for _, g := range games {
		if g.Date < cutoff {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}
