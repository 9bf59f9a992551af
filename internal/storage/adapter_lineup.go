package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/Jslock56/competehq/internal/domain/lineup"
	"github.com/Jslock56/competehq/internal/localstore"
	"github.com/Jslock56/competehq/internal/remote"
)

func (a *Adapter) ListLineupsByTeam(ctx context.Context, teamID string) ([]lineup.Lineup, error) {
	ctx, span := startStorageSpan(ctx, "storage.ListLineupsByTeam")
	defer span.End()

	return listRecords[lineup.Lineup](ctx, a, localstore.KindLineup, teamID)
}

func (a *Adapter) GetLineup(ctx context.Context, id string) (lineup.Lineup, error) {
	ctx, span := startStorageSpan(ctx, "storage.GetLineup")
	defer span.End()

	return getRecord[lineup.Lineup](ctx, a, localstore.KindLineup, id)
}

func (a *Adapter) SaveLineup(ctx context.Context, l lineup.Lineup) bool {
	ctx, span := startStorageSpan(ctx, "storage.SaveLineup")
	defer span.End()

	return saveRecord(ctx, a, localstore.KindLineup, l, l.TeamID, l.GameID)
}

// DeleteLineup removes the lineup only. A game still pointing at it keeps
// its lineupId; clearing that reference is the caller's job.
func (a *Adapter) DeleteLineup(ctx context.Context, teamID, id string) bool {
	ctx, span := startStorageSpan(ctx, "storage.DeleteLineup")
	defer span.End()

	return deleteRecord(ctx, a, localstore.KindLineup, id, teamID)
}

// GetLineupByGame returns the lineup attached to a game. The remote store
// answers by its game index; offline the team's local lineups are scanned.
func (a *Adapter) GetLineupByGame(ctx context.Context, teamID, gameID string) (lineup.Lineup, error) {
	ctx, span := startStorageSpan(ctx, "storage.GetLineupByGame")
	defer span.End()

	if gameID == "" {
		return lineup.Lineup{}, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}

	if !a.offline(ctx) {
		doc, err := a.remote.GetByGame(ctx, string(localstore.KindLineup), gameID)
		switch {
		case err == nil:
			var out lineup.Lineup
			if decErr := sonic.Unmarshal(doc.Payload, &out); decErr == nil {
				a.mirrorDocument(ctx, localstore.KindLineup, doc)
				return out, nil
			} else {
				a.log.WarnContext(ctx, "remote payload decode failed, serving local copy", "kind", localstore.KindLineup, "gameId", gameID, "error", decErr)
			}
		case errors.Is(err, remote.ErrNotFound):
		default:
			a.log.WarnContext(ctx, "remote read failed, serving local copy", "kind", localstore.KindLineup, "gameId", gameID, "error", err)
		}
	}

	lineups, err := listLocal[lineup.Lineup](ctx, a, localstore.KindLineup, localstore.IndexKeyFor(localstore.KindLineup, teamID))
	if err != nil {
		return lineup.Lineup{}, err
	}
	for _, l := range lineups {
		if l.GameID == gameID {
			return l, nil
		}
	}
	return lineup.Lineup{}, fmt.Errorf("%w: lineup for game %s", ErrNotFound, gameID)
}

// NonGameLineupsByTeam returns the team's reusable lineup templates.
func (a *Adapter) NonGameLineupsByTeam(ctx context.Context, teamID string) ([]lineup.Lineup, error) {
	ctx, span := startStorageSpan(ctx, "storage.NonGameLineupsByTeam")
	defer span.End()

	lineups, err := a.ListLineupsByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	out := make([]lineup.Lineup, 0, len(lineups))
	for _, l := range lineups {
		if l.IsTemplate() {
			out = append(out, l)
		}
	}
	return out, nil
}

func (a *Adapter) DefaultLineupForTeam(ctx context.Context, teamID string) (lineup.Lineup, error) {
	ctx, span := startStorageSpan(ctx, "storage.DefaultLineupForTeam")
	defer span.End()

	lineups, err := a.ListLineupsByTeam(ctx, teamID)
	if err != nil {
		return lineup.Lineup{}, err
	}

	for _, l := range lineups {
		if l.IsTemplate() && l.IsDefault {
			return l, nil
		}
	}
	return lineup.Lineup{}, fmt.Errorf("%w: default lineup for team %s", ErrNotFound, teamID)
}

// SetDefaultLineup makes one template the team default and clears the flag
// on every other template, each as an ordinary save so pending tracking and
// remote mirroring apply per lineup.
func (a *Adapter) SetDefaultLineup(ctx context.Context, teamID, lineupID string) bool {
	ctx, span := startStorageSpan(ctx, "storage.SetDefaultLineup")
	defer span.End()

	lineups, err := a.ListLineupsByTeam(ctx, teamID)
	if err != nil {
		a.log.WarnContext(ctx, "set default lineup list failed", "teamId", teamID, "error", err)
		return false
	}

	var target *lineup.Lineup
	for i := range lineups {
		if lineups[i].ID == lineupID {
			target = &lineups[i]
			break
		}
	}
	if target == nil || !target.IsTemplate() {
		a.log.WarnContext(ctx, "set default lineup rejected", "teamId", teamID, "lineupId", lineupID)
		return false
	}

	now := a.now().UnixMilli()
	ok := true
	for _, l := range lineups {
		switch {
		case l.ID == lineupID && !l.IsDefault:
			l.IsDefault = true
			l.UpdatedAt = now
			ok = a.SaveLineup(ctx, l) && ok
		case l.ID != lineupID && l.IsDefault:
			l.IsDefault = false
			l.UpdatedAt = now
			ok = a.SaveLineup(ctx, l) && ok
		}
	}
	return ok
}
