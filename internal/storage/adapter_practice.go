package storage

import (
	"context"
	"sort"

	"github.com/Jslock56/competehq/internal/domain/practice"
	"github.com/Jslock56/competehq/internal/localstore"
)

func (a *Adapter) ListPracticesByTeam(ctx context.Context, teamID string) ([]practice.Practice, error) {
	ctx, span := startStorageSpan(ctx, "storage.ListPracticesByTeam")
	defer span.End()

	return listRecords[practice.Practice](ctx, a, localstore.KindPractice, teamID)
}

func (a *Adapter) GetPractice(ctx context.Context, id string) (practice.Practice, error) {
	ctx, span := startStorageSpan(ctx, "storage.GetPractice")
	defer span.End()

	return getRecord[practice.Practice](ctx, a, localstore.KindPractice, id)
}

func (a *Adapter) SavePractice(ctx context.Context, p practice.Practice) bool {
	ctx, span := startStorageSpan(ctx, "storage.SavePractice")
	defer span.End()

	return saveRecord(ctx, a, localstore.KindPractice, p, p.TeamID, "")
}

func (a *Adapter) DeletePractice(ctx context.Context, teamID, id string) bool {
	ctx, span := startStorageSpan(ctx, "storage.DeletePractice")
	defer span.End()

	return deleteRecord(ctx, a, localstore.KindPractice, id, teamID)
}

func (a *Adapter) UpcomingPractices(ctx context.Context, teamID string) ([]practice.Practice, error) {
	ctx, span := startStorageSpan(ctx, "storage.UpcomingPractices")
	defer span.End()

	practices, err := a.ListPracticesByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	cutoff := a.now().UnixMilli()
	out := make([]practice.Practice, 0, len(practices))
	for _, p := range practices {
		if p.Date >= cutoff {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (a *Adapter) PastPractices(ctx context.Context, teamID string) ([]practice.Practice, error) {
	ctx, span := startStorageSpan(ctx, "storage.PastPractices")
	defer span.End()

	practices, err := a.ListPracticesByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	cutoff := a.now().UnixMilli()
	out := make([]practice.Practice, 0, len(practices))
	for _, p := range practices {
		if p.Date < cutoff {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}
