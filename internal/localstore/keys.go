package localstore

// Kind prefixes every persisted key so records from different entity types
// never collide. The literal prefixes are part of the on-disk layout and
// must stay stable across releases.
type Kind string

const (
	KindTeam            Kind = "team"
	KindPlayer          Kind = "player"
	KindGame            Kind = "game"
	KindLineup          Kind = "lineup"
	KindPositionHistory Kind = "poshistory"
	KindPractice        Kind = "practice"
)

// Kinds lists every entity kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindTeam, KindPlayer, KindGame, KindLineup, KindPositionHistory, KindPractice}
}

const (
	// TeamIndexKey holds the ordered id list of all teams.
	TeamIndexKey = "team:index"
	// SettingsKey is the singleton settings record.
	SettingsKey = "settings"
	// PendingKey holds the pending-change map maintained by the sync layer.
	PendingKey = "sync:pending"
)

// PrimaryKey is the key of one entity instance: "<kind>:<id>".
func PrimaryKey(kind Kind, id string) string {
	return string(kind) + ":" + id
}

// TeamScopedIndexKey is the id-list key for one (kind, owning team) pair:
// "<kind>:team:<teamID>".
func TeamScopedIndexKey(kind Kind, teamID string) string {
	return string(kind) + ":team:" + teamID
}

// IndexKeyFor returns the id-list key an instance belongs to. Teams live in
// the global index; everything else is scoped to its owning team. An empty
// result means no index is maintained for the record.
func IndexKeyFor(kind Kind, teamID string) string {
	if kind == KindTeam {
		return TeamIndexKey
	}
	if teamID == "" {
		return ""
	}
	return TeamScopedIndexKey(kind, teamID)
}
