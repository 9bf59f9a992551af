// Package remote defines the client surface for the network-backed document
// store. The store holds one JSON document per entity; entity typing happens
// in the storage layer, not here.
package remote

import "context"

// Document is one stored record. Deleted documents survive as tombstones so
// pull-based sync can propagate deletions with last-write-wins semantics.
type Document struct {
	Kind      string
	ID        string
	TeamID    string
	GameID    string
	Payload   []byte
	UpdatedAt int64
	Deleted   bool
}

// Client is the remote document store. Implementations must keep data calls
// cheap to reject while disconnected: callers probe IsConnected on every
// operation and treat any data-call error as a cue to fall back locally.
type Client interface {
	// Connect establishes (or re-establishes) the remote session. It must be
	// safe to call repeatedly and from concurrent goroutines.
	Connect(ctx context.Context) error
	IsConnected() bool
	// ConnectionError reports why the last Connect failed, nil when healthy.
	ConnectionError() error
	Close() error

	// Get returns the live document for kind+id, ErrNotFound for missing or
	// tombstoned documents.
	Get(ctx context.Context, kind, id string) (Document, error)
	// GetByGame returns the live document of the given kind attached to a
	// game, ErrNotFound when none is.
	GetByGame(ctx context.Context, kind, gameID string) (Document, error)
	ListByTeam(ctx context.Context, kind, teamID string) ([]Document, error)
	// ListKind returns every live document of a kind regardless of team.
	ListKind(ctx context.Context, kind string) ([]Document, error)
	// ListKindWithDeleted returns every document of a kind, tombstones
	// included, so sync pulls can propagate remote deletions.
	ListKindWithDeleted(ctx context.Context, kind string) ([]Document, error)
	// ListByTeamWithDeleted is ListByTeam with tombstones included.
	ListByTeamWithDeleted(ctx context.Context, kind, teamID string) ([]Document, error)
	Put(ctx context.Context, doc Document) error
	// Delete tombstones kind+id. Deleting an absent document is not an error.
	Delete(ctx context.Context, kind, id string) error
}
