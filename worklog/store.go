/*
store.go - WorklogStore collaborator contract

PURPOSE:
  Defines the interface between the engine's callers and worklog
  persistence. The engine itself only consumes the List snapshot and
  issues mutation intents through this contract; it holds no state of
  its own across calls.

CONTRACT:
  - List returns a read-only snapshot. Derived views are recomputed
    from it on every call.
  - Create assigns the record id. Update replaces the four mutable
    fields wholesale. Delete removes by id.
  - Any operation may fail with ErrStoreUnavailable; Update/Delete
    fail with ErrNotFound on a missing id.
  - No retries at this layer. Retry policy, if any, is the caller's.

UPSERT-BY-DATE:
  The store does not reject a second record on the same day. Callers
  implement upsert-by-date with FindByDate: look up the existing
  record, confirm, then Update instead of Create.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite, owner-scoped
  - worklog/store: In-memory for tests and dev
*/
package worklog

import "context"

// Store exposes create/list/update/delete for worklog records.
type Store interface {
	// List returns a consistent snapshot of all records.
	List(ctx context.Context) ([]WorklogRecord, error)

	// Create persists a new record and assigns its id.
	Create(ctx context.Context, c Candidate) (WorklogRecord, error)

	// Update replaces the mutable fields of an existing record.
	Update(ctx context.Context, id string, c Candidate) (WorklogRecord, error)

	// Delete removes a record by id.
	Delete(ctx context.Context, id string) error
}
