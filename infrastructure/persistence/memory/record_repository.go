package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"homeport-backend/application/ports"
	"homeport-backend/domain/core/entities"
	"homeport-backend/domain/core/valueobjects"
	pkgerrors "homeport-backend/pkg/errors"
)

// recordRow is the stored shape; the repository never hands out live
// entity pointers
type recordRow struct {
	id        string
	ownerID   string
	completed bool
	fields    valueobjects.FieldSet
	createdAt time.Time
	updatedAt time.Time
	version   int
}

// RecordRepository is an in-memory RecordRepository used by tests and local
// development. The bind check-and-set runs under the repository lock, which
// gives it the same atomicity the DynamoDB conditional update provides in
// production.
type RecordRepository struct {
	mu      sync.Mutex
	rows    map[string]*recordRow
	failErr error

	bindSuccesses int
}

// NewRecordRepository creates an empty in-memory repository
func NewRecordRepository() *RecordRepository {
	return &RecordRepository{
		rows: make(map[string]*recordRow),
	}
}

// FailWith makes every subsequent call return err until cleared with nil.
// Tests use it to simulate transport failures.
func (r *RecordRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failErr = err
}

// BindSuccesses reports how many bind operations actually changed
// ownership, which is what the idempotency tests observe.
func (r *RecordRepository) BindSuccesses() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bindSuccesses
}

// Create persists a freshly submitted record
func (r *RecordRepository) Create(ctx context.Context, record *entities.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failErr != nil {
		return r.failErr
	}

	r.rows[record.ID().String()] = rowFromRecord(record)
	return nil
}

// FetchByID retrieves a record by its ID
func (r *RecordRepository) FetchByID(ctx context.Context, id valueobjects.RecordID) (*entities.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failErr != nil {
		return nil, r.failErr
	}

	row, ok := r.rows[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("record")
	}
	return recordFromRow(row)
}

// FetchLatestFor retrieves the most recently created record owned by the
// principal, (nil, nil) when there is none
func (r *RecordRepository) FetchLatestFor(ctx context.Context, ownerID string) (*entities.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failErr != nil {
		return nil, r.failErr
	}

	var owned []*recordRow
	for _, row := range r.rows {
		if row.ownerID == ownerID && ownerID != "" {
			owned = append(owned, row)
		}
	}
	if len(owned) == 0 {
		return nil, nil
	}

	sort.Slice(owned, func(i, j int) bool {
		return owned[i].createdAt.After(owned[j].createdAt)
	})
	return recordFromRow(owned[0])
}

// BindOwner claims the record for the principal under the repository lock
func (r *RecordRepository) BindOwner(ctx context.Context, id valueobjects.RecordID, ownerID string) (*entities.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failErr != nil {
		return nil, r.failErr
	}

	row, ok := r.rows[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("record")
	}

	switch {
	case row.ownerID == ownerID:
		// Idempotent re-bind
	case row.ownerID == "":
		row.ownerID = ownerID
		row.updatedAt = time.Now()
		row.version++
		r.bindSuccesses++
	default:
		return nil, pkgerrors.NewOwnershipConflictError(id.String())
	}

	return recordFromRow(row)
}

// Update persists the record's field set and version
func (r *RecordRepository) Update(ctx context.Context, record *entities.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failErr != nil {
		return r.failErr
	}

	if _, ok := r.rows[record.ID().String()]; !ok {
		return pkgerrors.NewNotFoundError("record")
	}

	r.rows[record.ID().String()] = rowFromRecord(record)
	return nil
}

// MarkCompleted flips the completion flag
func (r *RecordRepository) MarkCompleted(ctx context.Context, id valueobjects.RecordID) (*entities.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failErr != nil {
		return nil, r.failErr
	}

	row, ok := r.rows[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("record")
	}

	if !row.completed {
		row.completed = true
		row.updatedAt = time.Now()
		row.version++
	}
	return recordFromRow(row)
}

func rowFromRecord(record *entities.Record) *recordRow {
	return &recordRow{
		id:        record.ID().String(),
		ownerID:   record.OwnerID(),
		completed: record.Completed(),
		fields:    record.Fields(),
		createdAt: record.CreatedAt(),
		updatedAt: record.UpdatedAt(),
		version:   record.Version(),
	}
}

func recordFromRow(row *recordRow) (*entities.Record, error) {
	id, err := valueobjects.NewRecordIDFromString(row.id)
	if err != nil {
		return nil, pkgerrors.NewInternalError("corrupt record id in store").WithCause(err)
	}
	return entities.ReconstructRecord(
		id,
		row.ownerID,
		row.completed,
		row.fields,
		row.createdAt,
		row.updatedAt,
		row.version,
	), nil
}

var _ ports.RecordRepository = (*RecordRepository)(nil)
