package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/JaimeStill/corretora/internal/realtime"
	"github.com/JaimeStill/corretora/pkg/pagination"
	"github.com/JaimeStill/corretora/pkg/query"
	"github.com/JaimeStill/corretora/pkg/repository"
	"github.com/JaimeStill/corretora/pkg/storage"
	"github.com/google/uuid"
)

// maxSequenceAttempts bounds retries when an insert collides on id_numero.
const maxSequenceAttempts = 3

type repo[T Payload] struct {
	def        Definition
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
	projection *query.ProjectionMap
	sql        statements
	now        func() time.Time
}

// New creates the system for the collection described by def.
func New[T Payload](def Definition, db *sql.DB, store storage.System, logger *slog.Logger, pagination pagination.Config) System[T] {
	p := newProjection(def)
	return &repo[T]{
		def:        def,
		db:         db,
		storage:    store,
		logger:     logger.With("system", "records", "collection", def.Name),
		pagination: pagination,
		projection: p,
		sql:        newStatements(def, p),
		now:        time.Now,
	}
}

func (r *repo[T]) Definition() Definition {
	return r.def
}

func (r *repo[T]) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Record[T]], error) {
	page.Normalize(r.pagination)
	page.Sort = slices.DeleteFunc(page.Sort, func(f query.SortField) bool {
		return !r.projection.Has(f.Field)
	})

	qb := query.
		NewBuilder(r.projection, defaultSort).
		WhereSearch(page.Search, r.def.SearchFields...)

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count %s: %w", r.def.Name, err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRecord[T])
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.def.Name, err)
	}

	result := pagination.NewPageResult(items, total, page)
	return &result, nil
}

func (r *repo[T]) Find(ctx context.Context, id uuid.UUID) (*Record[T], error) {
	q, args := query.
		NewBuilder(r.projection).
		BuildSingle("id", id)

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecord[T])
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rec, nil
}

func (r *repo[T]) Latest(ctx context.Context) (*Record[T], error) {
	q, args := query.
		NewBuilder(r.projection, defaultSort).
		BuildPage(1, 1)

	items, err := repository.QueryMany(ctx, r.db, q, args, scanRecord[T])
	if err != nil {
		return nil, fmt.Errorf("query latest %s: %w", r.def.Name, err)
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return &items[0], nil
}

func (r *repo[T]) Create(ctx context.Context, cmd CreateCommand[T]) (*Record[T], error) {
	if err := cmd.Data.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	status := cmd.Status
	if status == "" {
		status = StatusPendente
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	data, err := json.Marshal(cmd.Data)
	if err != nil {
		return nil, fmt.Errorf("encode data: %w", err)
	}

	for attempt := 1; ; attempt++ {
		rec, err := r.insert(ctx, status, cmd.ImobiliariaID, data)
		if err == nil {
			r.logger.Info("record created", "id", rec.ID, "id_numero", rec.IDNumero)

			if len(cmd.Files) == 0 {
				return &rec, nil
			}

			withFiles, err := r.AttachFiles(ctx, rec.ID, cmd.Files)
			if err != nil {
				if delErr := r.Delete(ctx, rec.ID); delErr != nil {
					r.logger.Error("rollback of record failed after attach error", "id", rec.ID, "error", delErr)
				}
				return nil, err
			}
			return withFiles, nil
		}

		if !r.isSequenceCollision(err) {
			if repository.IsForeignKeyViolation(err) {
				return nil, fmt.Errorf("%w: unknown imobiliaria", ErrValidation)
			}
			return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
		}

		if attempt == maxSequenceAttempts {
			return nil, fmt.Errorf("%w: id_numero still colliding after %d attempts", ErrDuplicate, attempt)
		}

		r.logger.Warn("id_numero collision, retrying", "attempt", attempt)
	}
}

func (r *repo[T]) insert(ctx context.Context, status Status, agency *uuid.UUID, data []byte) (Record[T], error) {
	return repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Record[T], error) {
		var seq int64
		if err := tx.QueryRowContext(ctx, r.sql.nextSequence, r.def.Table).Scan(&seq); err != nil {
			return Record[T]{}, fmt.Errorf("next sequence: %w", err)
		}

		rec, err := repository.QueryOne(ctx, tx, r.sql.insert, []any{
			uuid.New(), seq, status, nullUUID(agency), []byte("[]"), data,
		}, scanRecord[T])
		if err != nil {
			return rec, err
		}

		return rec, r.notify(ctx, tx, realtime.ActionCreate, rec.ID)
	})
}

func (r *repo[T]) isSequenceCollision(err error) bool {
	return repository.IsUniqueViolation(err) &&
		repository.ConstraintName(err) == r.def.Table+"_id_numero_key"
}

func (r *repo[T]) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Record[T], error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	rec, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Record[T], error) {
		rec, err := repository.QueryOne(ctx, tx, r.sql.updateStatus, []any{status, id}, scanRecord[T])
		if err != nil {
			return rec, err
		}
		return rec, r.notify(ctx, tx, realtime.ActionUpdate, rec.ID)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("record status updated", "id", rec.ID, "acao", rec.Status)
	return &rec, nil
}

func (r *repo[T]) Update(ctx context.Context, id uuid.UUID, data T) (*Record[T], error) {
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode data: %w", err)
	}

	rec, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Record[T], error) {
		rec, err := repository.QueryOne(ctx, tx, r.sql.updateData, []any{raw, id}, scanRecord[T])
		if err != nil {
			return rec, err
		}
		return rec, r.notify(ctx, tx, realtime.ActionUpdate, rec.ID)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("record updated", "id", rec.ID)
	return &rec, nil
}

func (r *repo[T]) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		owner, err := repository.QueryOne(ctx, tx, r.sql.delete, []any{id}, scanOwner)
		if err != nil {
			return struct{}{}, err
		}
		return struct{}{}, r.notifyOwned(ctx, tx, realtime.ActionDelete, id, owner)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if err := r.storage.DeletePrefix(ctx, r.filePrefix(id)); err != nil {
		r.logger.Error("storage cleanup failed", "id", id, "error", err)
	}

	r.logger.Info("record deleted", "id", id)
	return nil
}

func (r *repo[T]) Resolve(ctx context.Context, id uuid.UUID) (json.RawMessage, error) {
	rec, err := r.Find(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, realtime.ErrGone
		}
		return nil, err
	}
	return json.Marshal(rec)
}

// notify queues a change notification delivered when tx commits.
func (r *repo[T]) notify(ctx context.Context, tx *sql.Tx, action realtime.Action, id uuid.UUID) error {
	return r.notifyOwned(ctx, tx, action, id, nil)
}

// notifyOwned is notify for changes whose body cannot be resolved later, so
// the owning agency travels with the notification.
func (r *repo[T]) notifyOwned(ctx context.Context, tx *sql.Tx, action realtime.Action, id uuid.UUID, owner *uuid.UUID) error {
	payload, err := realtime.Notification{
		Action:        action,
		Collection:    r.def.Name,
		RecordID:      id,
		ImobiliariaID: owner,
	}.Payload()
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "SELECT pg_notify($1, $2)", realtime.Channel, payload); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

func scanOwner(s repository.Scanner) (*uuid.UUID, error) {
	var owner uuid.NullUUID
	if err := s.Scan(&owner); err != nil {
		return nil, err
	}
	if !owner.Valid {
		return nil, nil
	}
	return &owner.UUID, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
