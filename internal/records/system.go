package records

import (
	"context"
	"encoding/json"

	"github.com/JaimeStill/corretora/pkg/pagination"
	"github.com/google/uuid"
)

// System defines the operations available on one collection.
type System[T Payload] interface {
	Definition() Definition
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Record[T]], error)
	Find(ctx context.Context, id uuid.UUID) (*Record[T], error)
	Latest(ctx context.Context) (*Record[T], error)
	Create(ctx context.Context, cmd CreateCommand[T]) (*Record[T], error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Record[T], error)
	Update(ctx context.Context, id uuid.UUID, data T) (*Record[T], error)
	Delete(ctx context.Context, id uuid.UUID) error
	AttachFiles(ctx context.Context, id uuid.UUID, uploads []Upload) (*Record[T], error)
	OpenFile(ctx context.Context, id uuid.UUID, name string) (*File, []byte, error)
	RemoveFile(ctx context.Context, id uuid.UUID, name string) (*Record[T], error)
	Stats(ctx context.Context, filters Filters) (*Stats, error)
	// Resolve returns the JSON form of a record for realtime events.
	Resolve(ctx context.Context, id uuid.UUID) (json.RawMessage, error)
}
