package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/corretora/pkg/lifecycle"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrUnknownCollection is returned by Resolvers for unregistered collections.
var ErrUnknownCollection = errors.New("realtime: unknown collection")

// ErrGone is returned by a resolver when the record no longer exists.
var ErrGone = errors.New("realtime: record gone")

// Resolver loads the current JSON representation of a changed record.
type Resolver interface {
	Resolve(ctx context.Context, collection string, id uuid.UUID) (json.RawMessage, error)
}

// ResolveFunc loads one record of a single collection.
type ResolveFunc func(ctx context.Context, id uuid.UUID) (json.RawMessage, error)

// Resolvers dispatches Resolve by collection name.
type Resolvers map[string]ResolveFunc

func (r Resolvers) Resolve(ctx context.Context, collection string, id uuid.UUID) (json.RawMessage, error) {
	fn, ok := r[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	return fn(ctx, id)
}

// notificationConn is the subset of *pgx.Conn the listener needs.
type notificationConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

type dialFunc func(ctx context.Context) (notificationConn, error)

// Listener holds a dedicated connection LISTENing on Channel and publishes
// resolved events to a Hub. Notifications sent while disconnected are lost;
// there is no replay.
type Listener struct {
	dial           dialFunc
	hub            *Hub
	resolver       Resolver
	reconnectDelay time.Duration
	logger         *slog.Logger
}

// NewListener creates a Listener connecting with connString.
func NewListener(connString string, hub *Hub, resolver Resolver, reconnectDelay time.Duration, logger *slog.Logger) *Listener {
	dial := func(ctx context.Context) (notificationConn, error) {
		return pgx.Connect(ctx, connString)
	}
	return newListener(dial, hub, resolver, reconnectDelay, logger)
}

func newListener(dial dialFunc, hub *Hub, resolver Resolver, reconnectDelay time.Duration, logger *slog.Logger) *Listener {
	return &Listener{
		dial:           dial,
		hub:            hub,
		resolver:       resolver,
		reconnectDelay: reconnectDelay,
		logger:         logger.With("system", "realtime-listener"),
	}
}

// Start runs the listener until the coordinator shuts down, then closes the hub.
func (l *Listener) Start(lc *lifecycle.Coordinator) error {
	l.logger.Info("starting realtime listener", "channel", Channel)

	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Run(lc.Context())
	}()

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		<-done
		l.hub.Close()
		l.logger.Info("realtime listener stopped")
	})

	return nil
}

// Run listens until ctx is cancelled, reconnecting after connection errors.
func (l *Listener) Run(ctx context.Context) {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return
		}

		l.logger.Warn("listener disconnected", "error", err, "retry_in", l.reconnectDelay)

		select {
		case <-ctx.Done():
			return
		case <-time.After(l.reconnectDelay):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.dial(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{Channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	l.logger.Info("listening", "channel", Channel)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait: %w", err)
		}
		l.handle(ctx, n)
	}
}

func (l *Listener) handle(ctx context.Context, n *pgconn.Notification) {
	var note Notification
	if err := json.Unmarshal([]byte(n.Payload), &note); err != nil {
		l.logger.Error("invalid notification payload", "payload", n.Payload, "error", err)
		return
	}
	if !note.Action.Valid() {
		l.logger.Error("unknown notification action", "action", note.Action)
		return
	}

	event := Event{
		Action:     note.Action,
		Collection: note.Collection,
		RecordID:   note.RecordID,
		Timestamp:  time.Now().UTC(),
	}
	if note.Action == ActionDelete {
		event.ImobiliariaID = note.ImobiliariaID
	}

	if note.Action != ActionDelete && l.resolver != nil {
		record, err := l.resolver.Resolve(ctx, note.Collection, note.RecordID)
		if err != nil {
			if errors.Is(err, ErrGone) {
				l.logger.Debug("record removed before resolve", "collection", note.Collection, "record_id", note.RecordID)
				return
			}
			l.logger.Error("resolve record failed", "collection", note.Collection, "record_id", note.RecordID, "error", err)
			return
		}
		event.Record = record
	}

	l.hub.Publish(event)
}
