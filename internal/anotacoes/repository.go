package anotacoes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/corretora/internal/realtime"
	"github.com/JaimeStill/corretora/pkg/repository"
	"github.com/google/uuid"
)

// maxContent bounds the board text in bytes.
const maxContent = 256 << 10

const columns = `conteudo, versao, atualizado_por, updated_at`

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates the board system over the quadro_anotacoes table.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "anotacoes"),
	}
}

func (r *repo) Get(ctx context.Context) (*Quadro, error) {
	q, err := repository.QueryOne(ctx, r.db,
		`SELECT `+columns+` FROM quadro_anotacoes WHERE id = 1`, nil, scanQuadro)
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}
	return &q, nil
}

func (r *repo) Save(ctx context.Context, cmd SaveCommand, by uuid.UUID) (*Quadro, error) {
	if cmd.Versao < 1 {
		return nil, fmt.Errorf("%w: versao required", ErrValidation)
	}
	if len(cmd.Conteudo) > maxContent {
		return nil, ErrTooLarge
	}

	q, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Quadro, error) {
		q, err := repository.QueryOne(ctx, tx,
			`UPDATE quadro_anotacoes
			SET conteudo = $1, versao = versao + 1, atualizado_por = $2, updated_at = NOW()
			WHERE id = 1 AND versao = $3
			RETURNING `+columns,
			[]any{cmd.Conteudo, by, cmd.Versao}, scanQuadro)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return q, ErrConflict
			}
			return q, err
		}

		payload, err := realtime.Notification{
			Action:     realtime.ActionUpdate,
			Collection: Collection,
			RecordID:   BoardID,
		}.Payload()
		if err != nil {
			return q, err
		}
		if _, err := tx.ExecContext(ctx, "SELECT pg_notify($1, $2)", realtime.Channel, payload); err != nil {
			return q, fmt.Errorf("notify: %w", err)
		}
		return q, nil
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("save board: %w", err)
	}

	r.logger.Info("board saved", "versao", q.Versao, "by", by)
	return &q, nil
}

func (r *repo) Resolve(ctx context.Context, id uuid.UUID) (json.RawMessage, error) {
	if id != BoardID {
		return nil, realtime.ErrGone
	}
	q, err := r.Get(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(q)
}

func scanQuadro(s repository.Scanner) (Quadro, error) {
	q := Quadro{ID: BoardID}
	var by uuid.NullUUID
	if err := s.Scan(&q.Conteudo, &q.Versao, &by, &q.UpdatedAt); err != nil {
		return q, err
	}
	if by.Valid {
		q.AtualizadoPor = &by.UUID
	}
	return q, nil
}
