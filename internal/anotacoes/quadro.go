// Package anotacoes is the staff annotation board: a single shared text
// saved with an optimistic version check so concurrent editors cannot
// silently overwrite each other.
package anotacoes

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Collection is the realtime topic of board changes.
const Collection = "quadro_anotacoes"

// BoardID identifies the board in realtime events.
var BoardID = uuid.NewSHA1(uuid.NameSpaceURL, []byte("corretora:"+Collection))

// Quadro is the board's current content.
type Quadro struct {
	ID            uuid.UUID  `json:"id"`
	Conteudo      string     `json:"conteudo"`
	Versao        int64      `json:"versao"`
	AtualizadoPor *uuid.UUID `json:"atualizado_por,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// SaveCommand replaces the content if Versao is still current.
type SaveCommand struct {
	Conteudo string `json:"conteudo"`
	Versao   int64  `json:"versao"`
}

// System reads and saves the board.
type System interface {
	Get(ctx context.Context) (*Quadro, error)
	// Save fails with ErrConflict when cmd.Versao is stale.
	Save(ctx context.Context, cmd SaveCommand, by uuid.UUID) (*Quadro, error)
	// Resolve returns the JSON form of the board for realtime events.
	Resolve(ctx context.Context, id uuid.UUID) (json.RawMessage, error)
}
