// Package records is the generic client shared by every brokerage
// collection: listing with search and filters, creation with an atomic
// display sequence, status changes, file attachments, dashboard counts and
// realtime change events. A collection is described by a Definition and a
// payload type; the SQL, HTTP and event plumbing is the same for all.
package records

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the processing state of a record.
type Status string

const (
	StatusPendente   Status = "PENDENTE"
	StatusFinalizado Status = "FINALIZADO"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusPendente || s == StatusFinalizado
}

// ParseStatus parses s case-insensitively.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// Payload is implemented by every collection's data shape.
type Payload interface {
	Validate() error
}

// Access controls what agency users may do in a collection. Admins may do
// everything.
type Access int

const (
	// AccessSubmit lets agencies read and submit their own records.
	AccessSubmit Access = iota
	// AccessRead lets agencies read their own records only.
	AccessRead
	// AccessAdmin hides the collection from agencies.
	AccessAdmin
)

// Definition describes one collection.
type Definition struct {
	// Name is the URL segment and realtime topic.
	Name string
	// Table is the backing table in the public schema.
	Table string
	// SearchFields are payload keys matched by the free-text search.
	SearchFields []string
	// StatusField is the status column. Defaults to "acao".
	StatusField string
	// Description is shown in route listings.
	Description string
	Access      Access
}

func (d Definition) statusColumn() string {
	if d.StatusField == "" {
		return "acao"
	}
	return d.StatusField
}

// File is an attachment stored under the record. Key is the blob's storage
// key; every upload gets its own so concurrent batches never share a blob.
type File struct {
	Name        string    `json:"name"`
	Key         string    `json:"key,omitempty"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Pages       *int      `json:"pages,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Record is a stored row of a collection with payload T.
type Record[T any] struct {
	ID            uuid.UUID  `json:"id"`
	IDNumero      int64      `json:"id_numero"`
	Status        Status     `json:"acao"`
	ImobiliariaID *uuid.UUID `json:"imobiliaria_id,omitempty"`
	Arquivos      []File     `json:"arquivos"`
	Data          T          `json:"data"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// File returns the attachment named name.
func (r Record[T]) File(name string) (File, bool) {
	for _, f := range r.Arquivos {
		if f.Name == name {
			return f, true
		}
	}
	return File{}, false
}

// CreateCommand creates a record. Empty Status means PENDENTE.
type CreateCommand[T any] struct {
	Data          T
	Status        Status
	ImobiliariaID *uuid.UUID
	Files         []Upload
}

// Upload is a file received for attachment.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// StatusCount is the number of records in one status.
type StatusCount struct {
	Status Status `json:"acao"`
	Total  int    `json:"total"`
}

// MonthCount is the number of records created in one month (YYYY-MM).
type MonthCount struct {
	Month string `json:"mes"`
	Total int    `json:"total"`
}

// Stats holds dashboard chart data for a collection.
type Stats struct {
	Collection string        `json:"collection"`
	Total      int           `json:"total"`
	ByStatus   []StatusCount `json:"por_status"`
	Monthly    []MonthCount  `json:"mensal"`
}
