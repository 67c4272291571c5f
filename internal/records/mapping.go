package records

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/JaimeStill/corretora/pkg/query"
	"github.com/JaimeStill/corretora/pkg/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const alias = "r"

// newProjection maps API names to columns of def's table. Search fields
// are registered as data->>'key' lookups so they can be filtered and sorted.
func newProjection(def Definition) *query.ProjectionMap {
	p := query.NewProjectionMap("public", def.Table, alias).
		Project("id", "id").
		Project("id_numero", "id_numero").
		Project(def.statusColumn(), "acao").
		Project("imobiliaria_id", "imobiliaria_id").
		Project("arquivos", "arquivos").
		Project("data", "data").
		Project("created_at", "created_at").
		Project("updated_at", "updated_at")

	for _, field := range def.SearchFields {
		p.ProjectJSON("data", field, field)
	}
	return p
}

var defaultSort = query.SortField{Field: "id_numero", Descending: true}

// statements holds the write SQL for one collection. Identifiers come from
// the Definition, never from requests.
type statements struct {
	nextSequence string
	insert       string
	updateStatus string
	updateData   string
	lockFiles    string
	updateFiles  string
	delete       string
}

func newStatements(def Definition, p *query.ProjectionMap) statements {
	table := "public." + pgx.Identifier{def.Table}.Sanitize()
	status := pgx.Identifier{def.statusColumn()}.Sanitize()
	returning := p.Columns()

	return statements{
		nextSequence: fmt.Sprintf(`INSERT INTO sequencias (colecao, valor)
			VALUES ($1, (SELECT COALESCE(MAX(id_numero), 0) + 1 FROM %s))
			ON CONFLICT (colecao) DO UPDATE
			SET valor = GREATEST(sequencias.valor + 1, EXCLUDED.valor)
			RETURNING valor`, table),
		insert: fmt.Sprintf(`INSERT INTO %s AS %s (id, id_numero, %s, imobiliaria_id, arquivos, data)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING %s`, table, alias, status, returning),
		updateStatus: fmt.Sprintf(`UPDATE %s AS %s SET %s = $1, updated_at = NOW()
			WHERE id = $2
			RETURNING %s`, table, alias, status, returning),
		updateData: fmt.Sprintf(`UPDATE %s AS %s SET data = $1, updated_at = NOW()
			WHERE id = $2
			RETURNING %s`, table, alias, returning),
		lockFiles: fmt.Sprintf(`SELECT arquivos FROM %s WHERE id = $1 FOR UPDATE`, table),
		updateFiles: fmt.Sprintf(`UPDATE %s AS %s SET arquivos = $1, updated_at = NOW()
			WHERE id = $2
			RETURNING %s`, table, alias, returning),
		delete: fmt.Sprintf(`DELETE FROM %s WHERE id = $1 RETURNING imobiliaria_id`, table),
	}
}

func scanRecord[T any](s repository.Scanner) (Record[T], error) {
	var (
		rec    Record[T]
		agency uuid.NullUUID
		files  []byte
		data   []byte
	)

	if err := s.Scan(
		&rec.ID,
		&rec.IDNumero,
		&rec.Status,
		&agency,
		&files,
		&data,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return rec, err
	}

	if agency.Valid {
		rec.ImobiliariaID = &agency.UUID
	}

	if err := json.Unmarshal(files, &rec.Arquivos); err != nil {
		return rec, fmt.Errorf("decode arquivos: %w", err)
	}
	if rec.Arquivos == nil {
		rec.Arquivos = []File{}
	}

	if err := json.Unmarshal(data, &rec.Data); err != nil {
		return rec, fmt.Errorf("decode data: %w", err)
	}

	return rec, nil
}

// Filters contains optional criteria for record queries.
type Filters struct {
	Status        *Status
	ImobiliariaID *uuid.UUID
	Since         *time.Time
}

// FiltersFromQuery extracts filters from acao (or status), imobiliaria_id
// and since (RFC 3339 or YYYY-MM-DD).
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters

	raw := values.Get("acao")
	if raw == "" {
		raw = values.Get("status")
	}
	if raw != "" {
		st, err := ParseStatus(raw)
		if err != nil {
			return f, err
		}
		f.Status = &st
	}

	if v := values.Get("imobiliaria_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, fmt.Errorf("%w: imobiliaria_id: %v", ErrValidation, err)
		}
		f.ImobiliariaID = &id
	}

	if v := values.Get("since"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			return f, fmt.Errorf("%w: since: %v", ErrValidation, err)
		}
		f.Since = &t
	}

	return f, nil
}

// Apply adds filter conditions to the query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	if f.Status != nil {
		b.WhereEquals("acao", string(*f.Status))
	}
	if f.ImobiliariaID != nil {
		b.WhereEquals("imobiliaria_id", *f.ImobiliariaID)
	}
	if f.Since != nil {
		b.WhereSince("created_at", *f.Since)
	}
	return b
}

func parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, v)
}
