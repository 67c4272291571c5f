package records

import (
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/corretora/pkg/query"
	"github.com/google/uuid"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"PENDENTE", StatusPendente, false},
		{"finalizado", StatusFinalizado, false},
		{" Pendente ", StatusPendente, false},
		{"CANCELADO", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidStatus) {
					t.Errorf("err = %v, want ErrInvalidStatus", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseStatus(%q) = %q, %v", tt.in, got, err)
			}
		})
	}
}

func TestFiltersFromQuery(t *testing.T) {
	agency := uuid.New()
	values := url.Values{
		"status":         {"finalizado"},
		"imobiliaria_id": {agency.String()},
		"since":          {"2026-01-15"},
	}

	f, err := FiltersFromQuery(values)
	if err != nil {
		t.Fatalf("FiltersFromQuery() error: %v", err)
	}
	if f.Status == nil || *f.Status != StatusFinalizado {
		t.Errorf("Status = %v, want FINALIZADO", f.Status)
	}
	if f.ImobiliariaID == nil || *f.ImobiliariaID != agency {
		t.Errorf("ImobiliariaID = %v, want %s", f.ImobiliariaID, agency)
	}
	if f.Since == nil || !f.Since.Equal(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Since = %v", f.Since)
	}
}

func TestFiltersFromQuery_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
		want   error
	}{
		{"status", url.Values{"acao": {"X"}}, ErrInvalidStatus},
		{"agency", url.Values{"imobiliaria_id": {"abc"}}, ErrValidation},
		{"since", url.Values{"since": {"ontem"}}, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FiltersFromQuery(tt.values); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestListQuery_IsParameterized(t *testing.T) {
	notif := Definition{Name: "notificacoes", Table: "notificacoes", SearchFields: []string{"titulo"}, StatusField: "status"}
	p := newProjection(notif)

	search := `50% off"; DROP TABLE notificacoes; --`
	status := StatusPendente
	agency := uuid.New()

	qb := query.NewBuilder(p, defaultSort).WhereSearch(&search, notif.SearchFields...)
	Filters{Status: &status, ImobiliariaID: &agency}.Apply(qb)
	qb.OrderByFields(query.ParseSortFields("-titulo,id;DROP"))

	sql, args := qb.BuildPage(1, 20)

	if strings.Contains(sql, "DROP") {
		t.Fatalf("user input reached SQL: %s", sql)
	}
	for _, want := range []string{
		"r.data->>'titulo' ILIKE $1",
		"r.status = $2",
		"r.imobiliaria_id = $3",
		"ORDER BY r.data->>'titulo' DESC",
		"FROM public.notificacoes r",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("sql missing %q:\n%s", want, sql)
		}
	}
	if len(args) != 3 {
		t.Fatalf("args = %v, want 3", args)
	}
	if args[0] != `%50\% off"; DROP TABLE notificacoes; --%` {
		t.Errorf("search arg = %q, want escaped pattern", args[0])
	}
}

func TestStatements_UseDefinitionColumns(t *testing.T) {
	notif := Definition{Name: "notificacoes", Table: "notificacoes", StatusField: "status"}
	s := newStatements(notif, newProjection(notif))

	if !strings.Contains(s.updateStatus, `SET "status" = $1`) {
		t.Errorf("updateStatus = %s", s.updateStatus)
	}
	if !strings.Contains(s.nextSequence, `FROM public."notificacoes"`) ||
		!strings.Contains(s.nextSequence, "ON CONFLICT (colecao)") {
		t.Errorf("nextSequence = %s", s.nextSequence)
	}
	if !strings.Contains(s.insert, "RETURNING r.id, r.id_numero, r.status") {
		t.Errorf("insert = %s", s.insert)
	}

	def := newStatements(sampleDef, newProjection(sampleDef))
	if !strings.Contains(def.updateStatus, `SET "acao" = $1`) {
		t.Errorf("default status column not used: %s", def.updateStatus)
	}
}

func TestBuildStats(t *testing.T) {
	start := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	byStatus := []bucket{{"FINALIZADO", 3}, {"PENDENTE", 5}}
	byMonth := []bucket{{"2025-11", 2}, {"2026-03", 6}}

	stats := buildStats("seguro_incendio", byStatus, byMonth, start)

	if stats.Total != 8 {
		t.Errorf("Total = %d, want 8", stats.Total)
	}
	if stats.ByStatus[0].Status != StatusPendente || stats.ByStatus[0].Total != 5 {
		t.Errorf("ByStatus[0] = %+v", stats.ByStatus[0])
	}
	if len(stats.Monthly) != statsMonths {
		t.Fatalf("Monthly = %d entries, want %d", len(stats.Monthly), statsMonths)
	}
	if stats.Monthly[0] != (MonthCount{Month: "2025-11", Total: 2}) {
		t.Errorf("Monthly[0] = %+v", stats.Monthly[0])
	}
	if stats.Monthly[4] != (MonthCount{Month: "2026-03", Total: 6}) {
		t.Errorf("Monthly[4] = %+v", stats.Monthly[4])
	}
	if stats.Monthly[11].Month != "2026-10" || stats.Monthly[11].Total != 0 {
		t.Errorf("Monthly[11] = %+v", stats.Monthly[11])
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"contrato.pdf", "contrato.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\docs\rg frente.jpg`, "rg_frente.jpg"},
		{"a:b*c?.txt", "a_b_c_.txt"},
		{"..", ""},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
