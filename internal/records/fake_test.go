package records

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/JaimeStill/corretora/pkg/pagination"
	"github.com/google/uuid"
)

type sample struct {
	Nome string `json:"nome"`
	Cpf  string `json:"cpf,omitempty"`
}

func (s sample) Validate() error {
	if strings.TrimSpace(s.Nome) == "" {
		return errors.New("nome is required")
	}
	return nil
}

var sampleDef = Definition{
	Name:         "seguro_incendio",
	Table:        "seguro_incendio",
	SearchFields: []string{"nome", "cpf"},
	Description:  "Fire insurance",
}

// fakeSystem keeps records in memory and records the last list filters.
type fakeSystem struct {
	mu          sync.Mutex
	def         Definition
	records     map[uuid.UUID]*Record[sample]
	files       map[string][]byte
	seq         int64
	lastFilters Filters
}

func newFakeSystem(def Definition) *fakeSystem {
	return &fakeSystem{
		def:     def,
		records: make(map[uuid.UUID]*Record[sample]),
		files:   make(map[string][]byte),
	}
}

func (f *fakeSystem) Definition() Definition { return f.def }

func (f *fakeSystem) seed(data sample, agency *uuid.UUID) *Record[sample] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	now := time.Now()
	rec := &Record[sample]{
		ID:            uuid.New(),
		IDNumero:      f.seq,
		Status:        StatusPendente,
		ImobiliariaID: agency,
		Arquivos:      []File{},
		Data:          data,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	f.records[rec.ID] = rec
	return rec
}

func (f *fakeSystem) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Record[sample]], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilters = filters

	var items []Record[sample]
	for _, r := range f.records {
		if filters.ImobiliariaID != nil && (r.ImobiliariaID == nil || *r.ImobiliariaID != *filters.ImobiliariaID) {
			continue
		}
		if filters.Status != nil && r.Status != *filters.Status {
			continue
		}
		if page.Search != nil && !strings.Contains(strings.ToLower(r.Data.Nome), strings.ToLower(*page.Search)) {
			continue
		}
		items = append(items, *r)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].IDNumero > items[j].IDNumero })

	total := len(items)
	start := min((page.Page-1)*page.PageSize, total)
	end := min(start+page.PageSize, total)

	result := pagination.NewPageResult(items[start:end], total, page)
	return &result, nil
}

func (f *fakeSystem) Find(ctx context.Context, id uuid.UUID) (*Record[sample], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeSystem) Latest(ctx context.Context) (*Record[sample], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *Record[sample]
	for _, r := range f.records {
		if latest == nil || r.IDNumero > latest.IDNumero {
			latest = r
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeSystem) Create(ctx context.Context, cmd CreateCommand[sample]) (*Record[sample], error) {
	if err := cmd.Data.Validate(); err != nil {
		return nil, errors.Join(ErrValidation, err)
	}
	rec := f.seed(cmd.Data, cmd.ImobiliariaID)
	if cmd.Status != "" {
		rec.Status = cmd.Status
	}
	if len(cmd.Files) > 0 {
		return f.AttachFiles(ctx, rec.ID, cmd.Files)
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeSystem) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Record[sample], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	r.Status = status
	cp := *r
	return &cp, nil
}

func (f *fakeSystem) Update(ctx context.Context, id uuid.UUID, data sample) (*Record[sample], error) {
	if err := data.Validate(); err != nil {
		return nil, errors.Join(ErrValidation, err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	r.Data = data
	cp := *r
	return &cp, nil
}

func (f *fakeSystem) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[id]; !ok {
		return ErrNotFound
	}
	delete(f.records, id)
	return nil
}

func (f *fakeSystem) AttachFiles(ctx context.Context, id uuid.UUID, uploads []Upload) (*Record[sample], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	for _, u := range uploads {
		name := sanitizeFilename(u.Filename)
		r.Arquivos = append(r.Arquivos, File{
			Name:        name,
			ContentType: detectContentType(u.ContentType, u.Data),
			Size:        int64(len(u.Data)),
		})
		f.files[id.String()+"/"+name] = u.Data
	}
	cp := *r
	return &cp, nil
}

func (f *fakeSystem) OpenFile(ctx context.Context, id uuid.UUID, name string) (*File, []byte, error) {
	rec, err := f.Find(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	file, ok := rec.File(name)
	if !ok {
		return nil, nil, ErrNotFound
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return &file, f.files[id.String()+"/"+name], nil
}

func (f *fakeSystem) RemoveFile(ctx context.Context, id uuid.UUID, name string) (*Record[sample], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	kept := r.Arquivos[:0]
	for _, file := range r.Arquivos {
		if file.Name != name {
			kept = append(kept, file)
		}
	}
	r.Arquivos = kept
	delete(f.files, id.String()+"/"+name)
	cp := *r
	return &cp, nil
}

func (f *fakeSystem) Stats(ctx context.Context, filters Filters) (*Stats, error) {
	f.mu.Lock()
	f.lastFilters = filters
	f.mu.Unlock()
	return &Stats{Collection: f.def.Name}, nil
}

func (f *fakeSystem) Resolve(ctx context.Context, id uuid.UUID) (json.RawMessage, error) {
	rec, err := f.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return json.Marshal(rec)
}
