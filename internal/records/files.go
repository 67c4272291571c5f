package records

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/JaimeStill/corretora/internal/realtime"
	"github.com/JaimeStill/corretora/pkg/repository"
	"github.com/JaimeStill/corretora/pkg/storage"
	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/sync/errgroup"
)

// maxParallelStores bounds concurrent writes of one upload batch.
const maxParallelStores = 4

// AttachFiles stores every upload and appends them to the record. Either
// all files are attached or none: a failed store or update removes the
// files already written by this call.
func (r *repo[T]) AttachFiles(ctx context.Context, id uuid.UUID, uploads []Upload) (*Record[T], error) {
	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: no files", ErrInvalidFile)
	}

	current, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	files, err := r.prepare(current.Arquivos, uploads)
	if err != nil {
		return nil, err
	}

	stored, err := r.storeAll(ctx, id, uploads, files)
	if err != nil {
		r.discard(id, stored)
		return nil, err
	}

	rec, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Record[T], error) {
		existing, err := r.lockFiles(ctx, tx, id)
		if err != nil {
			return Record[T]{}, err
		}
		for _, f := range files {
			if containsFile(existing, f.Name) {
				return Record[T]{}, fmt.Errorf("%w: file %q already attached", ErrDuplicate, f.Name)
			}
		}
		return r.writeFiles(ctx, tx, id, append(existing, files...))
	})
	if err != nil {
		r.discard(id, stored)
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("files attached", "id", id, "count", len(files))
	return &rec, nil
}

func (r *repo[T]) OpenFile(ctx context.Context, id uuid.UUID, name string) (*File, []byte, error) {
	rec, err := r.Find(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	f, ok := rec.File(name)
	if !ok {
		return nil, nil, fmt.Errorf("%w: file %q", ErrNotFound, name)
	}

	data, err := r.storage.Retrieve(ctx, r.storageKey(id, f))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: file %q missing from storage", ErrNotFound, name)
		}
		return nil, nil, fmt.Errorf("retrieve file: %w", err)
	}

	return &f, data, nil
}

func (r *repo[T]) RemoveFile(ctx context.Context, id uuid.UUID, name string) (*Record[T], error) {
	var removed File

	rec, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Record[T], error) {
		existing, err := r.lockFiles(ctx, tx, id)
		if err != nil {
			return Record[T]{}, err
		}

		kept := make([]File, 0, len(existing))
		for _, f := range existing {
			if f.Name == name {
				removed = f
				continue
			}
			kept = append(kept, f)
		}
		if len(kept) == len(existing) {
			return Record[T]{}, fmt.Errorf("%w: file %q", ErrNotFound, name)
		}

		return r.writeFiles(ctx, tx, id, kept)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if err := r.storage.Delete(ctx, r.storageKey(id, removed)); err != nil {
		r.logger.Error("storage cleanup failed", "id", id, "file", name, "error", err)
	}

	r.logger.Info("file removed", "id", id, "file", name)
	return &rec, nil
}

// prepare validates the batch against itself and the record's current
// files and builds the metadata to append.
func (r *repo[T]) prepare(existing []File, uploads []Upload) ([]File, error) {
	files := make([]File, len(uploads))
	seen := make(map[string]bool, len(uploads))
	now := r.now().UTC()

	for i, u := range uploads {
		name := sanitizeFilename(u.Filename)
		if name == "" {
			return nil, fmt.Errorf("%w: empty filename", ErrInvalidFile)
		}
		if len(u.Data) == 0 {
			return nil, fmt.Errorf("%w: %q is empty", ErrInvalidFile, name)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %q appears twice", ErrInvalidFile, name)
		}
		if containsFile(existing, name) {
			return nil, fmt.Errorf("%w: file %q already attached", ErrDuplicate, name)
		}
		seen[name] = true

		files[i] = File{
			Name:        name,
			ContentType: detectContentType(u.ContentType, u.Data),
			Size:        int64(len(u.Data)),
			UploadedAt:  now,
		}
	}
	return files, nil
}

// storeAll writes the batch concurrently and returns the keys written,
// including on failure so the caller can remove them.
func (r *repo[T]) storeAll(ctx context.Context, id uuid.UUID, uploads []Upload, files []File) ([]string, error) {
	var (
		mu     sync.Mutex
		stored = make([]string, 0, len(uploads))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelStores)

	for i := range uploads {
		g.Go(func() error {
			if files[i].ContentType == "application/pdf" {
				if pages, err := pdfPageCount(uploads[i].Data); err != nil {
					r.logger.Warn("failed to extract pdf page count", "file", files[i].Name, "error", err)
				} else {
					files[i].Pages = &pages
				}
			}

			key := r.blobKey(id, files[i].Name)
			if err := r.storage.Store(gctx, key, uploads[i].Data); err != nil {
				return fmt.Errorf("store %q: %w", files[i].Name, err)
			}
			files[i].Key = key

			mu.Lock()
			stored = append(stored, key)
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	return stored, err
}

func (r *repo[T]) discard(id uuid.UUID, keys []string) {
	for _, key := range keys {
		if err := r.storage.Delete(context.Background(), key); err != nil {
			r.logger.Error("cleanup of partial upload failed", "id", id, "key", key, "error", err)
		}
	}
}

func (r *repo[T]) lockFiles(ctx context.Context, tx *sql.Tx, id uuid.UUID) ([]File, error) {
	var raw []byte
	if err := tx.QueryRowContext(ctx, r.sql.lockFiles, id).Scan(&raw); err != nil {
		return nil, err
	}
	var files []File
	if err := json.Unmarshal(raw, &files); err != nil {
		return nil, fmt.Errorf("decode arquivos: %w", err)
	}
	return files, nil
}

func (r *repo[T]) writeFiles(ctx context.Context, tx *sql.Tx, id uuid.UUID, files []File) (Record[T], error) {
	if files == nil {
		files = []File{}
	}
	raw, err := json.Marshal(files)
	if err != nil {
		return Record[T]{}, fmt.Errorf("encode arquivos: %w", err)
	}

	rec, err := repository.QueryOne(ctx, tx, r.sql.updateFiles, []any{raw, id}, scanRecord[T])
	if err != nil {
		return rec, err
	}
	return rec, r.notify(ctx, tx, realtime.ActionUpdate, id)
}

func (r *repo[T]) filePrefix(id uuid.UUID) string {
	return path.Join(r.def.Name, id.String())
}

// blobKey places each upload in its own directory under the record.
func (r *repo[T]) blobKey(id uuid.UUID, name string) string {
	return path.Join(r.def.Name, id.String(), uuid.NewString(), name)
}

// storageKey resolves where f's bytes live. Files attached before keys were
// recorded sit directly under the record prefix.
func (r *repo[T]) storageKey(id uuid.UUID, f File) string {
	if f.Key != "" {
		return f.Key
	}
	return path.Join(r.def.Name, id.String(), f.Name)
}

func containsFile(files []File, name string) bool {
	for _, f := range files {
		if f.Name == name {
			return true
		}
	}
	return false
}

var filenameReplacer = strings.NewReplacer(
	" ", "_",
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
)

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = filenameReplacer.Replace(name)
	if name == "." || name == ".." {
		return ""
	}
	return name
}

func detectContentType(header string, data []byte) string {
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}

func pdfPageCount(data []byte) (int, error) {
	return api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
}
