package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/JaimeStill/corretora/internal/auth"
	"github.com/JaimeStill/corretora/internal/realtime"
	"github.com/JaimeStill/corretora/pkg/handlers"
	"github.com/JaimeStill/corretora/pkg/pagination"
	"github.com/JaimeStill/corretora/pkg/routes"
	"github.com/JaimeStill/corretora/pkg/storage"
	"github.com/google/uuid"
)

// Multipart form field names accepted by Create and AttachFiles.
const (
	formPayload = "payload"
	formFiles   = "arquivos"
)

// Handler provides HTTP endpoints for one collection. Every endpoint needs
// an auth.Session in the request context; agency sessions only see and
// touch their own agency's records.
type Handler[T Payload] struct {
	sys        System[T]
	hub        *realtime.Hub
	logger     *slog.Logger
	pagination pagination.Config
	uploads    storage.Limits
}

// NewHandler creates a collection handler.
func NewHandler[T Payload](sys System[T], hub *realtime.Hub, logger *slog.Logger, pagination pagination.Config, uploads storage.Limits) *Handler[T] {
	return &Handler[T]{
		sys:        sys,
		hub:        hub,
		logger:     logger.With("handler", sys.Definition().Name),
		pagination: pagination,
		uploads:    uploads,
	}
}

type createRequest[T any] struct {
	Data          T          `json:"data"`
	Status        Status     `json:"acao,omitempty"`
	ImobiliariaID *uuid.UUID `json:"imobiliaria_id,omitempty"`
}

type statusRequest struct {
	Status Status `json:"acao"`
}

// Routes returns the collection's route group.
func (h *Handler[T]) Routes() routes.Group {
	def := h.sys.Definition()

	return routes.Group{
		Prefix:      "/" + def.Name,
		Description: def.Description,
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/events", Handler: h.Events},
			{Method: "GET", Pattern: "/stats", Handler: h.Stats},
			{Method: "GET", Pattern: "/latest", Handler: h.Latest},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Update},
			{Method: "PATCH", Pattern: "/{id}/acao", Handler: h.UpdateStatus},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
			{Method: "POST", Pattern: "/{id}/files", Handler: h.AttachFiles},
			{Method: "GET", Pattern: "/{id}/files/{filename}", Handler: h.OpenFile},
			{Method: "DELETE", Pattern: "/{id}/files/{filename}", Handler: h.RemoveFile},
		},
	}
}

func (h *Handler[T]) List(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters, err := FiltersFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	filters = scopeFilters(session, filters)

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler[T]) Find(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.session(w, r); !ok {
		return
	}

	rec, ok := h.owned(w, r)
	if !ok {
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

func (h *Handler[T]) Latest(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	rec, err := h.sys.Latest(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

func (h *Handler[T]) Create(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	if !session.IsAdmin() && h.sys.Definition().Access != AccessSubmit {
		handlers.RespondError(w, h.logger, http.StatusForbidden, ErrForbidden)
		return
	}

	var (
		req     createRequest[T]
		uploads []Upload
		err     error
	)

	if isMultipart(r) {
		req, uploads, err = h.readMultipartCreate(w, r)
	} else {
		req, err = handlers.DecodeJSON[createRequest[T]](r)
		if err != nil {
			err = fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	cmd := CreateCommand[T]{
		Data:          req.Data,
		Status:        req.Status,
		ImobiliariaID: req.ImobiliariaID,
		Files:         uploads,
	}
	if !session.IsAdmin() {
		cmd.Status = StatusPendente
		cmd.ImobiliariaID = session.ImobiliariaID
	}

	rec, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, rec)
}

func (h *Handler[T]) Update(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	current, ok := h.owned(w, r)
	if !ok {
		return
	}
	if !session.IsAdmin() && (h.sys.Definition().Access != AccessSubmit || current.Status != StatusPendente) {
		handlers.RespondError(w, h.logger, http.StatusForbidden, ErrForbidden)
		return
	}

	data, err := handlers.DecodeJSON[T](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	rec, err := h.sys.Update(r.Context(), current.ID, data)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

func (h *Handler[T]) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req, err := handlers.DecodeJSON[statusRequest](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	status, err := ParseStatus(string(req.Status))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	rec, err := h.sys.UpdateStatus(r.Context(), id, status)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

func (h *Handler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler[T]) AttachFiles(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	current, ok := h.owned(w, r)
	if !ok {
		return
	}
	if !session.IsAdmin() && h.sys.Definition().Access != AccessSubmit {
		handlers.RespondError(w, h.logger, http.StatusForbidden, ErrForbidden)
		return
	}

	if err := h.parseMultipart(w, r); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	uploads, err := h.readUploads(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	rec, err := h.sys.AttachFiles(r.Context(), current.ID, uploads)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

func (h *Handler[T]) OpenFile(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.session(w, r); !ok {
		return
	}

	current, ok := h.owned(w, r)
	if !ok {
		return
	}

	file, data, err := h.sys.OpenFile(r.Context(), current.ID, r.PathValue("filename"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	contentType, disposition := "application/octet-stream", "attachment"
	if h.uploads.Inline(file.ContentType) {
		contentType = file.ContentType
		if r.URL.Query().Get("inline") == "true" {
			disposition = "inline"
		}
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": file.Name}))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler[T]) RemoveFile(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	rec, err := h.sys.RemoveFile(r.Context(), id, r.PathValue("filename"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

func (h *Handler[T]) Stats(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	filters, err := FiltersFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	stats, err := h.sys.Stats(r.Context(), scopeFilters(session, filters))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, stats)
}

// session returns the caller's session, answering 401 or 403 itself when
// the request cannot proceed.
func (h *Handler[T]) session(w http.ResponseWriter, r *http.Request) (auth.Session, bool) {
	session, ok := auth.FromContext(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, ErrUnauthorized)
		return session, false
	}
	if !session.IsAdmin() && h.sys.Definition().Access == AccessAdmin {
		handlers.RespondError(w, h.logger, http.StatusForbidden, ErrForbidden)
		return session, false
	}
	return session, true
}

func (h *Handler[T]) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	session, ok := h.session(w, r)
	if !ok {
		return false
	}
	if !session.IsAdmin() {
		handlers.RespondError(w, h.logger, http.StatusForbidden, ErrForbidden)
		return false
	}
	return true
}

// owned loads the {id} record and hides it from sessions of other agencies.
func (h *Handler[T]) owned(w http.ResponseWriter, r *http.Request) (*Record[T], bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return nil, false
	}

	rec, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return nil, false
	}

	session, _ := auth.FromContext(r.Context())
	if !session.Owns(rec.ImobiliariaID) {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrNotFound)
		return nil, false
	}
	return rec, true
}

func (h *Handler[T]) readMultipartCreate(w http.ResponseWriter, r *http.Request) (createRequest[T], []Upload, error) {
	var req createRequest[T]

	if err := h.parseMultipart(w, r); err != nil {
		return req, nil, err
	}

	dec := json.NewDecoder(strings.NewReader(r.FormValue(formPayload)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, nil, fmt.Errorf("%w: %s: %v", ErrValidation, formPayload, err)
	}

	var uploads []Upload
	if r.MultipartForm != nil && len(r.MultipartForm.File[formFiles]) > 0 {
		var err error
		if uploads, err = h.readUploads(r); err != nil {
			return req, nil, err
		}
	}

	return req, uploads, nil
}

func (h *Handler[T]) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	if r.ContentLength > h.uploads.MaxUploadSize {
		return ErrFileTooLarge
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.uploads.MaxUploadSize)
	if err := r.ParseMultipartForm(h.uploads.MaxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return ErrFileTooLarge
		}
		return fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	return nil
}

func (h *Handler[T]) readUploads(r *http.Request) ([]Upload, error) {
	if r.MultipartForm == nil {
		return nil, fmt.Errorf("%w: no files", ErrInvalidFile)
	}

	headers := r.MultipartForm.File[formFiles]
	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: no files in %q", ErrInvalidFile, formFiles)
	}
	if len(headers) > h.uploads.MaxFiles {
		return nil, fmt.Errorf("%w: at most %d files per request", ErrInvalidFile, h.uploads.MaxFiles)
	}

	uploads := make([]Upload, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > h.uploads.MaxUploadSize {
			return nil, ErrFileTooLarge
		}

		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
		}

		uploads = append(uploads, Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return uploads, nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// scopeFilters pins agency sessions to their own agency.
func scopeFilters(session auth.Session, f Filters) Filters {
	if !session.IsAdmin() {
		f.ImobiliariaID = session.ImobiliariaID
	}
	return f
}
