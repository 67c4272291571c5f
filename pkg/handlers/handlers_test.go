package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/corretora/pkg/handlers"
	"github.com/JaimeStill/corretora/pkg/logging"
)

func TestRespondJSON(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		data     any
		wantBody string
	}{
		{"ok with map", http.StatusOK, map[string]string{"message": "ola"}, `{"message":"ola"}`},
		{"created with struct", http.StatusCreated, struct {
			IDNumero int `json:"id_numero"`
		}{7}, `{"id_numero":7}`},
		{"ok with slice", http.StatusOK, []int{1, 2, 3}, `[1,2,3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			handlers.RespondJSON(w, tt.status, tt.data)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			if got := strings.TrimSpace(w.Body.String()); got != tt.wantBody {
				t.Errorf("body = %s, want %s", got, tt.wantBody)
			}
		})
	}
}

func TestRespondError(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusInternalServerError} {
		w := httptest.NewRecorder()

		handlers.RespondError(w, logging.Discard(), status, errors.New("cpf required"))

		if w.Code != status {
			t.Errorf("status = %d, want %d", w.Code, status)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["error"] != "cpf required" {
			t.Errorf("error = %q", body["error"])
		}
	}
}

type loginBody struct {
	Email string `json:"email"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"email":"a@b.c"}`, false},
		{"unknown field", `{"email":"a@b.c","admin":true}`, true},
		{"malformed", `{"email":`, true},
		{"empty", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			got, err := handlers.DecodeJSON[loginBody](r)
			if tt.wantErr {
				if !errors.Is(err, handlers.ErrInvalidBody) {
					t.Errorf("error = %v, want ErrInvalidBody", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeJSON: %v", err)
			}
			if got.Email != "a@b.c" {
				t.Errorf("Email = %q", got.Email)
			}
		})
	}
}

func TestDecodeJSON_BodyLimit(t *testing.T) {
	body := `{"email":"` + strings.Repeat("x", 2<<20) + `"}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	if _, err := handlers.DecodeJSON[loginBody](r); err == nil {
		t.Error("expected error for oversized body")
	}
}
