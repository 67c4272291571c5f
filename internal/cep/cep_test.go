package cep_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/corretora/internal/cep"
	"github.com/JaimeStill/corretora/pkg/logging"
)

const se = `{"cep":"01001-000","logradouro":"Praça da Sé","complemento":"lado ímpar","bairro":"Sé","localidade":"São Paulo","uf":"SP","ibge":"3550308","ddd":"11"}`

func newClient(t *testing.T, h http.HandlerFunc) (cep.System, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := &cep.Config{BaseURL: srv.URL + "/ws/"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}
	return cep.New(cfg, srv.Client(), logging.Discard()), &hits
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"01001000", "01001000", false},
		{"01001-000", "01001000", false},
		{"01.001-000", "01001000", false},
		{" 01001 000 ", "01001000", false},
		{"0100100", "", true},
		{"010010000", "", true},
		{"0100100a", "", true},
		{"01001/000", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := cep.Normalize(tt.in)
			if tt.wantErr {
				if !errors.Is(err, cep.ErrInvalidCEP) {
					t.Errorf("Normalize(%q) err = %v, want ErrInvalidCEP", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("Normalize(%q) = %q, %v, want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestLookup_Found(t *testing.T) {
	var path string
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(se))
	})

	addr, err := client.Lookup(context.Background(), "01001-000")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if path != "/ws/01001000/json/" {
		t.Errorf("path = %q", path)
	}
	if addr.Localidade != "São Paulo" || addr.UF != "SP" || addr.Logradouro != "Praça da Sé" {
		t.Errorf("address = %+v", addr)
	}
}

func TestLookup_MalformedNeverCallsService(t *testing.T) {
	client, hits := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(se))
	})

	for _, code := range []string{"123", "abcdefgh", "01001-0000"} {
		if _, err := client.Lookup(context.Background(), code); !errors.Is(err, cep.ErrInvalidCEP) {
			t.Errorf("Lookup(%q) err = %v, want ErrInvalidCEP", code, err)
		}
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("service called %d times for malformed codes", n)
	}
}

func TestLookup_NotFound(t *testing.T) {
	for _, body := range []string{`{"erro": true}`, `{"erro": "true"}`} {
		t.Run(body, func(t *testing.T) {
			client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			})

			if _, err := client.Lookup(context.Background(), "99999999"); !errors.Is(err, cep.ErrNotFound) {
				t.Errorf("err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestLookup_UpstreamFailures(t *testing.T) {
	tests := []struct {
		name string
		h    http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"bad request", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}},
		{"garbage body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newClient(t, tt.h)
			if _, err := client.Lookup(context.Background(), "01001000"); !errors.Is(err, cep.ErrUpstream) {
				t.Errorf("err = %v, want ErrUpstream", err)
			}
		})
	}
}

func TestLookup_CoalescesConcurrentRequests(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	client, hits := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(started) })
		<-release
		w.Write([]byte(se))
	})

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := client.Lookup(context.Background(), "01001000")
		errs <- err
	}()
	<-started

	for range callers - 1 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Lookup(context.Background(), "01001-000")
			errs <- err
		}()
	}

	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Lookup() error: %v", err)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("service called %d times, want 1", n)
	}
}

func TestLookup_CallerCancellation(t *testing.T) {
	release := make(chan struct{})
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(se))
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := client.Lookup(ctx, "01001000"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want DeadlineExceeded", err)
	}
}

func TestHandler(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "99999999") {
			w.Write([]byte(`{"erro": true}`))
			return
		}
		w.Write([]byte(se))
	})

	h := cep.NewHandler(client, logging.Discard())
	group := h.Routes()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api"+group.Prefix+group.Routes[0].Pattern, group.Routes[0].Handler)

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/api/cep/01001-000", http.StatusOK},
		{"/api/cep/123", http.StatusBadRequest},
		{"/api/cep/99999999", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus == http.StatusOK {
				var addr cep.Address
				if err := json.Unmarshal(w.Body.Bytes(), &addr); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if addr.CEP != "01001-000" {
					t.Errorf("cep = %q", addr.CEP)
				}
			}
		})
	}
}

func TestConfig(t *testing.T) {
	t.Setenv("TEST_CEP_TIMEOUT", "2s")

	cfg := &cep.Config{}
	if err := cfg.Finalize(&cep.Env{Timeout: "TEST_CEP_TIMEOUT"}); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}
	if cfg.BaseURL != "https://viacep.com.br/ws" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.TimeoutDuration() != 2*time.Second {
		t.Errorf("Timeout = %v", cfg.TimeoutDuration())
	}

	bad := &cep.Config{BaseURL: "not a url"}
	if err := bad.Finalize(nil); err == nil {
		t.Error("Finalize() accepted invalid base_url")
	}
}
