package realtime

import (
	"bufio"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// readEvent returns the next data payload, skipping comments.
func readEvent(t *testing.T, lines *bufio.Scanner) (string, Event) {
	t.Helper()
	var name string
	for lines.Scan() {
		line := lines.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			var e Event
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &e); err != nil {
				t.Fatalf("decode event: %v", err)
			}
			return name, e
		}
	}
	t.Fatalf("stream ended: %v", lines.Err())
	return "", Event{}
}

func TestStream_WritesKeptEvents(t *testing.T) {
	hub := NewHub(4, discard())
	defer hub.Close()

	sub := hub.Subscribe("notificacoes")
	defer sub.Close()

	hidden := uuid.New()
	keep := func(e Event) bool { return e.RecordID != hidden }

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := Stream(w, r, sub, keep, discard()); err != nil {
			t.Errorf("Stream() error: %v", err)
		}
	}))
	defer srv.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	shown := uuid.New()
	hub.Publish(Event{Action: ActionUpdate, Collection: "notificacoes", RecordID: hidden})
	hub.Publish(Event{Action: ActionDelete, Collection: "notificacoes", RecordID: shown})

	name, e := readEvent(t, bufio.NewScanner(resp.Body))
	if name != "delete" || e.RecordID != shown {
		t.Errorf("event %s %s, want delete %s", name, e.RecordID, shown)
	}
}

func TestStream_EndsWhenSubscriptionCloses(t *testing.T) {
	hub := NewHub(4, discard())
	sub := hub.Subscribe("envio_boletos")

	done := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		done <- Stream(w, r, sub, nil, discard())
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	defer resp.Body.Close()

	hub.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Stream() error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not end after hub close")
	}
}

type plainWriter struct {
	header http.Header
}

func (w *plainWriter) Header() http.Header         { return w.header }
func (w *plainWriter) Write(b []byte) (int, error) { return len(b), nil }
func (w *plainWriter) WriteHeader(int)             {}

func TestStream_RequiresFlusher(t *testing.T) {
	hub := NewHub(1, discard())
	defer hub.Close()
	sub := hub.Subscribe("x")

	w := &plainWriter{header: http.Header{}}
	err := Stream(w, httptest.NewRequest(http.MethodGet, "/", nil), sub, nil, discard())
	if !errors.Is(err, ErrStreamingUnsupported) {
		t.Errorf("err = %v, want ErrStreamingUnsupported", err)
	}
	if w.header.Get("Content-Type") != "" {
		t.Error("headers written before failing")
	}
}
