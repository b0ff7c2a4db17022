package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/CRTOsp3ck/mwce/internal/model"
)

type staticToken string

func (s staticToken) Token(context.Context) (string, error) { return string(s), nil }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestGetUnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/player/profile" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization = %q", got)
		}
		writeJSON(w, 200, map[string]any{
			"success":     true,
			"data":        map[string]any{"id": "p1", "money": 1000},
			"gameMessage": map[string]any{"type": "info", "message": "welcome back"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL+"/api", staticToken("tok"))
	res, err := Get[model.PlayerProfile](context.Background(), c, "/player/profile", nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if res.Data.ID != "p1" || res.Data.Money != 1000 {
		t.Fatalf("data = %+v", res.Data)
	}
	if res.Message() != "welcome back" {
		t.Fatalf("game message = %q", res.Message())
	}
}

func TestBusinessFailureBecomesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 409, map[string]any{
			"success": false,
			"error":   map[string]any{"code": "conflict", "message": "not enough stock"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := Post[model.MarketTransaction](context.Background(), c, "/market/buy", model.TradeRequest{ResourceType: "crew", Quantity: 1})
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Status != 409 || apiErr.Code != model.CodeConflict || apiErr.Message != "not enough stock" {
		t.Fatalf("error = %+v", apiErr)
	}
	if Message(err) != "not enough stock" {
		t.Fatalf("Message = %q", Message(err))
	}
}

func TestSuccessFalseWithOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{
			"success": false,
			"error":   map[string]any{"code": "bad_request", "message": "nope"},
		})
	}))
	defer srv.Close()

	_, err := Get[struct{}](context.Background(), New(srv.URL, nil), "/x", nil)
	if err == nil || Message(err) != "nope" {
		t.Fatalf("err = %v", err)
	}
}

func TestUnauthorizedRunsHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 401, map[string]any{"error": "invalid or expired token"})
	}))
	defer srv.Close()

	var hooked error
	c := New(srv.URL, staticToken("stale"), WithUnauthorized(func(err error) { hooked = err }))
	_, err := Get[model.PlayerProfile](context.Background(), c, "/player/profile", nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if hooked == nil {
		t.Fatal("unauthorized hook not called")
	}
	if Message(err) != "invalid or expired token" {
		t.Fatalf("message = %q", Message(err))
	}
}

func TestTimeoutSurfacesAsError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := New(srv.URL, nil, WithTimeout(50*time.Millisecond))
	if _, err := Get[struct{}](context.Background(), c, "/slow", nil); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestNoTokenSendsNoAuthorization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("unexpected authorization header")
		}
		writeJSON(w, 200, map[string]any{"success": true})
	}))
	defer srv.Close()

	if _, err := Get[struct{}](context.Background(), New(srv.URL, staticToken("")), "/x", nil); err != nil {
		t.Fatal(err)
	}
}
