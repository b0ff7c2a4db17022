package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func TestFilteredWriter(t *testing.T) {
	var out bytes.Buffer
	w := &filteredWriter{dest: &out, slowThreshold: 500 * time.Millisecond, errorStatusFloor: 400}

	lines := []string{
		"12:00:00 | 200 |      1.2ms | GET /api/player/profile\n",
		"12:00:01 | 404 |      800µs | GET /api/missing\n",
		"12:00:02 | 200 | 1.5s | POST /api/travel\n",
		"garbage\n",
	}
	for _, l := range lines {
		if n, err := w.Write([]byte(l)); err != nil || n != len(l) {
			t.Fatalf("Write(%q) = %d, %v", l, n, err)
		}
	}
	want := lines[1] + lines[2] + lines[3]
	if out.String() != want {
		t.Errorf("kept %q, want %q", out.String(), want)
	}
}

type fakeVerifier map[string]string

func (f fakeVerifier) Verify(token string) (string, string, error) {
	id, ok := f[token]
	if !ok {
		return "", "", errors.New("bad token")
	}
	return id, "Name " + id, nil
}

func TestAuth(t *testing.T) {
	app := fiber.New()
	app.Get("/me", Auth(fakeVerifier{"good": "p1"}), func(c *fiber.Ctx) error {
		return c.SendString(PlayerID(c) + "/" + PlayerName(c))
	})

	cases := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"bearer", "Bearer good", "", http.StatusOK},
		{"query token", "", "good", http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"not bearer", "Basic good", "", http.StatusUnauthorized},
		{"unknown", "Bearer nope", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target := "/me"
			if tc.query != "" {
				target += "?token=" + tc.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tc.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.status)
			}
			if tc.status == http.StatusOK {
				var body bytes.Buffer
				_, _ = body.ReadFrom(resp.Body)
				if body.String() != "p1/Name p1" {
					t.Errorf("body = %q", body.String())
				}
			}
		})
	}
}

func TestAdminKey(t *testing.T) {
	app := fiber.New()
	app.Get("/admin", AdminKey("secret"), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) })

	for key, want := range map[string]int{"": http.StatusForbidden, "wrong": http.StatusForbidden, "secret": http.StatusNoContent} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if key != "" {
			req.Header.Set("X-Admin-Key", key)
		}
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != want {
			t.Errorf("key %q: status %d, want %d", key, resp.StatusCode, want)
		}
	}
}
