package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if v, err := s.Get(ctx, "auth_token"); err != nil || v != "" {
		t.Fatalf("empty get = %q, %v", v, err)
	}
	if err := s.Set(ctx, "auth_token", "first"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "auth_token", "second"); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.Get(ctx, "auth_token"); v != "second" {
		t.Fatalf("get = %q, want second", v)
	}
	if err := s.Delete(ctx, "auth_token"); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.Get(ctx, "auth_token"); v != "" {
		t.Fatalf("after delete = %q", v)
	}
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryTokenStore())
}

func TestSQLiteStore(t *testing.T) {
	dsn := "sqlite://" + filepath.Join(t.TempDir(), "client.db")
	s, err := Open(context.Background(), dsn, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*SQLiteTokenStore); !ok {
		t.Fatalf("Open returned %T", s)
	}
	exerciseStore(t, s)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dsn := "sqlite://" + filepath.Join(t.TempDir(), "client.db")

	s, err := Open(ctx, dsn, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "auth_token", "persisted"); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(ctx, dsn, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if v, _ := s.Get(ctx, "auth_token"); v != "persisted" {
		t.Fatalf("after reopen = %q", v)
	}
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	if _, err := Open(context.Background(), "etcd://x", zerolog.Nop()); err == nil {
		t.Fatal("expected error")
	}
}
