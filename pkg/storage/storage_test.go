package storage

import (
	"context"
	"errors"
	"testing"
)

// storeUnderTest exercises the Store contract against any backend.
func storeUnderTest(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.GetString(ctx, NamespaceAccountProfile, KeyRetailer); !errors.Is(err, ErrNotFound) {
		t.Errorf("absent string: err = %v, want ErrNotFound", err)
	}
	if _, err := s.GetBool(ctx, NamespaceAccountProfile, KeyCoam); !errors.Is(err, ErrNotFound) {
		t.Errorf("absent bool: err = %v, want ErrNotFound", err)
	}

	if err := s.SetString(ctx, NamespaceAccountProfile, KeyRetailer, "acme"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetBool(ctx, NamespaceAccountProfile, KeyCoam, true); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetString(ctx, NamespaceAccountProfile, KeyRetailer)
	if err != nil || got != "acme" {
		t.Errorf("GetString = %q, %v", got, err)
	}
	b, err := s.GetBool(ctx, NamespaceAccountProfile, KeyCoam)
	if err != nil || !b {
		t.Errorf("GetBool = %v, %v", b, err)
	}

	// Overwrite in place.
	if err := s.SetString(ctx, NamespaceAccountProfile, KeyRetailer, "other"); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetString(ctx, NamespaceAccountProfile, KeyRetailer)
	if got != "other" {
		t.Errorf("overwrite lost: %q", got)
	}

	// Namespaces do not bleed.
	if _, err := s.GetString(ctx, "otherNamespace", KeyRetailer); !errors.Is(err, ErrNotFound) {
		t.Errorf("namespace bleed: err = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	storeUnderTest(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	storeUnderTest(t, s)
}

func TestSQLiteStoreReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := OpenSQLite(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetString(ctx, NamespaceAccountProfile, KeyProposition, "acme-tv"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s2, err := OpenSQLite(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	got, err := s2.GetString(ctx, NamespaceAccountProfile, KeyProposition)
	if err != nil || got != "acme-tv" {
		t.Errorf("reopened value = %q, %v", got, err)
	}
}
