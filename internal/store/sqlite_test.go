package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	if _, err := st.Get(ctx, KeyBlockingRecord); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}

	if err := st.Set(ctx, KeyBlockingRecord, "v1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := st.Get(ctx, KeyBlockingRecord)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "v1" {
		t.Errorf("expected v1, got %q", got)
	}

	// Last writer wins on the single key.
	if err := st.Set(ctx, KeyBlockingRecord, "v2"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, _ = st.Get(ctx, KeyBlockingRecord)
	if got != "v2" {
		t.Errorf("expected v2, got %q", got)
	}

	if err := st.Delete(ctx, KeyBlockingRecord); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := st.Get(ctx, KeyBlockingRecord); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting an absent key is a no-op.
	if err := st.Delete(ctx, KeyBlockingRecord); err != nil {
		t.Errorf("delete absent key: %v", err)
	}
}

func TestSQLiteStoreCrossProcessView(t *testing.T) {
	// The companion opens the same file independently and must see
	// the host's last write.
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	host, err := Open(path)
	if err != nil {
		t.Fatalf("open host: %v", err)
	}
	if err := host.Set(ctx, KeyBlockingRecord, "from-host"); err != nil {
		t.Fatalf("set: %v", err)
	}

	comp, err := Open(path)
	if err != nil {
		t.Fatalf("open companion: %v", err)
	}
	defer comp.Close()

	got, err := comp.Get(ctx, KeyBlockingRecord)
	if err != nil {
		t.Fatalf("companion get: %v", err)
	}
	if got != "from-host" {
		t.Errorf("expected from-host, got %q", got)
	}
	host.Close()
}

func TestSQLiteStoreOpenIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	st.Close()

	st, err = Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	st.Close()
}
