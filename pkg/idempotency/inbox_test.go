package idempotency

import (
	"strings"
	"testing"
)

func TestKeyFor(t *testing.T) {
	key := KeyFor("rx-001", "2026-02-08", "2026-02-14")

	// 32 bytes of sha256, hex encoded.
	if len(key) != 64 {
		t.Fatalf("key length = %d, want 64", len(key))
	}
	if key != strings.ToLower(key) {
		t.Errorf("key is not lowercase hex: %q", key)
	}

	if again := KeyFor("rx-001", "2026-02-08", "2026-02-14"); again != key {
		t.Error("same inputs produced different keys")
	}
	if other := KeyFor("rx-002", "2026-02-08", "2026-02-14"); other == key {
		t.Error("different prescriptions produced the same key")
	}
	if other := KeyFor("rx-001", "2026-02-09", "2026-02-14"); other == key {
		t.Error("different periods produced the same key")
	}
}

func TestKeyForFieldBoundaries(t *testing.T) {
	// The separator keeps adjacent fields from colliding.
	a := KeyFor("rx-1", "2026-02-08", "")
	b := KeyFor("rx-1", "", "2026-02-08")
	if a == b {
		t.Error("shifted fields produced the same key")
	}
}
