package archive

import (
	"testing"
	"time"

	"finledger/internal/core"
)

func TestKeyFormat(t *testing.T) {
	k, err := NewKeyer("UTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	at := time.Date(2026, time.March, 5, 14, 7, 9, 0, time.UTC)
	if got := k.Key(at); got != "05-Mar-2026 14:07:09" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestKeyUsesConfiguredZone(t *testing.T) {
	k, err := NewKeyer("Asia/Kolkata")
	if err != nil {
		t.Skipf("zone database unavailable: %v", err)
	}
	at := time.Date(2026, time.January, 31, 20, 0, 0, 0, time.UTC)
	if got := k.Key(at); got != "01-Feb-2026 01:30:00" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestParseKeyAcceptsBothLayouts(t *testing.T) {
	k, _ := NewKeyer("UTC")
	want := time.Date(2026, time.March, 5, 14, 7, 9, 0, time.UTC)
	for _, in := range []string{"05-Mar-2026 14:07:09", "05 Mar 2026 14:07:09", "05-Mar-2026 14:07:09#2"} {
		got, err := k.ParseKey(in)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", in, err)
		}
		if !got.Equal(want) {
			t.Fatalf("%q: expected %v, got %v", in, want, got)
		}
	}
	if _, err := k.ParseKey("5/3/2026, 14:07:09"); err != ErrInvalidKey {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestWithSuffix(t *testing.T) {
	if got := WithSuffix("k", 0); got != "k" {
		t.Fatalf("unexpected %q", got)
	}
	if got := WithSuffix("k", 1); got != "k#2" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestNewEntry(t *testing.T) {
	m := core.MonthRecord{ID: "m1", MonthYear: "March 2026"}
	at := time.Date(2026, time.March, 5, 14, 7, 9, 0, time.FixedZone("x", 3600))
	e := NewEntry("key", m, at, core.Delta{core.Income: {}})
	if e.MonthID != "m1" || e.MonthYear != "March 2026" || e.Key != "key" {
		t.Fatalf("unexpected entry %+v", e)
	}
	if e.RecordedAt.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp")
	}
}
