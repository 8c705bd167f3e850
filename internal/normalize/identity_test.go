// ABOUTME: Tests for natural-key selection and stable item IDs.
// ABOUTME: Verifies determinism and per-source scoping of identity.

package normalize_test

import (
	"testing"

	"github.com/quinn/skimmer/internal/feed"
	"github.com/quinn/skimmer/internal/normalize"
)

func TestNaturalKey_Precedence(t *testing.T) {
	tests := []struct {
		name string
		raw  feed.RawItem
		want string
	}{
		{
			name: "guid wins over everything",
			raw:  feed.RawItem{GUID: "g", Link: "l", Title: "t", PubDateText: "d"},
			want: "g",
		},
		{
			name: "link when guid blank",
			raw:  feed.RawItem{GUID: "  ", Link: "l", Title: "t"},
			want: "l",
		},
		{
			name: "title when guid and link blank",
			raw:  feed.RawItem{Title: "t", PubDateText: "d"},
			want: "t",
		},
		{
			name: "pub date as last resort",
			raw:  feed.RawItem{PubDateText: "Mon, 02 Jan 2006 15:04:05 -0700"},
			want: "Mon, 02 Jan 2006 15:04:05 -0700",
		},
		{
			name: "all blank yields empty",
			raw:  feed.RawItem{GUID: " ", Link: "", Title: "\t"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalize.NaturalKey(tt.raw); got != tt.want {
				t.Errorf("NaturalKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestItemID_Deterministic(t *testing.T) {
	a := normalize.ItemID("source-1", "key-1")
	b := normalize.ItemID("source-1", "key-1")
	if a != b {
		t.Errorf("same inputs produced different ids: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("expected 64-char hex id, got %d chars", len(a))
	}
}

func TestItemID_ScopedToSource(t *testing.T) {
	a := normalize.ItemID("source-1", "key-1")
	b := normalize.ItemID("source-2", "key-1")
	if a == b {
		t.Error("same key under different sources must produce different ids")
	}
}

func TestItemID_DistinctKeys(t *testing.T) {
	// The separator prevents accidental collisions between
	// ("ab", "c") and ("a", "bc").
	a := normalize.ItemID("ab", "c")
	b := normalize.ItemID("a", "bc")
	if a == b {
		t.Error("expected distinct ids for shifted source/key boundary")
	}
}
