package types

import "testing"

func TestParseCount(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"1,234", 1234},
		{"1,234 stars today", 1234},
		{"12.5k", 12500},
		{"3m", 3000000},
		{"42", 42},
		{"0", 0},
		{"", 0},
		{"no number", 0},
		{"  987  ", 987},
		{"1.2K", 1200},
	}

	for _, tc := range cases {
		if got := ParseCount(tc.in); got != tc.want {
			t.Errorf("ParseCount(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestRecordGetters(t *testing.T) {
	r := NewRecord("https://example.com/trending")
	r.Set("name", "  owner/repo  ")
	r.Set("stars", "12.5k")
	r.Set("votes", 321)
	r.Set("tags", []string{"ai", "cli"})
	r.Set("single", "productivity")

	if got := r.GetString("name"); got != "owner/repo" {
		t.Errorf("GetString = %q, want trimmed value", got)
	}
	if got := r.GetInt("stars"); got != 12500 {
		t.Errorf("GetInt(stars) = %d, want 12500", got)
	}
	if got := r.GetInt("votes"); got != 321 {
		t.Errorf("GetInt(votes) = %d, want 321", got)
	}
	if got := r.GetStrings("tags"); len(got) != 2 {
		t.Errorf("GetStrings(tags) = %v, want 2 entries", got)
	}
	if got := r.GetStrings("single"); len(got) != 1 || got[0] != "productivity" {
		t.Errorf("GetStrings(single) = %v, want one-element slice", got)
	}
	if r.GetString("missing") != "" {
		t.Error("missing field should yield empty string")
	}
	if !r.Has("name") || r.Has("absent") {
		t.Error("Has misreports field presence")
	}
}
