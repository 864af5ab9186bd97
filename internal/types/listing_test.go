package types

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"owner/repo", "owner-repo"},
		{"Owner / Repo", "owner-repo"},
		{"  spaced  out  ", "spaced-out"},
		{"already-slugged", "already-slugged"},
		{"C++ Toolkit!", "c-toolkit"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestListingIDStable(t *testing.T) {
	a := ListingID(SourceRepositoryTrend, "golang/go")
	b := ListingID(SourceRepositoryTrend, "Golang / Go")
	if a != b {
		t.Errorf("IDs differ for equivalent keys: %q vs %q", a, b)
	}

	c := ListingID(SourceLaunchListing, "golang/go")
	if a == c {
		t.Error("IDs collide across source kinds")
	}
}

func TestNewListingIdentity(t *testing.T) {
	l := NewListing(SourceRepositoryTrend, PeriodDaily, "torvalds/linux", "torvalds/linux")

	if l.ID != "repository-trend:torvalds-linux" {
		t.Errorf("unexpected ID: %q", l.ID)
	}
	if l.ScrapedAt.IsZero() {
		t.Error("ScrapedAt not set")
	}
}

func TestCloneIsDeep(t *testing.T) {
	l := NewListing(SourceRepositoryTrend, PeriodDaily, "a/b", "a/b")
	l.Tags = []string{"cli"}
	l.Domains = []Domain{DomainDevTools}

	clone := l.Clone()
	clone.Tags[0] = "changed"
	clone.Domains[0] = DomainOther

	if l.Tags[0] != "cli" {
		t.Error("clone shares Tags backing array")
	}
	if l.Domains[0] != DomainDevTools {
		t.Error("clone shares Domains backing array")
	}
}

func TestLinksAny(t *testing.T) {
	var links Links
	if links.Any() {
		t.Error("empty Links reported as populated")
	}
	links.SourcePage = "https://example.com/posts/x"
	if !links.Any() {
		t.Error("populated Links reported as empty")
	}
}
