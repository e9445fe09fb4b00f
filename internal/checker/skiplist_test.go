package checker

import "testing"

func TestSkipList(t *testing.T) {
	t.Run("exact match", func(t *testing.T) {
		list := newSkipList([]string{"Intranet.Local"})
		if list == nil {
			t.Fatalf("expected skip list to be created")
		}
		if !list.Matches("http://intranet.local/wiki") {
			t.Fatalf("expected intranet.local to match")
		}
		if list.Matches("http://sub.intranet.local/") {
			t.Fatalf("did not expect subdomains to match exact entry")
		}
	})

	t.Run("wildcard suffix", func(t *testing.T) {
		list := newSkipList([]string{"*.corp", ".internal", "*.corp"})
		if list == nil {
			t.Fatalf("expected skip list to be created")
		}
		if len(list.suffixes) != 2 {
			t.Fatalf("expected duplicate suffixes to collapse, got %v", list.suffixes)
		}
		cases := []struct {
			url     string
			matched bool
		}{
			{"https://git.corp/x", true},
			{"https://a.b.internal:8443/", true},
			{"https://corp/", true},
			{"https://example.com/", false},
			{"not a url", false},
		}
		for _, tc := range cases {
			if got := list.Matches(tc.url); got != tc.matched {
				t.Fatalf("url %q matched=%v, want %v", tc.url, got, tc.matched)
			}
		}
	})

	t.Run("empty patterns", func(t *testing.T) {
		if list := newSkipList([]string{" ", ""}); list != nil {
			t.Fatalf("expected nil skip list for blank patterns")
		}
		var list *skipList
		if list.Matches("https://anything/") {
			t.Fatalf("nil skip list should never match")
		}
	})
}
