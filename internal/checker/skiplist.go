package checker

import (
	"net/url"
	"slices"
	"strings"
)

// skipList stores exact hosts and suffix wildcards whose links are never
// probed (intranet hosts, sites that always block automated clients).
type skipList struct {
	exact    map[string]struct{}
	suffixes []string
}

// newSkipList accepts "host", "*.suffix" and ".suffix" patterns. It returns
// nil when no usable pattern is given.
func newSkipList(patterns []string) *skipList {
	list := &skipList{exact: make(map[string]struct{})}
	for _, raw := range patterns {
		value := strings.TrimSpace(strings.ToLower(raw))
		switch {
		case value == "":
			continue
		case strings.HasPrefix(value, "*."):
			list.addSuffix(value[2:])
		case strings.HasPrefix(value, "."):
			list.addSuffix(value[1:])
		default:
			list.exact[value] = struct{}{}
		}
	}
	if len(list.exact) == 0 && len(list.suffixes) == 0 {
		return nil
	}
	return list
}

func (s *skipList) addSuffix(suffix string) {
	if suffix == "" || slices.Contains(s.suffixes, suffix) {
		return
	}
	s.suffixes = append(s.suffixes, suffix)
}

// Matches reports whether the host of rawURL is on the list.
func (s *skipList) Matches(rawURL string) bool {
	if s == nil {
		return false
	}
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	if _, ok := s.exact[host]; ok {
		return true
	}
	for _, suffix := range s.suffixes {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	return false
}
