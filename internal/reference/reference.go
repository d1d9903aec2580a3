// Package reference holds the set of known-legitimate domains that suspect
// domains are compared against.
package reference

import (
	"bufio"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/ankitjha412/clone/internal/domain"
)

// Set is an immutable collection of canonical legitimate domains. It is
// built once at startup and read concurrently for the process lifetime;
// nothing mutates it after New returns.
//
// Members are also kept as a lexically sorted slice. All iteration over the
// set (matching, listing) walks that slice, which makes tie-break behavior
// deterministic across runs.
type Set struct {
	members map[string]struct{}
	sorted  []string
}

// New builds a Set from pre-normalized domains (lowercase, no www. prefix).
// Duplicates are collapsed.
func New(domains []string) *Set {
	members := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		members[d] = struct{}{}
	}
	sorted := make([]string, 0, len(members))
	for d := range members {
		sorted = append(sorted, d)
	}
	sort.Strings(sorted)
	return &Set{members: members, sorted: sorted}
}

// Load reads a delimited domain list: entries separated by newlines or
// commas, blank entries and #-comment lines ignored. Each entry is
// normalized before insertion so a sloppy source file (mixed case, www.
// prefixes, full URLs) still produces a canonical set. Malformed entries
// are logged and skipped rather than failing the whole load.
func Load(r io.Reader, logger *slog.Logger) (*Set, error) {
	var domains []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, entry := range strings.Split(line, ",") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			d, err := domain.Normalize(entry)
			if err != nil {
				logger.Warn("skipping malformed reference entry",
					"entry", entry, "error", err)
				continue
			}
			domains = append(domains, d)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return New(domains), nil
}

// Contains reports whether d is an exact member of the set.
func (s *Set) Contains(d string) bool {
	_, ok := s.members[d]
	return ok
}

// Domains returns the members in lexical order. The returned slice is
// shared; callers must not modify it.
func (s *Set) Domains() []string {
	return s.sorted
}

// Len returns the number of members.
func (s *Set) Len() int {
	return len(s.sorted)
}
