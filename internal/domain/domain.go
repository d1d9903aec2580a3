// Package domain defines the canonical Domain type and the normalization
// that produces it from raw user-supplied URLs.
package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

var (
	// ErrEmptyInput is returned when the input is empty or whitespace only.
	ErrEmptyInput = errors.New("empty url")
	// ErrInvalidURL is returned when no hostname can be extracted from the
	// input, even after scheme repair.
	ErrInvalidURL = errors.New("invalid url")
)

// Domain is a canonical registrable hostname: lowercase, no scheme, no
// path, no port, no leading "www.". Produced only by Normalize and
// NormalizeHost.
type Domain = string

// Normalize converts a raw URL as a user would type it into a canonical
// Domain. Inputs without an http:// or https:// prefix are repaired by
// prepending https:// before parsing, so bare domains still resolve.
// Normalize is pure and idempotent on already-canonical domains.
func Normalize(raw string) (Domain, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyInput
	}

	if lower := strings.ToLower(raw); !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	return NormalizeHost(u.Hostname())
}

// NormalizeHost canonicalizes a bare hostname (no scheme, no path). It is
// used directly by the reference-set loader, whose entries are hostnames
// rather than URLs.
func NormalizeHost(host string) (Domain, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", fmt.Errorf("%w: no hostname", ErrInvalidURL)
	}

	// Non-ASCII hosts go through IDNA to their ASCII form so that all
	// downstream comparisons operate on one alphabet.
	if !isASCII(host) {
		ascii, err := idna.Lookup.ToASCII(host)
		if err != nil {
			return "", fmt.Errorf("%w: idna: %v", ErrInvalidURL, err)
		}
		host = ascii
	}

	host = strings.ToLower(host)

	// Strip exactly one leading "www." label. A host like www.www.x.com
	// keeps its second www, matching how such domains are registered.
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return "", fmt.Errorf("%w: no hostname", ErrInvalidURL)
	}

	return host, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
