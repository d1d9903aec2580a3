package lookup

import (
	"context"
	"fmt"

	"github.com/likexian/whois"
	"golang.org/x/net/publicsuffix"
)

// WHOISProvider queries WHOIS servers for registration data.
type WHOISProvider struct {
	client *whois.Client
}

// NewWHOISProvider returns a Provider backed by the standard WHOIS referral
// chain.
func NewWHOISProvider() *WHOISProvider {
	return &WHOISProvider{client: whois.NewClient()}
}

func (p *WHOISProvider) Name() string { return "whois" }

// Lookup queries WHOIS for the registrable domain (eTLD+1) of the given
// hostname. WHOIS servers key on registered domains, so a lookup for
// login.examp1e.com must be issued for examp1e.com.
func (p *WHOISProvider) Lookup(ctx context.Context, domain string) (string, error) {
	target := registrableDomain(domain)

	// The whois client has no context support; run the query on the side
	// and let the caller's deadline cut the wait short.
	type result struct {
		data string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		data, err := p.client.Whois(target)
		ch <- result{data, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.err != nil {
			return "", fmt.Errorf("whois %s: %w", target, res.err)
		}
		return res.data, nil
	}
}

// registrableDomain reduces a hostname to its eTLD+1, falling back to the
// hostname itself when the public suffix list cannot place it (single
// labels, private suffixes).
func registrableDomain(host string) string {
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d
	}
	return host
}
