package lookup

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/openrdap/rdap"
)

type mockRDAPQuerier struct {
	resp *rdap.Response
	err  error
}

func (m *mockRDAPQuerier) Do(req *rdap.Request) (*rdap.Response, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

func TestRDAPProviderLookup(t *testing.T) {
	p := &RDAPProvider{client: &mockRDAPQuerier{
		resp: &rdap.Response{
			Object: &rdap.Domain{
				LDHName: "examp1e.com",
				Status:  []string{"client transfer prohibited"},
				Events: []rdap.Event{
					{Action: "registration", Date: "2026-08-01T00:00:00Z"},
				},
				Nameservers: []rdap.Nameserver{
					{LDHName: "ns1.examp1e.com"},
				},
			},
		},
	}}

	data, err := p.Lookup(context.Background(), "examp1e.com")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	for _, want := range []string{
		"Domain: examp1e.com",
		"Status: client transfer prohibited",
		"Event: registration 2026-08-01T00:00:00Z",
		"Nameserver: ns1.examp1e.com",
	} {
		if !strings.Contains(data, want) {
			t.Fatalf("rendered data missing %q:\n%s", want, data)
		}
	}
}

func TestRDAPProviderError(t *testing.T) {
	p := &RDAPProvider{client: &mockRDAPQuerier{err: errors.New("bootstrap failed")}}

	if _, err := p.Lookup(context.Background(), "examp1e.com"); err == nil {
		t.Fatal("expected error")
	}
}

func TestRDAPProviderUnexpectedObject(t *testing.T) {
	p := &RDAPProvider{client: &mockRDAPQuerier{
		resp: &rdap.Response{Object: &rdap.IPNetwork{}},
	}}

	if _, err := p.Lookup(context.Background(), "examp1e.com"); err == nil {
		t.Fatal("expected error for non-domain response object")
	}
}

func TestRegistrableDomain(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"examp1e.com", "examp1e.com"},
		{"login.examp1e.com", "examp1e.com"},
		{"deep.login.examp1e.co.uk", "examp1e.co.uk"},
		{"localhost", "localhost"}, // no public suffix; fall back unchanged
	}
	for _, tt := range tests {
		if got := registrableDomain(tt.host); got != tt.want {
			t.Fatalf("registrableDomain(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}
