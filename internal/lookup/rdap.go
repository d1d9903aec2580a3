package lookup

import (
	"context"
	"fmt"
	"strings"

	"github.com/openrdap/rdap"
)

// rdapQuerier abstracts the RDAP client for testing.
type rdapQuerier interface {
	Do(req *rdap.Request) (*rdap.Response, error)
}

// RDAPProvider queries the RDAP bootstrap registry for registration data.
// RDAP is the structured successor to WHOIS; its responses are rendered to
// a compact text summary so both providers satisfy the same contract.
type RDAPProvider struct {
	client rdapQuerier
}

// NewRDAPProvider returns a Provider backed by the standard RDAP bootstrap.
func NewRDAPProvider() *RDAPProvider {
	return &RDAPProvider{client: &rdap.Client{}}
}

func (p *RDAPProvider) Name() string { return "rdap" }

func (p *RDAPProvider) Lookup(ctx context.Context, domain string) (string, error) {
	req := &rdap.Request{
		Type:  rdap.DomainRequest,
		Query: registrableDomain(domain),
	}
	resp, err := p.client.Do(req.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("rdap %s: %w", req.Query, err)
	}
	d, ok := resp.Object.(*rdap.Domain)
	if !ok {
		return "", fmt.Errorf("rdap %s: unexpected response type %T", req.Query, resp.Object)
	}
	return renderDomain(d), nil
}

// renderDomain flattens the fields a reviewer of a suspicious domain cares
// about: who registered it, through whom, and when.
func renderDomain(d *rdap.Domain) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Domain: %s\n", d.LDHName)
	if registrar := registrarName(d.Entities); registrar != "" {
		fmt.Fprintf(&b, "Registrar: %s\n", registrar)
	}
	if len(d.Status) > 0 {
		fmt.Fprintf(&b, "Status: %s\n", strings.Join(d.Status, ", "))
	}
	for _, ev := range d.Events {
		fmt.Fprintf(&b, "Event: %s %s\n", ev.Action, ev.Date)
	}
	for _, ns := range d.Nameservers {
		fmt.Fprintf(&b, "Nameserver: %s\n", ns.LDHName)
	}
	return strings.TrimRight(b.String(), "\n")
}

// registrarName walks the RDAP entity tree for a registrar role with a
// vCard name.
func registrarName(entities []rdap.Entity) string {
	for _, entity := range entities {
		for _, role := range entity.Roles {
			if strings.EqualFold(role, "registrar") && entity.VCard != nil {
				if name := entity.VCard.Name(); name != "" {
					return name
				}
			}
		}
		if name := registrarName(entity.Entities); name != "" {
			return name
		}
	}
	return ""
}
