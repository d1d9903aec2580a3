// Package lookup fetches and caches registration metadata for suspect
// domains. External queries are slow and rate-limited upstream, so every
// result — success or failure — is cached, and concurrent first lookups
// for one domain coalesce into a single upstream call.
package lookup

// Status classifies the outcome of a registration lookup.
type Status string

const (
	// StatusSuccess means the provider returned registration data.
	StatusSuccess Status = "success"
	// StatusFailed means the provider returned an error.
	StatusFailed Status = "failed"
	// StatusUnavailable means the provider did not answer within the
	// lookup timeout.
	StatusUnavailable Status = "unavailable"
)

// Record is the cached outcome of one registration lookup. Failed and
// unavailable lookups are records too: they are cached exactly like
// successes so a flaky upstream is not hammered with retries.
type Record struct {
	Domain string `json:"domain"`
	Data   string `json:"data"`
	Status Status `json:"status"`
}
