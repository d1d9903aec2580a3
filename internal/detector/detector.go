// Package detector orchestrates normalization, similarity matching, and
// registration lookups into a single clone-detection verdict.
package detector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ankitjha412/clone/internal/domain"
	"github.com/ankitjha412/clone/internal/lookup"
	"github.com/ankitjha412/clone/internal/match"
	"github.com/ankitjha412/clone/internal/reference"
)

var (
	// ErrMissingURL is returned when the caller supplied no URL at all.
	ErrMissingURL = errors.New("missing url")
	// ErrInvalidFormat is returned when the supplied URL cannot be parsed.
	ErrInvalidFormat = errors.New("invalid url format")
)

// Fixed registration-info messages for verdicts that skip the lookup.
const (
	msgVerified = "domain is a verified legitimate domain; lookup skipped"
	msgSkipped  = "similarity below clone threshold; lookup skipped"
)

// Verdict is the outcome of one clone-detection request. It is returned to
// the caller and never persisted.
type Verdict struct {
	SuspectURL       string  `json:"suspect_url"`
	Domain           string  `json:"extracted_domain"`
	BestMatch        string  `json:"best_match_domain,omitempty"`
	Score            float64 `json:"score"`
	MatchingAccuracy string  `json:"matching_accuracy"`
	IsClone          bool    `json:"is_clone"`
	RegistrationInfo string  `json:"registration_info"`
}

// Engine is the clone-detection pipeline. The reference set is immutable
// and the lookup cache is concurrency-safe, so one Engine serves all
// requests.
type Engine struct {
	refs   *reference.Set
	cache  *lookup.Cache
	logger *slog.Logger
}

// New builds an Engine over a loaded reference set and a lookup cache.
func New(refs *reference.Set, cache *lookup.Cache, logger *slog.Logger) *Engine {
	return &Engine{refs: refs, cache: cache, logger: logger}
}

// Detect runs the full pipeline for one suspect URL: normalize, exact-match
// short-circuit, similarity scan, and — for clone candidates only — the
// registration lookup. Returned errors are always ErrMissingURL or
// ErrInvalidFormat; lookup failures are soft and reported inside the
// Verdict.
func (e *Engine) Detect(ctx context.Context, suspectURL string) (*Verdict, error) {
	d, err := domain.Normalize(suspectURL)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyInput) {
			return nil, ErrMissingURL
		}
		e.logger.Debug("rejecting unparseable url", "url", suspectURL, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	res := match.Best(d, e.refs)

	verdict := &Verdict{
		SuspectURL:       suspectURL,
		Domain:           d,
		BestMatch:        res.BestMatch,
		Score:            res.Score,
		MatchingAccuracy: formatAccuracy(res.Score),
		IsClone:          res.IsClone(),
	}

	switch {
	case res.Exact:
		verdict.RegistrationInfo = msgVerified
	case res.IsClone():
		rec := e.cache.Lookup(ctx, d)
		verdict.RegistrationInfo = rec.Data
	default:
		verdict.RegistrationInfo = msgSkipped
	}

	e.logger.Info("verdict",
		"domain", d,
		"best_match", res.BestMatch,
		"score", res.Score,
		"is_clone", verdict.IsClone,
	)
	return verdict, nil
}

// formatAccuracy renders a score as a percentage string with no trailing
// zeros, so an exact match reads "100%".
func formatAccuracy(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64) + "%"
}
