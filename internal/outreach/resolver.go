package outreach

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/globalyuen/achievepack-outreach/pkg/hunter"
)

// DeriveDomain extracts a bare hostname from a website URL: scheme, leading
// "www.", path, and query are all stripped. Returns "" when nothing usable
// remains.
func DeriveDomain(website string) string {
	s := strings.TrimSpace(website)
	if s == "" {
		return ""
	}

	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "@"); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.Index(s, ":"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimPrefix(strings.ToLower(s), "www.")

	if !strings.Contains(s, ".") {
		return ""
	}
	return s
}

// Resolver looks up a contact email for a domain. A missing credential, a
// provider error, or an empty result all resolve to ok=false; resolution
// never fails a run.
type Resolver struct {
	client hunter.Client
}

// NewResolver creates a resolver. A nil client means no credential is
// configured; Resolve then always returns ok=false.
func NewResolver(client hunter.Client) *Resolver {
	return &Resolver{client: client}
}

// Resolve returns the first discoverable email for domain.
func (r *Resolver) Resolve(ctx context.Context, domain string) (string, bool) {
	if r.client == nil {
		zap.L().Info("email resolution skipped, no lookup credential configured")
		return "", false
	}

	resp, err := r.client.DomainSearch(ctx, domain)
	if err != nil {
		zap.L().Warn("email resolution failed, treating as no email",
			zap.String("domain", domain),
			zap.Error(err))
		return "", false
	}

	if len(resp.Data.Emails) == 0 {
		return "", false
	}
	return resp.Data.Emails[0].Value, true
}
