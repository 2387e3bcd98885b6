package outreach

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/globalyuen/achievepack-outreach/pkg/anthropic"
)

var (
	errNoCredential   = eris.New("normalize: no ai credential configured")
	errUnusableOutput = eris.New("normalize: ai output failed validation")
)

// Normalizer turns a noisy scraped title into a short clean brand name.
type Normalizer interface {
	CleanName(ctx context.Context, title string) (string, error)
}

const maxCleanNameLen = 100

// nameSeparators are the characters that mark the end of the brand portion
// of a scraped page title.
const nameSeparators = "-|–—:"

const quoteChars = "\"'“”‘’"

const extractionPrompt = "You extract brand names from web page titles. " +
	"Given a page title, return only the business's brand name, 2-4 words, " +
	"with no explanation, no punctuation beyond the name itself, and no quotes."

// ClaudeNormalizer is the primary, AI-assisted normalization path. It may
// fail or produce unusable output; callers are expected to pair it with the
// rule-based fallback via TwoTier.
type ClaudeNormalizer struct {
	client anthropic.Client
	model  string
}

// NewClaudeNormalizer creates the AI normalizer. A nil client means no
// credential is configured; CleanName then always errors so the fallback
// takes over.
func NewClaudeNormalizer(client anthropic.Client, model string) *ClaudeNormalizer {
	return &ClaudeNormalizer{client: client, model: model}
}

func (n *ClaudeNormalizer) CleanName(ctx context.Context, title string) (string, error) {
	if n.client == nil {
		return "", errNoCredential
	}

	temp := 0.2
	resp, err := n.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       n.model,
		MaxTokens:   50,
		System:      extractionPrompt,
		Messages:    []anthropic.Message{{Role: "user", Content: title}},
		Temperature: &temp,
	})
	if err != nil {
		return "", err
	}

	out := strings.TrimSpace(resp.Text())
	if n := utf8.RuneCountInString(out); n < 2 || n > 99 {
		return "", errUnusableOutput
	}
	out = strings.Trim(out, quoteChars)
	if out == "" {
		return "", errUnusableOutput
	}
	return out, nil
}

// RuleNormalizer is the deterministic fallback path. It is total: any
// non-empty input yields a non-empty bounded output with no network
// dependency.
type RuleNormalizer struct {
	stoplist map[string]struct{}
}

// NewRuleNormalizer builds the fallback normalizer from the catalog stoplist.
func NewRuleNormalizer(stoplist []string) *RuleNormalizer {
	set := make(map[string]struct{}, len(stoplist))
	for _, w := range stoplist {
		set[strings.ToUpper(w)] = struct{}{}
	}
	return &RuleNormalizer{stoplist: set}
}

func (n *RuleNormalizer) CleanName(_ context.Context, title string) (string, error) {
	return n.clean(title), nil
}

func (n *RuleNormalizer) clean(title string) string {
	s := title
	if i := strings.IndexAny(s, nameSeparators); i >= 0 {
		s = s[:i]
	}
	s = stripParens(s)
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(quoteChars, r) {
			return -1
		}
		return r
	}, s)

	var kept []string
	for _, tok := range strings.Fields(s) {
		bare := strings.TrimRight(tok, ".,!?;:")
		if bare == "" {
			continue
		}
		if _, stop := n.stoplist[strings.ToUpper(bare)]; stop {
			continue
		}
		kept = append(kept, bare)
		if len(kept) == 4 {
			break
		}
	}

	if len(kept) == 0 {
		// Every token was generic. Fall back to the head of the original,
		// untruncated title so the result is still non-empty.
		orig := strings.Fields(title)
		if len(orig) > 3 {
			orig = orig[:3]
		}
		kept = orig
	}

	out := strings.Join(kept, " ")
	if utf8.RuneCountInString(out) > maxCleanNameLen {
		out = string([]rune(out)[:maxCleanNameLen])
	}
	if out == "" {
		out = "there"
	}
	return out
}

func stripParens(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// TwoTier pairs the AI path with the rule fallback. CleanName is total:
// whenever the primary path errors or its output fails validation, the
// fallback result is returned instead.
type TwoTier struct {
	primary  Normalizer
	fallback *RuleNormalizer
}

// NewTwoTier creates the combined normalizer. A nil primary uses the
// fallback exclusively.
func NewTwoTier(primary Normalizer, fallback *RuleNormalizer) *TwoTier {
	return &TwoTier{primary: primary, fallback: fallback}
}

func (t *TwoTier) CleanName(ctx context.Context, title string) (string, error) {
	if t.primary != nil {
		name, err := t.primary.CleanName(ctx, title)
		if err == nil {
			return name, nil
		}
		if err != errNoCredential {
			zap.L().Warn("ai name extraction failed, using rule fallback",
				zap.String("title", title),
				zap.Error(err))
		}
	}
	return t.fallback.clean(title), nil
}
