package outreach

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/globalyuen/achievepack-outreach/pkg/resend"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<]+`)

// Dispatcher sends composed messages through the transactional email
// provider. A non-success provider response is an error fatal to the current
// candidate only; the orchestrator catches it at the per-candidate boundary.
type Dispatcher struct {
	client resend.Client
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(client resend.Client) *Dispatcher {
	return &Dispatcher{client: client}
}

// Send delivers msg to the recipient from the given persona and returns the
// provider message ID.
func (d *Dispatcher) Send(ctx context.Context, persona Persona, to string, msg Message) (string, error) {
	if d.client == nil {
		return "", eris.New("dispatch: no email provider configured")
	}

	resp, err := d.client.SendEmail(ctx, &resend.SendRequest{
		From:    fmt.Sprintf("%s <%s>", persona.DisplayName, persona.FromAddress),
		To:      []string{to},
		Subject: msg.Subject,
		HTML:    textToHTML(msg.Body),
		Text:    msg.Body,
	})
	if err != nil {
		return "", eris.Wrap(err, "dispatch: send email")
	}

	return resp.ID, nil
}

// textToHTML converts a plain-text body to a minimal HTML rendition: the
// text is escaped, bullet and check glyphs become entities, bare URLs become
// anchors, and line breaks become explicit <br> separators.
func textToHTML(text string) string {
	escaped := html.EscapeString(text)

	escaped = strings.ReplaceAll(escaped, "•", "&bull;")
	escaped = strings.ReplaceAll(escaped, "✓", "&#10003;")

	escaped = urlPattern.ReplaceAllStringFunc(escaped, func(u string) string {
		return fmt.Sprintf(`<a href="%s">%s</a>`, u, u)
	})

	return strings.ReplaceAll(escaped, "\n", "<br>\n")
}
