package outreach

import (
	"fmt"
	"net/url"
)

// Message is a composed outbound email before HTML conversion.
type Message struct {
	Subject string
	Body    string
}

// Composer renders the outreach subject and body from a persona, a clean
// business name, and a product category. Composition never fails: an unknown
// persona key falls back to the catalog's default persona.
type Composer struct {
	catalog        *Catalog
	unsubscribeURL string
}

// NewComposer creates a composer. unsubscribeURL is the base URL the
// recipient's URL-encoded email is appended to.
func NewComposer(cat *Catalog, unsubscribeURL string) *Composer {
	if unsubscribeURL == "" {
		unsubscribeURL = "https://achievepack.com/unsubscribe?email="
	}
	return &Composer{catalog: cat, unsubscribeURL: unsubscribeURL}
}

const bodyTemplate = `Hi %s team,

I came across your site while looking at %s brands and wanted to reach out directly.

We work with growing brands on %s:

• Low minimums, from 500 units
• Custom printed, digital or plate
✓ Compostable and recyclable structures available

If packaging is on your radar this quarter, I'd be happy to send over a few samples and pricing. You can see our range at https://achievepack.com

Best,
%s

Don't want to hear from us? Unsubscribe: %s%s`

// Compose renders the message for one prospect.
func (c *Composer) Compose(cleanName, personaKey, category, email string) Message {
	persona := c.catalog.PersonaByKey(personaKey)
	encoded := url.QueryEscape(email)

	return Message{
		Subject: fmt.Sprintf("Custom %s for %s", category, cleanName),
		Body: fmt.Sprintf(bodyTemplate,
			cleanName,
			category,
			category,
			persona.Signature,
			c.unsubscribeURL,
			encoded,
		),
	}
}
