package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/shpitdev/connections-enricher/internal/browser"
	"github.com/shpitdev/connections-enricher/internal/contacts"
)

const (
	contactInfoControl = "[data-control-name=contact_see_more]"
	contactInfoPanel   = ".pv-contact-info"
	emailLink          = ".ci-email div a.pv-contact-info__contact-link"
	panelSettle        = 200 * time.Millisecond
)

// contactInfoScript throws when the panel is gone, which surfaces as a soft failure.
const contactInfoScript = `document.querySelector(".pv-contact-info").outerHTML`

// Email fills Record.Email from the profile's contact-info panel.
type Email struct{}

func (Email) Name() string { return "email" }

func (Email) Field() contacts.Field { return contacts.FieldEmail }

func (Email) Find(s *contacts.Store) (*contacts.Record, bool) {
	return s.FirstBlank(contacts.FieldEmail)
}

func (Email) Fetch(ctx context.Context, sess *browser.Session, name string, interval time.Duration) Result {
	if err := openProfile(ctx, sess, name, interval); err != nil {
		return Classify(err)
	}
	if err := sess.Wait(ctx, contactInfoControl); err != nil {
		return Classify(err)
	}
	if err := sess.Click(ctx, contactInfoControl); err != nil {
		return Classify(err)
	}
	if err := sess.Wait(ctx, contactInfoPanel); err != nil {
		return Classify(err)
	}
	if err := sess.Sleep(ctx, panelSettle); err != nil {
		return Classify(err)
	}

	panel, err := browser.RunScript[string](ctx, sess, contactInfoScript)
	if err != nil {
		return Classify(err)
	}
	email, err := ParseContactEmail(panel)
	if err != nil {
		return Classify(err)
	}
	return Result{Outcome: OutcomeValue, Value: Text(email)}
}

func (Email) Assign(_ *contacts.Store, rec *contacts.Record, v Value) {
	rec.Email = v.Text
}

// ParseContactEmail returns the address of the email link in a contact-info panel,
// or NoEmail when the panel has no email link.
func ParseContactEmail(panelHTML string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(panelHTML))
	if err != nil {
		return "", fmt.Errorf("parse contact info: %w", err)
	}
	href, ok := doc.Find(emailLink).First().Attr("href")
	if !ok {
		return NoEmail, nil
	}
	email := strings.TrimSpace(strings.Replace(href, "mailto:", "", 1))
	if email == "" {
		return NoEmail, nil
	}
	return email, nil
}
