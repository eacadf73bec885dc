package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/shpitdev/connections-enricher/internal/browser"
	"github.com/shpitdev/connections-enricher/internal/contacts"
)

const (
	profileLandmark   = "ul.pv-top-card--list"
	experienceSection = "section#experience-section"
	experienceEntry   = "div.pv-entity__summary-info"
	experienceTitle   = "h3.t-16"
	experienceCompany = "p.pv-entity__secondary-title"

	// The experience section renders lazily, below the top card.
	experienceScrollY = 1024
)

const experienceScript = `document.querySelector("section#experience-section").outerHTML`

// History fills Record.History from the profile's experience section.
type History struct{}

func (History) Name() string { return "history" }

func (History) Field() contacts.Field { return contacts.FieldHistory }

func (History) Find(s *contacts.Store) (*contacts.Record, bool) {
	return s.FirstBlank(contacts.FieldHistory)
}

func (History) Fetch(ctx context.Context, sess *browser.Session, name string, interval time.Duration) Result {
	if err := openProfile(ctx, sess, name, interval); err != nil {
		return Classify(err)
	}
	if err := sess.Wait(ctx, profileLandmark); err != nil {
		return Classify(err)
	}
	if err := sess.ScrollTo(ctx, 0, experienceScrollY); err != nil {
		return Classify(err)
	}
	if err := sess.Wait(ctx, experienceSection); err != nil {
		// Only a section that never rendered means the profile has no experience.
		if !errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return Classify(err)
		}
		return Result{Outcome: OutcomeValue, Value: Text(NoExperience)}
	}

	section, err := browser.RunScript[string](ctx, sess, experienceScript)
	if err != nil {
		return Classify(err)
	}
	positions, err := ParseExperience(section)
	if err != nil {
		return Classify(err)
	}
	return Result{Outcome: OutcomeValue, Value: Value{Positions: positions}}
}

func (History) Assign(_ *contacts.Store, rec *contacts.Record, v Value) {
	if v.Positions != nil {
		rec.History = contacts.HistoryOf(v.Positions)
		return
	}
	rec.History = contacts.HistoryNote(v.Text)
}

// ParseExperience collects (title, company) pairs from an experience section in
// document order. The result is never nil.
func ParseExperience(sectionHTML string) ([]contacts.Position, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sectionHTML))
	if err != nil {
		return nil, fmt.Errorf("parse experience: %w", err)
	}
	positions := []contacts.Position{}
	doc.Find(experienceEntry).Each(func(_ int, entry *goquery.Selection) {
		title := entry.Find(experienceTitle).First()
		if title.Length() == 0 {
			return
		}
		positions = append(positions, contacts.Position{
			Title:   innerText(title),
			Company: innerText(entry.Find(experienceCompany).First()),
		})
	})
	return positions, nil
}

func innerText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
