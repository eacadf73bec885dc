package extract

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/shpitdev/connections-enricher/internal/browser"
)

// Navigation landmarks from the main navigation to a contact's profile.
const (
	networkLandmark     = browser.NetworkLandmark
	networkLink         = ".nav-item--mynetwork a"
	connectionsLandmark = ".mn-community-summary__link"
	searchInput         = ".mn-connections__search-input"
	firstResult         = ".mn-connection-card__link"

	resultsDelay = 2 * time.Second
)

var nameUnsafeRe = regexp.MustCompile(`[^a-zA-Z0-9àáâãäåæçèéêëìíîïñøòóôõöœùúûüýÿÀÁÂÃÄÅÆÇÈÉÊËÌÍÎÏÑØÒÓÔÕÖŒÙÚÛÜÝŸ]`)

// CleanName replaces every character the connections search cannot take with a
// space and trims the result.
func CleanName(name string) string {
	return strings.TrimSpace(nameUnsafeRe.ReplaceAllString(name, " "))
}

// openProfile walks from the network page through the connections search to the
// first result, leaving the session on the contact's profile page.
func openProfile(ctx context.Context, s *browser.Session, name string, interval time.Duration) error {
	if err := s.Wait(ctx, networkLandmark); err != nil {
		return err
	}
	if err := s.Click(ctx, networkLink); err != nil {
		return err
	}
	if err := s.Wait(ctx, connectionsLandmark); err != nil {
		return err
	}
	if err := s.Click(ctx, connectionsLandmark); err != nil {
		return err
	}
	if err := s.Wait(ctx, searchInput); err != nil {
		return err
	}
	if err := s.Sleep(ctx, interval); err != nil {
		return err
	}
	if err := s.Type(ctx, searchInput, CleanName(name)); err != nil {
		return err
	}
	if err := s.Sleep(ctx, resultsDelay); err != nil {
		return err
	}
	return s.Click(ctx, firstResult)
}
