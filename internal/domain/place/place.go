// Package place describes businesses returned by the external places provider.
package place

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/nearby/internal/domain/geo"
)

// Place is one provider search hit.
type Place struct {
	ID          string
	Name        string
	Address     string
	Location    geo.Point
	HasLocation bool
	Types       []string
	Rating      float64
	ReviewCount int
	// OpenNow is nil when the provider did not say.
	OpenNow *bool
	Status  string
}

// Description renders the text that is embedded and compared against the query:
// the name, the phrase that found the place, what it was searched for, its types
// and its rating.
func (p *Place) Description(phrase, query string) string {
	var b strings.Builder
	b.WriteString(p.Name)
	if p.Address != "" {
		b.WriteString(" at ")
		b.WriteString(p.Address)
	}
	if phrase != "" {
		fmt.Fprintf(&b, ". Found searching for %q", phrase)
	}
	if query != "" {
		b.WriteString(". Serves/offers ")
		b.WriteString(query)
	}
	if len(p.Types) > 0 {
		b.WriteString(". Types: ")
		b.WriteString(strings.ReplaceAll(strings.Join(p.Types, ", "), "_", " "))
	}
	if p.Rating > 0 {
		fmt.Fprintf(&b, ". Rated %.1f from %d reviews", p.Rating, p.ReviewCount)
	}
	return b.String()
}

// IsOpen reports the provider's open-now flag, defaulting to open when unknown.
func (p *Place) IsOpen() bool {
	if p.OpenNow == nil {
		return true
	}
	return *p.OpenNow
}
