package place

import (
	"strings"
	"testing"
)

func TestDescription(t *testing.T) {
	p := Place{
		Name:        "Green Bowl",
		Types:       []string{"vegan_restaurant", "cafe"},
		Address:     "1 Market St",
		Rating:      4.6,
		ReviewCount: 210,
	}
	got := p.Description("pancake house", "vegan breakfast")
	want := `Green Bowl at 1 Market St. Found searching for "pancake house". Serves/offers vegan breakfast. ` +
		`Types: vegan restaurant, cafe. Rated 4.6 from 210 reviews`
	if got != want {
		t.Errorf("Description() = %q, want %q", got, want)
	}
	for _, want := range []string{"Green Bowl", "vegan restaurant, cafe", "1 Market St", "4.6", `"pancake house"`, "Serves/offers vegan breakfast"} {
		if !strings.Contains(got, want) {
			t.Errorf("Description() = %q, missing %q", got, want)
		}
	}
}

func TestDescription_Minimal(t *testing.T) {
	p := Place{Name: "Corner Shop"}
	if got := p.Description("", ""); got != "Corner Shop" {
		t.Errorf("Description() = %q", got)
	}
}

func TestIsOpen(t *testing.T) {
	yes, no := true, false
	tests := []struct {
		name string
		open *bool
		want bool
	}{
		{"unknown defaults to open", nil, true},
		{"open", &yes, true},
		{"closed", &no, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Place{OpenNow: tt.open}
			if got := p.IsOpen(); got != tt.want {
				t.Errorf("IsOpen() = %v, want %v", got, tt.want)
			}
		})
	}
}
