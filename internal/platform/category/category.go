package category

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category classifies a fitness test and selects its scoring rule.
type Category string

const (
	Speed    Category = "Speed"
	Power    Category = "Power"
	Strength Category = "Strength"
	Core     Category = "Core"
	Agility  Category = "Agility"
	General  Category = "General"
)

var known = []Category{Speed, Power, Strength, Core, Agility, General}

// Known lists the built-in categories in display order.
func Known() []Category {
	out := make([]Category, len(known))
	copy(out, known)
	return out
}

// Parse normalizes user or file input. Unknown names survive as custom
// categories so scoring tables can grow without touching this package.
func Parse(raw string) Category {
	raw = strings.Join(strings.Fields(raw), " ")
	if raw == "" {
		return General
	}
	folded := cases.Title(language.English).String(strings.ToLower(raw))
	for _, c := range known {
		if strings.EqualFold(string(c), folded) {
			return c
		}
	}
	return Category(folded)
}

func (c Category) IsKnown() bool {
	for _, k := range known {
		if k == c {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}
