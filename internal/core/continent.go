package core

import "strings"

// Continent is a canonical continent of the fixed vocabulary.
type Continent string

const (
	Africa  Continent = "Africa"
	America Continent = "America"
	Asia    Continent = "Asia"
	Europe  Continent = "Europe"
	Oceania Continent = "Oceania"
)

// Continents lists the vocabulary in display order.
var Continents = []Continent{Africa, America, Asia, Europe, Oceania}

var continentsES = map[Continent]string{
	Africa:  "África",
	America: "América",
	Asia:    "Asia",
	Europe:  "Europa",
	Oceania: "Oceanía",
}

// continentAliases maps lowercase source spellings to canonical continents.
// Sources disagree on "America" vs "Americas"; both are the same continent.
var continentAliases = map[string]Continent{
	"africa":   Africa,
	"america":  America,
	"americas": America,
	"asia":     Asia,
	"europe":   Europe,
	"oceania":  Oceania,
}

// ParseContinent maps an English continent name to the vocabulary.
// Matching ignores case and surrounding whitespace.
func ParseContinent(s string) (Continent, bool) {
	c, ok := continentAliases[strings.ToLower(strings.TrimSpace(s))]
	return c, ok
}

// Spanish returns the localized continent name.
func (c Continent) Spanish() string {
	return continentsES[c]
}

// Valid reports whether c is part of the vocabulary.
func (c Continent) Valid() bool {
	_, ok := continentsES[c]
	return ok
}
