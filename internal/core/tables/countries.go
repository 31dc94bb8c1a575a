package tables

import "github.com/JonMunkholm/worlddash/internal/core"

func init() {
	registerCountries()
	registerCountriesES()
}

// Countries.xlsx: authoritative row set, English names and continents.
func registerCountries() {
	core.Register(core.SourceDefinition{
		Key:   core.SourceCountries,
		Label: "Countries",
		FieldSpecs: []core.FieldSpec{
			{Name: "Country Code", Type: core.FieldText, Required: true, Key: true},
			{Name: "Country", Type: core.FieldText, Required: true, Key: true},
			{Name: "Continent", Type: core.FieldText, Required: true},
		},
	})
}

// Paises.xlsx: Spanish names keyed by the same country code.
func registerCountriesES() {
	core.Register(core.SourceDefinition{
		Key:   core.SourceCountriesES,
		Label: "Paises",
		FieldSpecs: []core.FieldSpec{
			{Name: "Codigo Pais", Aliases: []string{"Código País", "Código Pais", "Country Code"}, Type: core.FieldText, Required: true, Key: true},
			{Name: "Pais", Aliases: []string{"País", "Country_ES"}, Type: core.FieldText, Required: true},
		},
	})
}
