package tables

import "github.com/JonMunkholm/worlddash/internal/core"

func init() {
	registerPopulation()
	registerInfantMortality()
	registerLifeExpectancy()
}

func registerPopulation() {
	core.Register(core.SourceDefinition{
		Key:   core.SourcePopulation,
		Label: "Population",
		FieldSpecs: []core.FieldSpec{
			{Name: "Country", Type: core.FieldText, Required: true, Key: true},
			{Name: "Population", Type: core.FieldInteger, Required: true},
		},
	})
}

// Infant mortality is deaths per 1000 live births.
func registerInfantMortality() {
	core.Register(core.SourceDefinition{
		Key:   core.SourceInfantMortality,
		Label: "Infant death rate",
		FieldSpecs: []core.FieldSpec{
			{Name: "Country", Type: core.FieldText, Required: true, Key: true},
			{Name: "Infant mortality", Aliases: []string{"Infant mortality rate"}, Type: core.FieldFloat, Required: true},
		},
	})
}

func registerLifeExpectancy() {
	core.Register(core.SourceDefinition{
		Key:   core.SourceLifeExpectancy,
		Label: "Life expectancy",
		FieldSpecs: []core.FieldSpec{
			{Name: "Country", Type: core.FieldText, Required: true, Key: true},
			{Name: "Life Expectancy", Aliases: []string{"Life expectancy at birth"}, Type: core.FieldFloat, Required: true},
		},
	})
}
