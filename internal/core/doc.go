// Package core provides the join and filter pipeline behind the dashboard.
//
// This package holds all domain logic independent of any UI or transport
// layer. The web server, the check command and tests use it unchanged.
//
// # Architecture
//
// The package is organized around the stages of the pipeline:
//
//   - Source Definitions: Registered via the registry, each reference source
//     lists the columns it must provide.
//   - Loader: Reads all sources concurrently and types their cells.
//   - Reconciler: Joins English and Spanish metadata by country code and
//     localizes continents.
//   - Merger: Left-joins the indicator tables on the English country name.
//   - Dataset: The immutable Merged Table, built once per source version and
//     shared through [Cache].
//   - Filter: Compound bucket criteria evaluated per request.
//
// # Source Registry
//
// Sources are registered at init time using [Register]. Each
// [SourceDefinition] lists the columns the loader consumes:
//
//	core.Register(SourceDefinition{
//	    Key:   core.SourcePopulation,
//	    Label: "Population",
//	    FieldSpecs: []FieldSpec{
//	        {Name: "Country", Required: true, Key: true, Type: FieldText},
//	        {Name: "Population", Required: true, Type: FieldInteger},
//	    },
//	})
//
// # Filtering
//
// A [Criteria] holds one [Constraint] per dimension. Within a dimension the
// selected members are OR-ed; across dimensions the results are AND-ed:
//
//	crit, err := core.DefaultCatalog().Criteria(core.Selections{
//	    Continent:  []string{"europe", "asia"},
//	    Population: []string{"10m-100m"},
//	})
//	view := dataset.Filter(crit)
//
// World shares in a [View] are always relative to the full dataset total.
//
// # Error Handling
//
// Load failures are typed: [SourceLoadError], [JoinIntegrityError] and
// [LookupMissError]. Each aborts the build. Technical errors are mapped to
// user-friendly messages with stable codes using [MapError].
package core
