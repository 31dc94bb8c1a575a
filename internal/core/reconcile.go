package core

// reconcile.go implements the Name Reconciler.
//
// The English country metadata is authoritative for the row set. Spanish
// names are joined by country code with a left join and stay null when the
// Spanish source has no row. Continents are localized with the fixed
// vocabulary; a miss is a data error.

// Reconcile builds the country identity table.
func Reconcile(countries []CountryMeta, names []LocalizedName) ([]Identity, error) {
	if err := checkUnique(SourceCountries, "Country Code", len(countries), func(i int) (string, int) {
		return countries[i].Code, countries[i].Line
	}); err != nil {
		return nil, err
	}
	if err := checkUnique(SourceCountriesES, "Codigo Pais", len(names), func(i int) (string, int) {
		return names[i].Code, names[i].Line
	}); err != nil {
		return nil, err
	}

	spanish := make(map[string]string, len(names))
	for _, n := range names {
		spanish[n.Code] = n.Name
	}

	ids := make([]Identity, 0, len(countries))
	for _, c := range countries {
		continent, ok := ParseContinent(c.Continent)
		if !ok {
			return nil, &LookupMissError{Code: c.Code, Continent: c.Continent, Line: c.Line}
		}

		id := Identity{
			Code:        c.Code,
			Name:        c.Name,
			ContinentEN: c.Continent,
			Continent:   continent,
			ContinentES: continent.Spanish(),
		}
		if name, ok := spanish[c.Code]; ok {
			id.NameES = ToPgText(name)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// checkUnique reports the first key that appears on more than one row.
// keyAt returns the key and source line of row i.
func checkUnique(src SourceKey, column string, n int, keyAt func(i int) (string, int)) error {
	seen := make(map[string][]int, n)
	var order []string

	for i := 0; i < n; i++ {
		key, line := keyAt(i)
		if _, ok := seen[key]; !ok {
			order = append(order, key)
		}
		seen[key] = append(seen[key], line)
	}

	for _, key := range order {
		if lines := seen[key]; len(lines) > 1 {
			return &JoinIntegrityError{Source: src, Column: column, Value: key, Lines: lines}
		}
	}
	return nil
}
