package core

// buckets.go provides the bucket catalog.
//
// The catalog lists the options of every filter dimension with stable keys
// and display labels. The default catalog is embedded; an operator may
// supply a replacement file with the same layout.

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed buckets.yaml
var defaultCatalogYAML []byte

// SelectAll is the selection key meaning "no constraint on this dimension".
// "all" is accepted as well.
const SelectAll = "todos"

// ContinentOption is a selectable continent.
type ContinentOption struct {
	Key       string    `json:"key"`
	Label     string    `json:"label"`
	Continent Continent `json:"continent"`
}

// Catalog holds the options of every filter dimension.
type Catalog struct {
	Continents      []ContinentOption `json:"continent"`
	Population      []Bucket          `json:"population"`
	InfantMortality []Bucket          `json:"infant_mortality"`
	LifeExpectancy  []Bucket          `json:"life_expectancy"`
}

// catalogDoc is the YAML layout of a catalog file.
type catalogDoc struct {
	Continent       []continentDoc `yaml:"continent"`
	Population      []bucketDoc    `yaml:"population"`
	InfantMortality []bucketDoc    `yaml:"infant_mortality"`
	LifeExpectancy  []bucketDoc    `yaml:"life_expectancy"`
}

type continentDoc struct {
	Key       string `yaml:"key"`
	Label     string `yaml:"label"`
	Continent string `yaml:"continent"`
}

type bucketDoc struct {
	Key   string   `yaml:"key"`
	Label string   `yaml:"label"`
	Lo    float64  `yaml:"lo"`
	Hi    *float64 `yaml:"hi"`
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
})

// DefaultCatalog returns the embedded catalog.
// It panics if the embedded file is invalid.
func DefaultCatalog() *Catalog {
	c, err := defaultCatalog()
	if err != nil {
		panic(fmt.Sprintf("embedded bucket catalog: %v", err))
	}
	return c
}

// LoadCatalog reads a catalog file. An empty path returns the embedded
// default.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return defaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bucket catalog: %w", err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("bucket catalog %s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes and validates a YAML catalog.
// Unknown fields are rejected.
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc catalogDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	var errs []string
	c := &Catalog{}
	for _, d := range doc.Continent {
		cont, ok := ParseContinent(d.Continent)
		if !ok {
			errs = append(errs, fmt.Sprintf("continent %q: unknown continent %q", d.Key, d.Continent))
		}
		label := d.Label
		if label == "" {
			label = cont.Spanish()
		}
		c.Continents = append(c.Continents, ContinentOption{Key: d.Key, Label: label, Continent: cont})
	}
	c.Population = buckets(doc.Population)
	c.InfantMortality = buckets(doc.InfantMortality)
	c.LifeExpectancy = buckets(doc.LifeExpectancy)

	errs = append(errs, c.validate()...)
	if len(errs) > 0 {
		return nil, fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return c, nil
}

func buckets(docs []bucketDoc) []Bucket {
	out := make([]Bucket, len(docs))
	for i, d := range docs {
		b := Bucket{Key: d.Key, Label: d.Label, Lo: d.Lo, Unbounded: d.Hi == nil}
		if d.Hi != nil {
			b.Hi = *d.Hi
		}
		if b.Label == "" {
			b.Label = b.Key
		}
		out[i] = b
	}
	return out
}

// validate returns every problem found in the catalog.
func (c *Catalog) validate() []string {
	var errs []string

	seen := make(map[string]bool)
	if len(c.Continents) == 0 {
		errs = append(errs, "continent: no options")
	}
	for _, opt := range c.Continents {
		errs = append(errs, checkKey(DimContinent, opt.Key, seen)...)
	}

	for _, dim := range Dimensions[1:] {
		seen := make(map[string]bool)
		list := c.Buckets(dim)
		if len(list) == 0 {
			errs = append(errs, fmt.Sprintf("%s: no buckets", dim))
		}
		for _, b := range list {
			errs = append(errs, checkKey(dim, b.Key, seen)...)
			if b.Lo < 0 {
				errs = append(errs, fmt.Sprintf("%s %q: lo (%g) must be non-negative", dim, b.Key, b.Lo))
			}
			if !b.Unbounded && b.Lo > b.Hi {
				errs = append(errs, fmt.Sprintf("%s %q: lo (%g) must be <= hi (%g)", dim, b.Key, b.Lo, b.Hi))
			}
		}
	}
	return errs
}

func checkKey(dim Dimension, key string, seen map[string]bool) []string {
	switch {
	case key == "":
		return []string{fmt.Sprintf("%s: empty key", dim)}
	case isSelectAll(key):
		return []string{fmt.Sprintf("%s: key %q is reserved", dim, key)}
	case seen[key]:
		return []string{fmt.Sprintf("%s: duplicate key %q", dim, key)}
	}
	seen[key] = true
	return nil
}

// Buckets returns the buckets of a numeric dimension.
func (c *Catalog) Buckets(dim Dimension) []Bucket {
	switch dim {
	case DimPopulation:
		return c.Population
	case DimInfantMortality:
		return c.InfantMortality
	case DimLifeExpectancy:
		return c.LifeExpectancy
	}
	return nil
}

// Keys returns the option keys of a dimension in catalog order.
func (c *Catalog) Keys(dim Dimension) []string {
	if dim == DimContinent {
		keys := make([]string, len(c.Continents))
		for i, opt := range c.Continents {
			keys[i] = opt.Key
		}
		return keys
	}
	list := c.Buckets(dim)
	keys := make([]string, len(list))
	for i, b := range list {
		keys[i] = b.Key
	}
	return keys
}

// Selections holds the raw option keys chosen for each dimension.
//
// A dimension with no keys, or with SelectAll among its keys, imposes no
// constraint. Blank keys are ignored. Callers that need a selection
// matching nothing build the Criteria directly with OneOf().
type Selections struct {
	Continent       []string
	Population      []string
	InfantMortality []string
	LifeExpectancy  []string
}

// Get returns the keys selected for a dimension.
func (s Selections) Get(dim Dimension) []string {
	switch dim {
	case DimContinent:
		return s.Continent
	case DimPopulation:
		return s.Population
	case DimInfantMortality:
		return s.InfantMortality
	case DimLifeExpectancy:
		return s.LifeExpectancy
	}
	return nil
}

// Criteria resolves selections into filter criteria.
// Unknown keys are reported as *UnknownBucketError.
func (c *Catalog) Criteria(sel Selections) (Criteria, error) {
	var (
		crit Criteria
		err  error
	)

	if crit.Continent, err = resolve(DimContinent, sel.Continent, c.Continents,
		func(o ContinentOption) string { return o.Key },
		func(o ContinentOption) Continent { return o.Continent },
	); err != nil {
		return Criteria{}, err
	}

	key := func(b Bucket) string { return b.Key }
	self := func(b Bucket) Bucket { return b }
	if crit.Population, err = resolve(DimPopulation, sel.Population, c.Population, key, self); err != nil {
		return Criteria{}, err
	}
	if crit.InfantMortality, err = resolve(DimInfantMortality, sel.InfantMortality, c.InfantMortality, key, self); err != nil {
		return Criteria{}, err
	}
	if crit.LifeExpectancy, err = resolve(DimLifeExpectancy, sel.LifeExpectancy, c.LifeExpectancy, key, self); err != nil {
		return Criteria{}, err
	}
	return crit, nil
}

// resolve maps selected keys to the members of one dimension.
// Repeated keys select the member once, in catalog order.
func resolve[O, T any](dim Dimension, keys []string, options []O, keyOf func(O) string, member func(O) T) (Constraint[T], error) {
	if slices.ContainsFunc(keys, isSelectAll) {
		return NoConstraint[T](), nil
	}

	chosen := make(map[string]bool, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if !slices.ContainsFunc(options, func(o O) bool { return keyOf(o) == k }) {
			return Constraint[T]{}, &UnknownBucketError{Dimension: dim, Key: k}
		}
		chosen[k] = true
	}

	if len(chosen) == 0 {
		return NoConstraint[T](), nil
	}

	members := make([]T, 0, len(chosen))
	for _, o := range options {
		if chosen[keyOf(o)] {
			members = append(members, member(o))
		}
	}
	return OneOf(members...), nil
}

func isSelectAll(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	return k == SelectAll || k == "all"
}
