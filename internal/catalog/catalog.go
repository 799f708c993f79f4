// Package catalog loads and validates question catalogs from YAML.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"garmentscore/internal/model"
)

//go:embed garment.yaml
var garmentYAML []byte

// ErrEmptyCatalog is returned when a catalog has no active questions
var ErrEmptyCatalog = errors.New("catalog has no active questions")

var validate = validator.New()

// InvalidCatalogError lists every problem found in a catalog document
type InvalidCatalogError struct {
	Problems []string
}

func (e *InvalidCatalogError) Error() string {
	return "invalid catalog: " + strings.Join(e.Problems, "; ")
}

// Default returns the built-in garment manufacturing catalog
func Default() (*model.Catalog, error) {
	return Parse(garmentYAML)
}

// Load reads a YAML catalog from r
func Load(r io.Reader) (*model.Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes, validates and resolves a YAML catalog
func Parse(data []byte) (*model.Catalog, error) {
	var c model.Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := Validate(&c); err != nil {
		return nil, err
	}
	c.Resolve()
	sortByOrdinal(&c)
	return &c, nil
}

// Validate checks struct tags and cross references
func Validate(c *model.Catalog) error {
	var problems []string

	if err := validate.Struct(c); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return err
		}
		for _, fe := range ve {
			problems = append(problems, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
		}
	}

	categories := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if categories[cat.ID] {
			problems = append(problems, fmt.Sprintf("duplicate category %s", cat.ID))
		}
		categories[cat.ID] = true
	}

	questions := make(map[string]bool, len(c.Questions))
	active := 0
	for _, q := range c.Questions {
		if questions[q.ID] {
			problems = append(problems, fmt.Sprintf("duplicate question %s", q.ID))
		}
		questions[q.ID] = true
		if q.CategoryID != "" && !categories[q.CategoryID] {
			problems = append(problems, fmt.Sprintf("question %s references unknown category %s", q.ID, q.CategoryID))
		}
		if q.MaxScore > 0 && len(q.Options) > 0 && len(q.Options) != q.MaxScore+1 {
			problems = append(problems, fmt.Sprintf("question %s has %d options for max score %d", q.ID, len(q.Options), q.MaxScore))
		}
		if q.Active {
			active++
		}
	}

	if len(problems) > 0 {
		return &InvalidCatalogError{Problems: problems}
	}
	if active == 0 {
		return ErrEmptyCatalog
	}
	return nil
}

// ActiveOnly drops inactive questions, keeping order
func ActiveOnly(c *model.Catalog) *model.Catalog {
	out := &model.Catalog{Categories: c.Categories, Questions: make([]model.Question, 0, len(c.Questions))}
	for _, q := range c.Questions {
		if q.Active {
			out.Questions = append(out.Questions, q)
		}
	}
	return out
}

func sortByOrdinal(c *model.Catalog) {
	sort.SliceStable(c.Categories, func(i, j int) bool { return c.Categories[i].Ordinal < c.Categories[j].Ordinal })
	sort.SliceStable(c.Questions, func(i, j int) bool { return c.Questions[i].Ordinal < c.Questions[j].Ordinal })
}
