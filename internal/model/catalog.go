package model

import "time"

// DefaultMaxScore is the top of the 0-4 Likert scale used by most questions
const DefaultMaxScore = 4

// Category groups questions in the catalog
type Category struct {
	ID          string    `json:"id" bson:"_id" yaml:"id" validate:"required"`
	Name        string    `json:"name" bson:"name" yaml:"name" validate:"required"`
	Description string    `json:"description" bson:"description" yaml:"description"`
	Weight      float64   `json:"weight,omitempty" bson:"weight,omitempty" yaml:"weight,omitempty" validate:"gte=0"` // Informational, overall score sums raw points
	Ordinal     int       `json:"ordinal" bson:"ordinal" yaml:"ordinal"`
	Retired     bool      `json:"-" bson:"retired,omitempty" yaml:"-"` // dropped by a later seed
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt" yaml:"-"`
}

// Question is a single catalog entry
type Question struct {
	ID                  string    `json:"id" bson:"_id" yaml:"id" validate:"required"`
	Text                string    `json:"text" bson:"text" yaml:"text" validate:"required"`
	CategoryID          string    `json:"categoryId" bson:"categoryId" yaml:"categoryId" validate:"required"`
	CategoryName        string    `json:"categoryName" bson:"categoryName" yaml:"categoryName"`
	CategoryDescription string    `json:"categoryDescription,omitempty" bson:"categoryDescription,omitempty" yaml:"categoryDescription,omitempty"`
	MaxScore            int       `json:"maxScore" bson:"maxScore" yaml:"maxScore" validate:"gte=0"`
	Options             []string  `json:"options,omitempty" bson:"options,omitempty" yaml:"options,omitempty"` // options[value] is the response label
	HelpText            string    `json:"helpText,omitempty" bson:"helpText,omitempty" yaml:"helpText,omitempty"`
	Ordinal             int       `json:"ordinal" bson:"ordinal" yaml:"ordinal"`
	Active              bool      `json:"active" bson:"active" yaml:"active"`
	UpdatedAt           time.Time `json:"updatedAt" bson:"updatedAt" yaml:"-"`
}

// Catalog is the ordered question set for one assessment
type Catalog struct {
	Categories []Category `json:"categories" yaml:"categories" validate:"required,dive"`
	Questions  []Question `json:"questions" yaml:"questions" validate:"dive"`
}

// Question looks up a question by id
func (c *Catalog) Question(id string) (*Question, bool) {
	for i := range c.Questions {
		if c.Questions[i].ID == id {
			return &c.Questions[i], true
		}
	}
	return nil, false
}

// CategoryNames returns category names in catalog order. Categories that
// only appear on questions (no Category row) are appended in question order.
func (c *Catalog) CategoryNames() []string {
	seen := make(map[string]bool)
	names := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		if !seen[cat.Name] {
			seen[cat.Name] = true
			names = append(names, cat.Name)
		}
	}
	for _, q := range c.Questions {
		if q.CategoryName != "" && !seen[q.CategoryName] {
			seen[q.CategoryName] = true
			names = append(names, q.CategoryName)
		}
	}
	return names
}

// Resolve fills denormalized category fields on each question from the
// category list and defaults MaxScore
func (c *Catalog) Resolve() {
	byID := make(map[string]Category, len(c.Categories))
	for _, cat := range c.Categories {
		byID[cat.ID] = cat
	}
	for i := range c.Questions {
		q := &c.Questions[i]
		if cat, ok := byID[q.CategoryID]; ok {
			if q.CategoryName == "" {
				q.CategoryName = cat.Name
			}
			if q.CategoryDescription == "" {
				q.CategoryDescription = cat.Description
			}
		}
		if q.MaxScore == 0 {
			if len(q.Options) > 1 {
				q.MaxScore = len(q.Options) - 1
			} else {
				q.MaxScore = DefaultMaxScore
			}
		}
	}
}
