package schema

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/kirschbaum-development/powerjoins/clause"
)

// Definitions model definitions as read from a YAML or JSON document
type Definitions struct {
	Models []ModelDefinition `json:"models"`
}

type ModelDefinition struct {
	Name        string                   `json:"name"`
	Table       string                   `json:"table,omitempty"`
	PrimaryKey  string                   `json:"primaryKey,omitempty"`
	MorphClass  string                   `json:"morphClass,omitempty"`
	SoftDeletes string                   `json:"softDeletes,omitempty"`
	Relations   []RelationshipDefinition `json:"relations,omitempty"`
}

type RelationshipDefinition struct {
	Name        string                `json:"name"`
	Type        RelationshipType      `json:"type"`
	Model       string                `json:"model,omitempty"`
	MorphName   string                `json:"morphName,omitempty"`
	ForeignKey  string                `json:"foreignKey,omitempty"`
	LocalKey    string                `json:"localKey,omitempty"`
	OwnerKey    string                `json:"ownerKey,omitempty"`
	Pivot       *Pivot                `json:"pivot,omitempty"`
	Through     *Through              `json:"through,omitempty"`
	OfMany      *OneOfMany            `json:"ofMany,omitempty"`
	Where       []ConditionDefinition `json:"where,omitempty"`
	WithTrashed bool                  `json:"withTrashed,omitempty"`
}

// ConditionDefinition a default relationship condition. A nil value with `=`
// or `<>` means IS NULL / IS NOT NULL.
type ConditionDefinition struct {
	Column   string      `json:"column"`
	Operator string      `json:"operator,omitempty"`
	Value    interface{} `json:"value,omitempty"`
}

func (c ConditionDefinition) expression() clause.Expression {
	operator := c.Operator
	if operator == "" {
		operator = "="
	}
	return clause.Comparison(clause.ParseColumn(c.Column), operator, c.Value)
}

// LoadDefinitions reads definitions from a YAML (or JSON) file
func LoadDefinitions(path string) (*Definitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model definitions: %w", err)
	}
	return ParseDefinitions(data)
}

func ParseDefinitions(data []byte) (*Definitions, error) {
	var defs Definitions
	if err := yaml.UnmarshalStrict(data, &defs); err != nil {
		return nil, fmt.Errorf("failed to parse model definitions: %w", err)
	}
	return &defs, nil
}

// Register adds every defined model to the registry, then validates the
// resulting graph
func (defs *Definitions) Register(r *Registry) error {
	for _, m := range defs.Models {
		if m.Name == "" {
			return fmt.Errorf("%w: model without name", ErrInvalidRelationship)
		}

		s := r.Model(m.Name)
		if m.Table != "" {
			s.SetTable(m.Table)
		}
		if m.PrimaryKey != "" {
			s.SetPrimaryKey(m.PrimaryKey)
		}
		if m.MorphClass != "" {
			s.SetMorphClass(m.MorphClass)
		}
		if m.SoftDeletes != "" {
			s.SoftDeletes(m.SoftDeletes)
		}
	}

	for _, m := range defs.Models {
		s := r.Model(m.Name)
		for _, d := range m.Relations {
			if err := d.register(s); err != nil {
				return fmt.Errorf("%s.%s: %w", m.Name, d.Name, err)
			}
		}
	}

	return r.Validate()
}

func (d RelationshipDefinition) register(s *Schema) error {
	var rel *Relationship
	switch d.Type {
	case BelongsTo:
		rel = s.BelongsTo(d.Name, d.Model)
	case HasOne:
		rel = s.HasOne(d.Name, d.Model)
	case HasMany:
		rel = s.HasMany(d.Name, d.Model)
	case HasOneThrough, HasManyThrough:
		if d.Through == nil {
			return fmt.Errorf("%w: missing through", ErrInvalidRelationship)
		}
		if d.Type == HasOneThrough {
			rel = s.HasOneThrough(d.Name, d.Model, d.Through.Model)
		} else {
			rel = s.HasManyThrough(d.Name, d.Model, d.Through.Model)
		}
		rel.WithThroughKeys(d.Through.FirstKey, d.Through.SecondKey, d.Through.LocalKey, d.Through.SecondLocalKey)
	case BelongsToMany:
		rel = s.BelongsToMany(d.Name, d.Model)
	case MorphToMany:
		rel = s.MorphToMany(d.Name, d.Model, d.MorphName)
	case MorphedByMany:
		rel = s.MorphedByMany(d.Name, d.Model, d.MorphName)
	case MorphTo:
		rel = s.MorphTo(d.Name)
	case MorphOne:
		rel = s.MorphOne(d.Name, d.Model, d.MorphName)
	case MorphMany:
		rel = s.MorphMany(d.Name, d.Model, d.MorphName)
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidRelationship, d.Type)
	}

	if d.ForeignKey != "" {
		rel.WithForeignKey(d.ForeignKey)
	}
	if d.LocalKey != "" {
		rel.WithLocalKey(d.LocalKey)
	}
	if d.OwnerKey != "" {
		rel.WithOwnerKey(d.OwnerKey)
	}
	if p := d.Pivot; p != nil {
		rel.WithPivot(p.Table, p.ForeignPivotKey, p.RelatedPivotKey)
		if rel.Pivot != nil {
			rel.Pivot.ParentKey = orDefault(p.ParentKey, rel.Pivot.ParentKey)
			rel.Pivot.RelatedKey = orDefault(p.RelatedKey, rel.Pivot.RelatedKey)
			rel.Pivot.MorphType = orDefault(p.MorphType, rel.Pivot.MorphType)
			rel.Pivot.MorphClass = orDefault(p.MorphClass, rel.Pivot.MorphClass)
		}
	}
	if d.OfMany != nil {
		rel.OfMany(d.OfMany.Column, orDefault(d.OfMany.Aggregate, "MAX"))
	}
	for _, c := range d.Where {
		rel.Clauses(c.expression())
	}
	if d.WithTrashed {
		rel.IncludeTrashed()
	}

	return rel.Validate()
}
