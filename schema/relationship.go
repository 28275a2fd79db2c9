package schema

import (
	"fmt"
	"strings"

	"github.com/kirschbaum-development/powerjoins/clause"
)

// RelationshipType relationship type
type RelationshipType string

const (
	BelongsTo      RelationshipType = "belongs_to"
	HasOne         RelationshipType = "has_one"
	HasMany        RelationshipType = "has_many"
	HasOneThrough  RelationshipType = "has_one_through"
	HasManyThrough RelationshipType = "has_many_through"
	BelongsToMany  RelationshipType = "belongs_to_many"
	MorphToMany    RelationshipType = "morph_to_many"
	MorphedByMany  RelationshipType = "morphed_by_many"
	MorphTo        RelationshipType = "morph_to"
	MorphOne       RelationshipType = "morph_one"
	MorphMany      RelationshipType = "morph_many"
)

// RelationshipTypes lists every supported relationship type
var RelationshipTypes = []RelationshipType{
	BelongsTo, HasOne, HasMany, HasOneThrough, HasManyThrough,
	BelongsToMany, MorphToMany, MorphedByMany, MorphTo, MorphOne, MorphMany,
}

// JoinsTwoTables reports whether the relationship is reached through an
// intermediate pivot or through table
func (t RelationshipType) JoinsTwoTables() bool {
	switch t {
	case HasOneThrough, HasManyThrough, BelongsToMany, MorphToMany, MorphedByMany:
		return true
	}
	return false
}

type Relationships struct {
	Relations map[string]*Relationship
}

// Relationship describes how Schema reaches Related. Empty key fields fall
// back to the primary key of the model they belong to.
type Relationship struct {
	Name    string
	Type    RelationshipType
	Schema  *Schema
	Related string

	// belongs_to: foreign key on the parent, owner key on the related model.
	// has_one / has_many: foreign key on the related model, local key on the parent.
	ForeignKey string
	LocalKey   string
	OwnerKey   string

	Pivot       *Pivot
	Polymorphic *Polymorphic
	Through     *Through
	OneOfMany   *OneOfMany

	// Conditions are the default constraints declared with the relationship
	Conditions  []clause.Expression
	WithTrashed bool
}

// Pivot intermediate table of a many to many relation
type Pivot struct {
	Table           string `json:"table,omitempty"`
	ForeignPivotKey string `json:"foreignPivotKey,omitempty"`
	RelatedPivotKey string `json:"relatedPivotKey,omitempty"`
	ParentKey       string `json:"parentKey,omitempty"`
	RelatedKey      string `json:"relatedKey,omitempty"`
	// MorphType is set for morph_to_many / morphed_by_many pivots, narrowed to MorphClass
	MorphType  string `json:"morphType,omitempty"`
	MorphClass string `json:"morphClass,omitempty"`
}

// Polymorphic columns of a morph relation
type Polymorphic struct {
	TypeColumn string `json:"typeColumn,omitempty"`
	IDColumn   string `json:"idColumn,omitempty"`
	MorphClass string `json:"morphClass,omitempty"`
}

// Through intermediate model of a has_*_through relation
type Through struct {
	Model          string `json:"model"`
	FirstKey       string `json:"firstKey,omitempty"`
	SecondKey      string `json:"secondKey,omitempty"`
	LocalKey       string `json:"localKey,omitempty"`
	SecondLocalKey string `json:"secondLocalKey,omitempty"`
}

// OneOfMany narrows a has_one relation to the row holding the aggregated column
type OneOfMany struct {
	Column    string `json:"column,omitempty"`
	Aggregate string `json:"aggregate,omitempty"`
}

// Validate checks the relationship carries the payload its type requires
func (rel *Relationship) Validate() error {
	if rel.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidRelationship)
	}

	if rel.Type != MorphTo && rel.Related == "" {
		return fmt.Errorf("%w: %s has no related model", ErrInvalidRelationship, rel.Name)
	}

	switch rel.Type {
	case BelongsTo, HasOne, HasMany:
		if rel.ForeignKey == "" {
			return fmt.Errorf("%w: %s has no foreign key", ErrInvalidRelationship, rel.Name)
		}
	case HasOneThrough, HasManyThrough:
		if rel.Through == nil || rel.Through.Model == "" || rel.Through.FirstKey == "" || rel.Through.SecondKey == "" {
			return fmt.Errorf("%w: %s needs a through model with first and second keys", ErrInvalidRelationship, rel.Name)
		}
	case BelongsToMany:
		if rel.Pivot == nil || rel.Pivot.Table == "" || rel.Pivot.ForeignPivotKey == "" || rel.Pivot.RelatedPivotKey == "" {
			return fmt.Errorf("%w: %s needs a pivot table with both pivot keys", ErrInvalidRelationship, rel.Name)
		}
	case MorphToMany, MorphedByMany:
		if rel.Pivot == nil || rel.Pivot.Table == "" || rel.Pivot.ForeignPivotKey == "" || rel.Pivot.RelatedPivotKey == "" || rel.Pivot.MorphType == "" {
			return fmt.Errorf("%w: %s needs a morph pivot table", ErrInvalidRelationship, rel.Name)
		}
	case MorphTo, MorphOne, MorphMany:
		if rel.Polymorphic == nil || rel.Polymorphic.TypeColumn == "" || rel.Polymorphic.IDColumn == "" {
			return fmt.Errorf("%w: %s needs polymorphic type and id columns", ErrInvalidRelationship, rel.Name)
		}
	default:
		return fmt.Errorf("%w: %s has unknown type %q", ErrInvalidRelationship, rel.Name, rel.Type)
	}

	if rel.OneOfMany != nil {
		if rel.Type != HasOne {
			return fmt.Errorf("%w: %s: one of many only applies to has_one", ErrInvalidRelationship, rel.Name)
		}
		if rel.OneOfMany.Column == "" {
			return fmt.Errorf("%w: %s: one of many needs a column", ErrInvalidRelationship, rel.Name)
		}
		switch strings.ToUpper(rel.OneOfMany.Aggregate) {
		case "MAX", "MIN":
		default:
			return fmt.Errorf("%w: %s: unsupported one of many aggregate %q", ErrInvalidRelationship, rel.Name, rel.OneOfMany.Aggregate)
		}
	}
	return nil
}

// RelatedSchema resolves the related model through the owner's registry
func (rel *Relationship) RelatedSchema() (*Schema, error) {
	if rel.Type == MorphTo {
		return nil, fmt.Errorf("%w: %s is polymorphic, its related model is chosen per query", ErrInvalidRelationship, rel.Name)
	}
	return rel.Schema.lookup(rel.Related)
}

// ThroughSchema resolves the intermediate model of a has_*_through relation
func (rel *Relationship) ThroughSchema() (*Schema, error) {
	if rel.Through == nil {
		return nil, fmt.Errorf("%w: %s has no through model", ErrInvalidRelationship, rel.Name)
	}
	return rel.Schema.lookup(rel.Through.Model)
}

// ExistenceKeys returns the qualified columns that express the relationship's
// own join condition. Default conditions on these columns are never replayed.
func (rel *Relationship) ExistenceKeys(parent, related *Schema) []clause.Column {
	switch rel.Type {
	case MorphTo:
		return []clause.Column{
			{Table: parent.Table, Name: rel.Polymorphic.TypeColumn},
			{Table: parent.Table, Name: rel.Polymorphic.IDColumn},
		}
	case BelongsTo:
		return []clause.Column{{Table: related.Table, Name: orDefault(rel.OwnerKey, related.PrimaryKey)}}
	case HasOne, HasMany:
		return []clause.Column{{Table: related.Table, Name: rel.ForeignKey}}
	case HasOneThrough, HasManyThrough:
		if through, err := rel.ThroughSchema(); err == nil {
			return []clause.Column{{Table: through.Table, Name: rel.Through.FirstKey}}
		}
	case BelongsToMany, MorphToMany, MorphedByMany:
		return []clause.Column{{Table: rel.Pivot.Table, Name: rel.Pivot.ForeignPivotKey}}
	case MorphOne, MorphMany:
		return []clause.Column{
			{Table: related.Table, Name: rel.Polymorphic.TypeColumn},
			{Table: related.Table, Name: rel.Polymorphic.IDColumn},
		}
	}
	return nil
}

// Where adds a default condition, `Where("published", true)` or
// `Where("votes", ">", 10)`
func (rel *Relationship) Where(column string, args ...interface{}) *Relationship {
	switch len(args) {
	case 0:
		rel.Conditions = append(rel.Conditions, clause.Expr{SQL: column})
	case 1:
		rel.Conditions = append(rel.Conditions, clause.Eq{Column: clause.ParseColumn(column), Value: args[0]})
	default:
		operator, _ := args[0].(string)
		rel.Conditions = append(rel.Conditions, clause.Comparison(clause.ParseColumn(column), operator, args[1]))
	}
	return rel
}

// WhereNull adds a default `column IS NULL` condition
func (rel *Relationship) WhereNull(column string) *Relationship {
	rel.Conditions = append(rel.Conditions, clause.Eq{Column: clause.ParseColumn(column)})
	return rel
}

// WhereNotNull adds a default `column IS NOT NULL` condition
func (rel *Relationship) WhereNotNull(column string) *Relationship {
	rel.Conditions = append(rel.Conditions, clause.Neq{Column: clause.ParseColumn(column)})
	return rel
}

// WhereIn adds a default IN condition. IN conditions are kept on the
// relationship but never replayed onto joins.
func (rel *Relationship) WhereIn(column string, values ...interface{}) *Relationship {
	rel.Conditions = append(rel.Conditions, clause.IN{Column: clause.ParseColumn(column), Values: values})
	return rel
}

// Clauses adds arbitrary default conditions
func (rel *Relationship) Clauses(exprs ...clause.Expression) *Relationship {
	rel.Conditions = append(rel.Conditions, exprs...)
	return rel
}

// IncludeTrashed makes joins of this relationship skip the soft delete check
func (rel *Relationship) IncludeTrashed() *Relationship {
	rel.WithTrashed = true
	return rel
}

func (rel *Relationship) WithForeignKey(key string) *Relationship {
	rel.ForeignKey = key
	return rel
}

func (rel *Relationship) WithLocalKey(key string) *Relationship {
	rel.LocalKey = key
	return rel
}

func (rel *Relationship) WithOwnerKey(key string) *Relationship {
	rel.OwnerKey = key
	return rel
}

// WithPivot overrides the pivot table and its keys. Empty values keep the defaults.
func (rel *Relationship) WithPivot(table, foreignPivotKey, relatedPivotKey string) *Relationship {
	if rel.Pivot == nil {
		rel.Pivot = &Pivot{}
	}
	rel.Pivot.Table = orDefault(table, rel.Pivot.Table)
	rel.Pivot.ForeignPivotKey = orDefault(foreignPivotKey, rel.Pivot.ForeignPivotKey)
	rel.Pivot.RelatedPivotKey = orDefault(relatedPivotKey, rel.Pivot.RelatedPivotKey)
	return rel
}

// WithThroughKeys overrides the keys of a has_*_through relation. Empty
// values keep the defaults.
func (rel *Relationship) WithThroughKeys(firstKey, secondKey, localKey, secondLocalKey string) *Relationship {
	if rel.Through == nil {
		rel.Through = &Through{}
	}
	rel.Through.FirstKey = orDefault(firstKey, rel.Through.FirstKey)
	rel.Through.SecondKey = orDefault(secondKey, rel.Through.SecondKey)
	rel.Through.LocalKey = orDefault(localKey, rel.Through.LocalKey)
	rel.Through.SecondLocalKey = orDefault(secondLocalKey, rel.Through.SecondLocalKey)
	return rel
}

// LatestOfMany narrows a has_one relation to the row with the greatest column
func (rel *Relationship) LatestOfMany(column string) *Relationship {
	return rel.OfMany(column, "MAX")
}

// OldestOfMany narrows a has_one relation to the row with the smallest column
func (rel *Relationship) OldestOfMany(column string) *Relationship {
	return rel.OfMany(column, "MIN")
}

func (rel *Relationship) OfMany(column, aggregate string) *Relationship {
	if column == "" {
		if related, err := rel.RelatedSchema(); err == nil {
			column = related.PrimaryKey
		}
	}
	rel.OneOfMany = &OneOfMany{Column: column, Aggregate: strings.ToUpper(aggregate)}
	return rel
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
