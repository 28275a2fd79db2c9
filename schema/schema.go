package schema

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrModelNotFound model not registered
	ErrModelNotFound = errors.New("model not found")
	// ErrInvalidRelationship relationship is missing the data its type requires
	ErrInvalidRelationship = errors.New("invalid relationship")
	// ErrRelationNotFound relationship not defined on the model
	ErrRelationNotFound = errors.New("relation not found")
)

// Schema describes a model: its table, keys and relationships
type Schema struct {
	Name       string
	Table      string
	PrimaryKey string
	// MorphClass is stored in polymorphic type columns, defaults to Name
	MorphClass string
	// DeletedAt is the soft delete column, empty when the model has none
	DeletedAt     string
	Relationships Relationships
	registry      *Registry
	namer         Namer
}

func (schema Schema) String() string {
	return schema.Name
}

// UsesSoftDeletes reports whether rows of the model are soft deleted
func (schema *Schema) UsesSoftDeletes() bool {
	return schema.DeletedAt != ""
}

// LookUpRelation returns the named relationship
func (schema *Schema) LookUpRelation(name string) (*Relationship, error) {
	if schema.registry != nil {
		schema.registry.mu.RLock()
		defer schema.registry.mu.RUnlock()
	}

	if rel, ok := schema.Relationships.Relations[name]; ok {
		return rel, nil
	}
	return nil, fmt.Errorf("%w: %s on %s", ErrRelationNotFound, name, schema.Name)
}

// RelationNames returns the relationship names in alphabetical order
func (schema *Schema) RelationNames() []string {
	if schema.registry != nil {
		schema.registry.mu.RLock()
		defer schema.registry.mu.RUnlock()
	}

	names := make([]string, 0, len(schema.Relationships.Relations))
	for name := range schema.Relationships.Relations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (schema *Schema) SetTable(table string) *Schema {
	schema.Table = table
	return schema
}

func (schema *Schema) SetPrimaryKey(key string) *Schema {
	schema.PrimaryKey = key
	return schema
}

func (schema *Schema) SetMorphClass(class string) *Schema {
	schema.MorphClass = class
	return schema
}

// SoftDeletes marks the model as soft deleted, on `deleted_at` unless a column is given
func (schema *Schema) SoftDeletes(column ...string) *Schema {
	schema.DeletedAt = "deleted_at"
	if len(column) > 0 && column[0] != "" {
		schema.DeletedAt = column[0]
	}
	return schema
}

// BelongsTo the foreign key lives on this model, e.g. posts.category_id
func (schema *Schema) BelongsTo(name, related string) *Relationship {
	return schema.addRelation(&Relationship{
		Name:       name,
		Type:       BelongsTo,
		Related:    related,
		ForeignKey: toDBName(name) + "_id",
	})
}

// HasOne the foreign key lives on the related model
func (schema *Schema) HasOne(name, related string) *Relationship {
	return schema.addRelation(&Relationship{
		Name:       name,
		Type:       HasOne,
		Related:    related,
		ForeignKey: schema.namer.ForeignKey(schema.Name),
	})
}

// HasMany the foreign key lives on the related model
func (schema *Schema) HasMany(name, related string) *Relationship {
	rel := schema.HasOne(name, related)
	rel.Type = HasMany
	return rel
}

// HasOneThrough reaches a single related row through an intermediate model
func (schema *Schema) HasOneThrough(name, related, through string) *Relationship {
	return schema.addRelation(&Relationship{
		Name:    name,
		Type:    HasOneThrough,
		Related: related,
		Through: &Through{
			Model:     through,
			FirstKey:  schema.namer.ForeignKey(schema.Name),
			SecondKey: schema.namer.ForeignKey(through),
		},
	})
}

// HasManyThrough reaches related rows through an intermediate model
func (schema *Schema) HasManyThrough(name, related, through string) *Relationship {
	rel := schema.HasOneThrough(name, related, through)
	rel.Type = HasManyThrough
	return rel
}

// BelongsToMany many to many through a pivot table
func (schema *Schema) BelongsToMany(name, related string) *Relationship {
	return schema.addRelation(&Relationship{
		Name:    name,
		Type:    BelongsToMany,
		Related: related,
		Pivot: &Pivot{
			Table:           schema.namer.JoinTableName(schema.Name, related),
			ForeignPivotKey: schema.namer.ForeignKey(schema.Name),
			RelatedPivotKey: schema.namer.ForeignKey(related),
		},
	})
}

// MorphToMany polymorphic many to many, this model is the morphed side of the pivot
func (schema *Schema) MorphToMany(name, related, morphName string) *Relationship {
	typeColumn, idColumn := schema.namer.MorphColumns(morphName)
	return schema.addRelation(&Relationship{
		Name:    name,
		Type:    MorphToMany,
		Related: related,
		Pivot: &Pivot{
			Table:           schema.namer.MorphTableName(morphName),
			ForeignPivotKey: idColumn,
			RelatedPivotKey: schema.namer.ForeignKey(related),
			MorphType:       typeColumn,
		},
	})
}

// MorphedByMany inverse of MorphToMany, the related model is the morphed side
func (schema *Schema) MorphedByMany(name, related, morphName string) *Relationship {
	typeColumn, idColumn := schema.namer.MorphColumns(morphName)
	return schema.addRelation(&Relationship{
		Name:    name,
		Type:    MorphedByMany,
		Related: related,
		Pivot: &Pivot{
			Table:           schema.namer.MorphTableName(morphName),
			ForeignPivotKey: schema.namer.ForeignKey(schema.Name),
			RelatedPivotKey: idColumn,
			MorphType:       typeColumn,
		},
	})
}

// MorphTo the related model is chosen per row by the type column
func (schema *Schema) MorphTo(name string) *Relationship {
	typeColumn, idColumn := schema.namer.MorphColumns(name)
	return schema.addRelation(&Relationship{
		Name:        name,
		Type:        MorphTo,
		Polymorphic: &Polymorphic{TypeColumn: typeColumn, IDColumn: idColumn},
	})
}

// MorphOne the related model points back at this model through morphName columns
func (schema *Schema) MorphOne(name, related, morphName string) *Relationship {
	typeColumn, idColumn := schema.namer.MorphColumns(morphName)
	return schema.addRelation(&Relationship{
		Name:        name,
		Type:        MorphOne,
		Related:     related,
		Polymorphic: &Polymorphic{TypeColumn: typeColumn, IDColumn: idColumn},
	})
}

// MorphMany the related models point back at this model through morphName columns
func (schema *Schema) MorphMany(name, related, morphName string) *Relationship {
	rel := schema.MorphOne(name, related, morphName)
	rel.Type = MorphMany
	return rel
}

// AddRelation registers a fully described relationship
func (schema *Schema) AddRelation(rel *Relationship) (*Relationship, error) {
	if err := rel.Validate(); err != nil {
		return nil, err
	}
	return schema.addRelation(rel), nil
}

func (schema *Schema) addRelation(rel *Relationship) *Relationship {
	rel.Schema = schema

	if schema.registry != nil {
		schema.registry.mu.Lock()
		defer schema.registry.mu.Unlock()
	}
	schema.Relationships.Relations[rel.Name] = rel
	return rel
}

func (schema *Schema) lookup(name string) (*Schema, error) {
	if schema.registry == nil {
		return nil, fmt.Errorf("%w: %s, %s is not registered", ErrModelNotFound, name, schema.Name)
	}
	return schema.registry.Lookup(name)
}

// Registry holds the schemas of all models
type Registry struct {
	namer   Namer
	mu      sync.RWMutex
	schemas map[string]*Schema
}

// NewRegistry returns an empty registry, naming defaults come from namer
func NewRegistry(namer Namer) *Registry {
	if namer == nil {
		namer = NamingStrategy{}
	}
	return &Registry{namer: namer, schemas: map[string]*Schema{}}
}

// Model returns the schema registered as name, creating it with default
// table, primary key and morph class when missing
func (r *Registry) Model(name string) *Schema {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.schemas[name]; ok {
		return s
	}

	s := &Schema{
		Name:          name,
		Table:         r.namer.TableName(name),
		PrimaryKey:    "id",
		MorphClass:    name,
		Relationships: Relationships{Relations: map[string]*Relationship{}},
		registry:      r,
		namer:         r.namer,
	}
	r.schemas[name] = s
	return s
}

// Lookup returns the schema registered as name
func (r *Registry) Lookup(name string) (*Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.schemas[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
}

// Names returns the registered model names in alphabetical order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks every registered relationship and that its models exist
func (r *Registry) Validate() error {
	var errs []error
	for _, name := range r.Names() {
		s, _ := r.Lookup(name)
		for _, relName := range s.RelationNames() {
			rel, _ := s.LookUpRelation(relName)
			if err := rel.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
				continue
			}

			if rel.Type != MorphTo {
				if _, err := r.Lookup(rel.Related); err != nil {
					errs = append(errs, fmt.Errorf("%s.%s: %w", s.Name, rel.Name, err))
				}
			}
			if rel.Through != nil {
				if _, err := r.Lookup(rel.Through.Model); err != nil {
					errs = append(errs, fmt.Errorf("%s.%s: %w", s.Name, rel.Name, err))
				}
			}
		}
	}
	return errors.Join(errs...)
}

// SortPair orders by column of the model reached through the relationship Path
type SortPair struct {
	Path   string
	Column string
}
