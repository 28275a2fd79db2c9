package powerjoins

import (
	"errors"

	"github.com/kirschbaum-development/powerjoins/schema"
)

var (
	// ErrModelValueRequired model value required
	ErrModelValueRequired = errors.New("model value required")
	// ErrRelationNotFound relationship not defined on the model
	ErrRelationNotFound = schema.ErrRelationNotFound
	// ErrScopeNotFound a join fragment was asked to call a scope its model does not define
	ErrScopeNotFound = errors.New("scope not found")
	// ErrMorphableRequired morph_to joins need the concrete model to join
	ErrMorphableRequired = errors.New("morphable model required")
	// ErrInvalidAggregation unsupported aggregate function
	ErrInvalidAggregation = errors.New("invalid aggregation")
	// ErrInvalidDirection order direction must be asc or desc
	ErrInvalidDirection = errors.New("invalid order direction")
	// ErrInvalidOperator unsupported comparison operator or boolean
	ErrInvalidOperator = errors.New("invalid operator")
	// ErrInvalidDialector dialector is missing
	ErrInvalidDialector = errors.New("invalid dialector")
)
