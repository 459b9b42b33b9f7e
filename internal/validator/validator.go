package validator

// =============================================================================
// CRASH EARLY, CRASH LOUD
// =============================================================================
//
// The CUE schemas are the contract between the scanner and whatever consumes
// its output. A summary that does not match is a scanner bug: fix the
// recognizer or the schema, never suppress the error.
// =============================================================================

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaFS embed.FS

//go:embed facts_schema.cue
var factsSchemaFS embed.FS

// Validator validates per-file summaries against the #Summary definition.
// It is safe for concurrent use.
type Validator struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
	def    cue.Value
}

// New creates a new Validator with the embedded CUE schema
func New() (*Validator, error) {
	ctx, schema, err := compileSchema(schemaFS, "schema.cue")
	if err != nil {
		return nil, err
	}
	def := schema.LookupPath(cue.ParsePath("#Summary"))
	if def.Err() != nil {
		return nil, fmt.Errorf("looking up #Summary definition: %w", def.Err())
	}
	return &Validator{ctx: ctx, schema: schema, def: def}, nil
}

// Validate checks that data conforms to #Summary.
// Returns nil if valid, or a detailed error explaining what failed.
func (v *Validator) Validate(data interface{}) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling data to JSON: %w", err)
	}
	return v.ValidateJSON(jsonBytes)
}

// ValidateJSON validates JSON bytes directly against the schema
func (v *Validator) ValidateJSON(jsonBytes []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := unify(v.ctx, v.def, jsonBytes); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// ValidationErrors returns detailed information about all validation errors
func (v *Validator) ValidationErrors(data interface{}) []string {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return []string{fmt.Sprintf("marshal error: %v", err)}
	}

	v.mu.Lock()
	err = unify(v.ctx, v.def, jsonBytes)
	v.mu.Unlock()
	if err == nil {
		return nil
	}

	var errs []string
	for _, e := range errors.Errors(err) {
		errs = append(errs, e.Error())
	}
	return errs
}

// FactsValidator validates relational fact tables against the facts schema.
type FactsValidator struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
	def    cue.Value
}

// NewFactsValidator creates a validator for relational fact tables.
func NewFactsValidator() (*FactsValidator, error) {
	ctx, schema, err := compileSchema(factsSchemaFS, "facts_schema.cue")
	if err != nil {
		return nil, err
	}
	def := schema.LookupPath(cue.ParsePath("#FactTables"))
	if def.Err() != nil {
		return nil, fmt.Errorf("looking up #FactTables definition: %w", def.Err())
	}
	return &FactsValidator{ctx: ctx, schema: schema, def: def}, nil
}

// Validate checks that the fact tables conform to the facts schema.
func (v *FactsValidator) Validate(data interface{}) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling facts to JSON: %w", err)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := unify(v.ctx, v.def, jsonBytes); err != nil {
		return fmt.Errorf("facts schema validation failed: %w", err)
	}
	return nil
}

func compileSchema(fsys embed.FS, name string) (*cue.Context, cue.Value, error) {
	ctx := cuecontext.New()

	schemaBytes, err := fsys.ReadFile(name)
	if err != nil {
		return nil, cue.Value{}, fmt.Errorf("loading embedded schema %s: %w", name, err)
	}

	schema := ctx.CompileBytes(schemaBytes)
	if schema.Err() != nil {
		return nil, cue.Value{}, fmt.Errorf("compiling schema %s: %w", name, schema.Err())
	}
	return ctx, schema, nil
}

func unify(ctx *cue.Context, def cue.Value, jsonBytes []byte) error {
	dataValue := ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return fmt.Errorf("compiling data as CUE: %w", dataValue.Err())
	}
	return def.Unify(dataValue).Validate(cue.Concrete(true))
}
