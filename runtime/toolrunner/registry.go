// Package toolrunner defines the in-core ToolRegistry/ToolRunner contracts
// consumed by the Executor and Tools nodes, grounded on the teacher's
// registry.Service (tool schema validation) and features/model/middleware's
// rate-limiting wrapper, simplified to this module's narrower "dispatch one
// call" boundary.
package toolrunner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrToolNotRegistered is returned by Get/Allowed for an unknown tool name.
var ErrToolNotRegistered = errors.New("toolrunner: tool not registered")

// ToolSpec is a registered tool's name and JSON Schema for its arguments,
// mirroring the teacher's ToolSchema (payload schema only — this module has
// no result/sidecar schema concept, spec.md §6).
type ToolSpec struct {
	Name   string
	Schema []byte // raw JSON Schema document
}

// Registry implements register/list/get/allowed over an in-memory map, built
// once at engine warmup and read concurrently thereafter (spec.md §6).
type Registry struct {
	mu      sync.RWMutex
	specs   map[string]ToolSpec
	schemas map[string]*jsonschema.Schema
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		specs:   make(map[string]ToolSpec),
		schemas: make(map[string]*jsonschema.Schema),
	}
}

// Register compiles spec.Schema and adds it under spec.Name, replacing any
// prior registration of the same name.
func (r *Registry) Register(spec ToolSpec) error {
	if spec.Name == "" {
		return errors.New("toolrunner: tool spec name is required")
	}

	var compiled *jsonschema.Schema
	if len(spec.Schema) > 0 {
		var schemaDoc any
		if err := json.Unmarshal(spec.Schema, &schemaDoc); err != nil {
			return fmt.Errorf("toolrunner: unmarshal schema for %q: %w", spec.Name, err)
		}
		c := jsonschema.NewCompiler()
		resourceURL := "tool://" + spec.Name
		if err := c.AddResource(resourceURL, schemaDoc); err != nil {
			return fmt.Errorf("toolrunner: add schema resource for %q: %w", spec.Name, err)
		}
		s, err := c.Compile(resourceURL)
		if err != nil {
			return fmt.Errorf("toolrunner: compile schema for %q: %w", spec.Name, err)
		}
		compiled = s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs[spec.Name] = spec
	r.schemas[spec.Name] = compiled
	return nil
}

// List returns the names of all registered tools.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	return names
}

// Get returns the spec registered under name, or false if none exists.
func (r *Registry) Get(name string) (ToolSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[name]
	return spec, ok
}

// Allowed reports whether name is a registered tool (Executor's proposal
// must satisfy this before RiskGate ever sees it, spec.md §6).
func (r *Registry) Allowed(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.specs[name]
	return ok
}

// ValidateArgs validates args against name's compiled JSON Schema. A tool
// registered without a schema always validates.
func (r *Registry) ValidateArgs(name string, args map[string]any) error {
	r.mu.RLock()
	schema, ok := r.schemas[name]
	_, registered := r.specs[name]
	r.mu.RUnlock()

	if !registered {
		return fmt.Errorf("%w: %q", ErrToolNotRegistered, name)
	}
	if schema == nil {
		return nil
	}
	if err := schema.Validate(toAnyMap(args)); err != nil {
		return fmt.Errorf("toolrunner: args for %q failed schema validation: %w", name, err)
	}
	return nil
}

func toAnyMap(args map[string]any) any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = v
	}
	return out
}

// Runner is the external tool-invocation boundary (spec.md §6): it executes
// a registered tool by name and returns its raw outcome. Implementations are
// trusted to execute only names that satisfy Registry.Allowed.
type Runner interface {
	Call(ctx context.Context, name string, args map[string]any) (Outcome, error)
}

// Outcome is the raw result of a tool invocation before it is wrapped into a
// graph.ToolResult by the Tools node.
type Outcome struct {
	OK     bool
	Output string
	Error  string
}
