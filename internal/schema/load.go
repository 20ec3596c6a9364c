package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/luxql/internal/qerr"
)

//go:embed default_schema.json
var defaultSchemaJSON []byte

var (
	defaultOnce   sync.Once
	defaultSchema *Schema
)

// Default returns the embedded schema covering the agent, concept, event,
// item, place, set and work scopes. The value is built on first use and
// shared afterwards.
func Default() *Schema {
	defaultOnce.Do(func() {
		s, err := LoadJSON(defaultSchemaJSON)
		if err != nil {
			panic(fmt.Sprintf("embedded schema: %v", err))
		}
		defaultSchema = s
	})
	return defaultSchema
}

// LoadError is a schema source error carrying a CUE source position when
// one is available. It classifies as qerr.ErrSchema.
type LoadError struct {
	Path    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// Unwrap lets errors.Is(err, qerr.ErrSchema) match load failures.
func (e *LoadError) Unwrap() error {
	return qerr.ErrSchema
}

// LoadFile reads a schema from path. The format is chosen by extension:
// .json, .yaml/.yml or .cue.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: fmt.Sprintf("reading schema: %v", err)}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadNamed(path, data, LoadJSON)
	case ".yaml", ".yml":
		return loadNamed(path, data, LoadYAML)
	case ".cue":
		return LoadCUE(path, data)
	default:
		return nil, &LoadError{Path: path, Message: "unsupported schema format (want .json, .yaml, .yml or .cue)"}
	}
}

func loadNamed(path string, data []byte, load func([]byte) (*Schema, error)) (*Schema, error) {
	s, err := load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// LoadJSON decodes a JSON schema document and loads it.
func LoadJSON(data []byte) (*Schema, error) {
	var raw Raw
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("decoding JSON schema: %v", err)}
	}
	return Load(raw)
}

// LoadYAML decodes a YAML schema document and loads it.
func LoadYAML(data []byte) (*Schema, error) {
	var raw Raw
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("decoding YAML schema: %v", err)}
	}
	return Load(raw)
}

// LoadCUE compiles a CUE schema document and loads it. The document's
// top-level fields mirror the JSON form (terms, options, comparators,
// dateFormat); CUE constraints and references are evaluated first, so a
// schema can share field definitions between scopes.
func LoadCUE(filename string, data []byte) (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(filename, err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(filename, err)
	}

	var raw Raw
	if err := v.Decode(&raw); err != nil {
		return nil, formatCUEError(filename, err)
	}
	return Load(raw)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(filename string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Path: filename, Message: err.Error()}
	}

	first := errs[0]
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		return &LoadError{Path: filename, Message: first.Error(), Pos: positions[0]}
	}
	return &LoadError{Path: filename, Message: first.Error()}
}
