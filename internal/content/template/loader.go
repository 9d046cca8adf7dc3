package template

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/invopop/jsonschema"
	schemav5 "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/folio/internal/shared/infrastructure/security"
)

//go:embed defaults.yaml
var defaultConfig []byte

const schemaURL = "folio://schemas/templates.json"

var (
	schemaOnce     sync.Once
	compiledSchema *schemav5.Schema
	schemaErr      error
)

// Schema returns the JSON Schema of the template configuration format.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		Anonymous:                  true,
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: true,
	}
	s := r.Reflect(&ConfigFile{})
	s.Title = "folio section templates"
	return s
}

func configSchema() (*schemav5.Schema, error) {
	schemaOnce.Do(func() {
		raw, err := json.Marshal(Schema())
		if err != nil {
			schemaErr = fmt.Errorf("marshal template schema: %w", err)
			return
		}
		c := schemav5.NewCompiler()
		if err := c.AddResource(schemaURL, bytes.NewReader(raw)); err != nil {
			schemaErr = fmt.Errorf("add template schema: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// Parse decodes and validates one configuration document. The format is
// chosen from the name's extension: .json is JSON, .yaml and .yml are YAML.
func Parse(name string, data []byte) (ConfigFile, error) {
	var doc any
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return ConfigFile{}, fmt.Errorf("%s: %w", name, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return ConfigFile{}, fmt.Errorf("%s: %w", name, err)
		}
	default:
		return ConfigFile{}, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}

	// Round-trip through JSON so YAML values take the shapes the schema
	// validator and the config structs expect.
	raw, err := json.Marshal(doc)
	if err != nil {
		return ConfigFile{}, fmt.Errorf("%s: %w", name, err)
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return ConfigFile{}, fmt.Errorf("%s: %w", name, err)
	}

	schema, err := configSchema()
	if err != nil {
		return ConfigFile{}, err
	}
	if err := schema.Validate(instance); err != nil {
		var verr *schemav5.ValidationError
		if errors.As(err, &verr) {
			return ConfigFile{}, fmt.Errorf("%s: %w: %s", name, ErrInvalidConfig, describeValidation(verr))
		}
		return ConfigFile{}, fmt.Errorf("%s: %w: %v", name, ErrInvalidConfig, err)
	}

	var cfg ConfigFile
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return ConfigFile{}, fmt.Errorf("%s: %w", name, err)
	}
	return cfg, nil
}

// describeValidation flattens the leaf causes of a validation error.
func describeValidation(verr *schemav5.ValidationError) string {
	var msgs []string
	var walk func(e *schemav5.ValidationError)
	walk = func(e *schemav5.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			msgs = append(msgs, loc+": "+e.Message)
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(verr)
	return strings.Join(msgs, "; ")
}

// ExpandPaths resolves files and ** glob patterns into a sorted, de-duplicated file list.
// Plain paths are kept in the order given; each pattern's matches are sorted.
func ExpandPaths(paths ...string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, p := range paths {
		if !strings.ContainsAny(p, "*?[{") {
			add(p)
			continue
		}
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", p, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			add(m)
		}
	}
	if len(files) == 0 {
		return nil, ErrNoTemplateSources
	}
	return files, nil
}

// Load reads every configuration file named by paths, merges their templates
// in order and builds a registry. Any malformed file or entry is an error.
func Load(paths ...string) (*Registry, error) {
	files, err := ExpandPaths(paths...)
	if err != nil {
		return nil, err
	}

	var merged ConfigFile
	for _, f := range files {
		data, err := security.SafeReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read template config: %w", err)
		}
		cfg, err := Parse(f, data)
		if err != nil {
			return nil, err
		}
		merged.Templates = append(merged.Templates, cfg.Templates...)
	}
	return FromConfig(merged)
}

// DefaultConfig returns the built-in template configuration.
func DefaultConfig() (ConfigFile, error) {
	return Parse("defaults.yaml", defaultConfig)
}

// LoadDefault builds a registry from the built-in templates.
func LoadDefault() (*Registry, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}
	return FromConfig(cfg)
}
