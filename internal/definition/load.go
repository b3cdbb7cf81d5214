package definition

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/goccy/go-yaml"
	"github.com/google/jsonschema-go/jsonschema"

	"automix/internal/services"
)

var (
	schemaOnce     sync.Once
	resolvedSchema *jsonschema.Resolved
	schemaErr      error
)

// Schema returns the resolved JSON schema definition documents are validated
// against.
func Schema() (*jsonschema.Resolved, error) {
	schemaOnce.Do(func() {
		schema, err := jsonschema.For[Definition](nil)
		if err != nil {
			schemaErr = fmt.Errorf("derive definition schema: %w", err)
			return
		}
		resolvedSchema, schemaErr = schema.Resolve(nil)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("resolve definition schema: %w", schemaErr)
		}
	})
	return resolvedSchema, schemaErr
}

// Load reads, renders, decodes, and validates the definition at path. data
// fills template placeholders in the file.
func Load(path string, data map[string]string) (*Definition, error) {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return nil, services.Wrap(services.ErrDefinition, "definition", "resolve path", path, err)
	}
	raw, err := os.ReadFile(absolute)
	if err != nil {
		return nil, services.Wrap(services.ErrDefinition, "definition", "read", absolute, err)
	}
	def, err := Parse(raw, filepath.Dir(absolute), data)
	if err != nil {
		return nil, err
	}
	if def.Name == "" {
		def.Name = strings.TrimSuffix(filepath.Base(absolute), filepath.Ext(absolute))
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

// Parse renders raw as a template with data, decodes the YAML document, and
// validates it against the definition schema. Relative clip paths are joined
// to dir. Semantic validation is left to Validate.
func Parse(raw []byte, dir string, data map[string]string) (*Definition, error) {
	rendered, err := Render(raw, data)
	if err != nil {
		return nil, err
	}

	jsonDoc, err := yaml.YAMLToJSON(rendered)
	if err != nil {
		return nil, services.Wrap(services.ErrDefinition, "definition", "parse yaml", "", err)
	}

	var instance any
	if err := json.Unmarshal(jsonDoc, &instance); err != nil {
		return nil, services.Wrap(services.ErrDefinition, "definition", "decode", "", err)
	}
	if instance == nil {
		return nil, services.Wrap(services.ErrDefinition, "definition", "decode", "document is empty", nil)
	}

	schema, err := Schema()
	if err != nil {
		return nil, services.Wrap(services.ErrDefinition, "definition", "schema", "", err)
	}
	if err := schema.Validate(instance); err != nil {
		return nil, services.Wrap(services.ErrDefinition, "definition", "schema", "", err)
	}

	var def Definition
	if err := json.Unmarshal(jsonDoc, &def); err != nil {
		return nil, services.Wrap(services.ErrDefinition, "definition", "decode", "", err)
	}
	def.Dir = dir
	for name, location := range def.Clips {
		def.Clips[name] = resolveLocation(dir, location)
	}
	return &def, nil
}

// Render executes raw as a text/template with sprig functions. Keys missing
// from data render empty so sprig's default can supply a fallback.
func Render(raw []byte, data map[string]string) ([]byte, error) {
	if data == nil {
		data = map[string]string{}
	}
	tmpl, err := template.New("definition").
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=zero").
		Parse(string(raw))
	if err != nil {
		return nil, services.Wrap(services.ErrDefinition, "definition", "parse template", "", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, services.Wrap(services.ErrDefinition, "definition", "render template", "", err)
	}
	return buf.Bytes(), nil
}

// ParseData converts key=value pairs into template data. Later pairs win.
func ParseData(pairs []string) (map[string]string, error) {
	data := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, services.Wrap(services.ErrDefinition, "definition", "data", fmt.Sprintf("expected key=value, got %q", pair), nil)
		}
		data[key] = value
	}
	return data, nil
}

func resolveLocation(dir, location string) string {
	location = strings.TrimSpace(location)
	if location == "" || filepath.IsAbs(location) || dir == "" {
		return location
	}
	return filepath.Join(dir, location)
}
