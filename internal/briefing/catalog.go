// Package briefing holds the layered question catalog that drives the AI briefing flow.
package briefing

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config/layers.yaml
var configFiles embed.FS

// Catalog is the ordered set of briefing layers. It is immutable after loading.
type Catalog struct {
	layers []Layer
	fields map[string]int // field key -> layer number
}

// Load parses the embedded layer catalog
func Load() (*Catalog, error) {
	data, err := configFiles.ReadFile("config/layers.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read layer catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML. Layers must be numbered 1..n in order
// and field keys must be unique across layers.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal layer catalog: %w", err)
	}
	if len(file.Layers) == 0 {
		return nil, fmt.Errorf("layer catalog is empty")
	}

	c := &Catalog{layers: file.Layers, fields: make(map[string]int)}
	for i, layer := range file.Layers {
		if layer.Number != i+1 {
			return nil, fmt.Errorf("layer %q has number %d, want %d", layer.Key, layer.Number, i+1)
		}
		if len(layer.Fields) == 0 {
			return nil, fmt.Errorf("layer %q has no fields", layer.Key)
		}
		for _, f := range layer.Fields {
			if _, dup := c.fields[f.Key]; dup {
				return nil, fmt.Errorf("field %q defined twice", f.Key)
			}
			c.fields[f.Key] = layer.Number
		}
	}
	return c, nil
}

// Layers returns the layers in order
func (c *Catalog) Layers() []Layer {
	return c.layers
}

// MaxLayer is the number of the last layer
func (c *Catalog) MaxLayer() int {
	return len(c.layers)
}

func (c *Catalog) Layer(number int) (Layer, bool) {
	if number < 1 || number > len(c.layers) {
		return Layer{}, false
	}
	return c.layers[number-1], true
}

// FieldLayer returns the layer number a field key belongs to
func (c *Catalog) FieldLayer(key string) (int, bool) {
	n, ok := c.fields[key]
	return n, ok
}

// Field looks up a field by key
func (c *Catalog) Field(key string) (Field, bool) {
	n, ok := c.fields[key]
	if !ok {
		return Field{}, false
	}
	for _, f := range c.layers[n-1].Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Next returns the first field without an answer, walking layers in order.
// ok is false once every field is answered.
func (c *Catalog) Next(answers map[string]string) (Layer, Field, bool) {
	for _, layer := range c.layers {
		for _, f := range layer.Fields {
			if strings.TrimSpace(answers[f.Key]) == "" {
				return layer, f, true
			}
		}
	}
	return Layer{}, Field{}, false
}

// Outline renders the catalog for the model's system prompt
func (c *Catalog) Outline() string {
	var b strings.Builder
	for _, layer := range c.layers {
		fmt.Fprintf(&b, "Layer %d: %s\n", layer.Number, layer.Title)
		for _, f := range layer.Fields {
			fmt.Fprintf(&b, "  - %s: %s", f.Key, f.Question)
			if len(f.Chips) > 0 {
				fmt.Fprintf(&b, " [options: %s]", strings.Join(f.Chips, ", "))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
