package briefing

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Field is one question of a layer
type Field struct {
	Key      string   `yaml:"-" json:"key"`
	Question string   `yaml:"question" json:"question"`
	Chips    []string `yaml:"chips" json:"chips,omitempty"`
}

// Layer groups the fields asked together
type Layer struct {
	Key    string  `yaml:"-" json:"key"`
	Number int     `yaml:"number" json:"number"`
	Title  string  `yaml:"title" json:"title"`
	Fields []Field `yaml:"-" json:"fields"`
}

// UnmarshalYAML keeps the field order of the YAML file
func (l *Layer) UnmarshalYAML(node *yaml.Node) error {
	type plain struct {
		Number int              `yaml:"number"`
		Title  string           `yaml:"title"`
		Fields map[string]Field `yaml:"fields"`
	}
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	l.Number = p.Number
	l.Title = p.Title

	for _, key := range mappingKeys(node, "fields") {
		f := p.Fields[key]
		f.Key = key
		l.Fields = append(l.Fields, f)
	}
	return nil
}

type catalogFile struct {
	Layers []Layer
}

// UnmarshalYAML keeps the layer order of the YAML file
func (c *catalogFile) UnmarshalYAML(node *yaml.Node) error {
	var m struct {
		Layers map[string]Layer `yaml:"layers"`
	}
	if err := node.Decode(&m); err != nil {
		return err
	}

	for _, key := range mappingKeys(node, "layers") {
		layer := m.Layers[key]
		layer.Key = key
		c.Layers = append(c.Layers, layer)
	}
	return nil
}

// mappingKeys returns the keys of the mapping stored under name, in document order.
// node.Content alternates key, value, key, value...
func mappingKeys(node *yaml.Node, name string) []string {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != name {
			continue
		}
		value := node.Content[i+1]
		keys := make([]string, 0, len(value.Content)/2)
		for j := 0; j+1 < len(value.Content); j += 2 {
			keys = append(keys, value.Content[j].Value)
		}
		return keys
	}
	return nil
}

func (l Layer) String() string {
	return fmt.Sprintf("layer %d (%s)", l.Number, l.Title)
}
