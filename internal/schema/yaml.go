package schema

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RootKey is the top-level key of a full schema document.
const RootKey = "surrealql_schema"

// ErrMissingRoot indicates a document without the surrealql_schema root.
var ErrMissingRoot = errors.New("missing " + RootKey + " root")

type document struct {
	Schema *Schema `yaml:"surrealql_schema"`
}

// Marshal renders the full schema as block-style YAML. Maps are emitted in
// sorted key order and operator categories in enumeration order, so the
// output is stable for a given schema.
func Marshal(s *Schema) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(document{Schema: s}); err != nil {
		return nil, fmt.Errorf("failed to encode full schema: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode full schema: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal reads a full schema document back into memory, restoring the
// record names that the document carries only as map keys.
func Unmarshal(data []byte) (*Schema, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode full schema: %w", err)
	}
	if doc.Schema == nil {
		return nil, ErrMissingRoot
	}

	s := doc.Schema
	if s.Statements == nil {
		s.Statements = make(map[string]StatementRecord)
	}
	if s.Functions == nil {
		s.Functions = make(map[string]map[string]FunctionRecord)
	}
	if s.Operators == nil {
		s.Operators = make(OperatorCatalog)
	}

	for name, st := range s.Statements {
		st.Name = name
		s.Statements[name] = st
	}
	for ns, fns := range s.Functions {
		for name, fn := range fns {
			fn.Namespace = ns
			fn.Name = name
			fns[name] = fn
		}
	}
	for cat, ops := range s.Operators {
		if _, ok := ParseCategory(string(cat)); !ok {
			return nil, fmt.Errorf("failed to decode full schema: unknown operator category %q", cat)
		}
		for i := range ops {
			ops[i].Category = cat
		}
	}
	return s, nil
}

// Load reads a full schema file written by Marshal.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read full schema: %w", err)
	}
	return Unmarshal(data)
}

// MarshalYAML emits categories in enumeration order instead of sorted order.
func (c OperatorCatalog) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, cat := range c.NonEmpty() {
		value := &yaml.Node{}
		if err := value.Encode(c[cat]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, strNode(string(cat)), value)
	}
	return node, nil
}

// MarshalYAML always writes alt, as null when the operator has no keyword form.
func (o OperatorRecord) MarshalYAML() (any, error) {
	alt := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	if o.Alt != "" {
		alt = strNode(o.Alt)
	}
	return &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			strNode("symbol"), strNode(o.Symbol),
			strNode("alt"), alt,
			strNode("description"), strNode(o.Description),
		},
	}, nil
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
