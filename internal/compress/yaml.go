package compress

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// RootKey is the top-level key of a compressed schema document.
const RootKey = "surrealql"

// ErrMissingRoot indicates a document without the surrealql root.
var ErrMissingRoot = errors.New("missing " + RootKey + " root")

// Schema is the compressed serialization of a full schema.
type Schema struct {
	V     string                       `yaml:"v" json:"v"`
	Stmts map[string]Statement         `yaml:"stmts" json:"stmts"`
	Funcs map[string]map[string]SigSet `yaml:"funcs" json:"funcs"`
	Ops   OpGroups                     `yaml:"ops" json:"ops"`
}

// Statement is a compressed statement: its keyword subset.
type Statement struct {
	K []string `yaml:"k" json:"k"`
}

// SigSet holds the encoded overloads of one function. A single overload
// is written as a bare string and several as a list.
type SigSet []string

// MarshalYAML writes one overload as a scalar.
func (s SigSet) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	return []string(s), nil
}

// UnmarshalYAML accepts both the scalar and the list form.
func (s *SigSet) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var one string
		if err := value.Decode(&one); err != nil {
			return err
		}
		*s = SigSet{one}
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := value.Decode(&many); err != nil {
			return err
		}
		*s = SigSet(many)
		return nil
	default:
		return fmt.Errorf("signature set: unexpected YAML node kind %d", value.Kind)
	}
}

// OpGroups holds operator tokens per abbreviated category key.
type OpGroups map[string][]string

// Keys returns category keys in enumeration order; unknown keys follow, sorted.
func (g OpGroups) Keys() []string {
	order := categoryOrder()
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		oi, iok := order[keys[i]]
		oj, jok := order[keys[j]]
		switch {
		case iok && jok:
			return oi < oj
		case iok != jok:
			return iok
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

// MarshalYAML emits categories in enumeration order.
func (g OpGroups) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range g.Keys() {
		value := &yaml.Node{}
		if err := value.Encode(g[k]); err != nil {
			return nil, err
		}
		key := &yaml.Node{}
		if err := key.Encode(k); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, key, value)
	}
	return node, nil
}

type document struct {
	Schema *Schema `yaml:"surrealql"`
}

// Marshal renders the compressed schema as flow-style YAML.
func Marshal(s *Schema) ([]byte, error) {
	var root yaml.Node
	if err := root.Encode(document{Schema: s}); err != nil {
		return nil, fmt.Errorf("failed to encode compressed schema: %w", err)
	}
	setFlow(&root)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return nil, fmt.Errorf("failed to encode compressed schema: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode compressed schema: %w", err)
	}
	return buf.Bytes(), nil
}

func setFlow(n *yaml.Node) {
	if n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode {
		n.Style |= yaml.FlowStyle
	}
	for _, c := range n.Content {
		setFlow(c)
	}
}

// Unmarshal reads a compressed schema document.
func Unmarshal(data []byte) (*Schema, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode compressed schema: %w", err)
	}
	if doc.Schema == nil {
		return nil, ErrMissingRoot
	}
	s := doc.Schema
	if s.Stmts == nil {
		s.Stmts = make(map[string]Statement)
	}
	if s.Funcs == nil {
		s.Funcs = make(map[string]map[string]SigSet)
	}
	if s.Ops == nil {
		s.Ops = make(OpGroups)
	}
	return s, nil
}

// Load reads a compressed schema file written by Marshal.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read compressed schema: %w", err)
	}
	return Unmarshal(data)
}
