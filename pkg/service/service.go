package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"

	"github.com/klothoplatform/warmup/pkg/closenicely"
	"github.com/pkg/errors"
	yaml3 "gopkg.in/yaml.v3"
	"sigs.k8s.io/yaml"
)

const (
	DefaultStage  = "dev"
	DefaultRegion = "us-east-1"
)

type (
	// Service is the aggregate describing one serverless.yml. The warmer synthesizers commit
	// their output (resources, functions) directly into it.
	Service struct {
		Name      string
		Dir       string
		Provider  Provider
		Custom    map[string]any
		Functions *Functions
		Resources *Resources

		// doc is the document the service was read from. Sections not modelled above are
		// written back from it unchanged.
		doc *yaml3.Node
	}

	Provider struct {
		Name    string
		Stage   string
		Region  string
		Runtime string
		// Tracing is provider.tracing.lambda; nil when not configured.
		Tracing *bool
	}

	Resources struct {
		Resources map[string]any
		Outputs   map[string]any
	}

	serviceFile struct {
		Service   yaml3.Node     `yaml:"service"`
		Provider  providerFile   `yaml:"provider"`
		Custom    map[string]any `yaml:"custom"`
		Functions yaml3.Node     `yaml:"functions"`
		Resources *struct {
			Resources map[string]any `yaml:"Resources"`
			Outputs   map[string]any `yaml:"Outputs"`
		} `yaml:"resources"`
	}

	providerFile struct {
		Name    string `yaml:"name"`
		Stage   string `yaml:"stage"`
		Region  string `yaml:"region"`
		Runtime string `yaml:"runtime"`
		Tracing struct {
			Lambda any `yaml:"lambda"`
		} `yaml:"tracing"`
	}
)

// Load reads a serverless.yml from path.
func Load(path string) (*Service, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open service file %s", path)
	}
	defer closenicely.OrDebug(f)

	svc, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read service file %s", path)
	}
	svc.Dir = filepath.Dir(path)
	return svc, nil
}

// Read decodes a service document. Function declaration order is preserved.
func Read(r io.Reader) (*Service, error) {
	var doc yaml3.Node
	if err := yaml3.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty service document")
		}
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty service document")
	}
	root := doc.Content[0]
	if root.Kind != yaml3.MappingNode {
		return nil, fmt.Errorf("service document must be a mapping (line %d)", root.Line)
	}

	var file serviceFile
	if err := root.Decode(&file); err != nil {
		return nil, err
	}

	svc := &Service{
		Provider: Provider{
			Name:    file.Provider.Name,
			Stage:   file.Provider.Stage,
			Region:  file.Provider.Region,
			Runtime: file.Provider.Runtime,
			Tracing: tracingEnabled(file.Provider.Tracing.Lambda),
		},
		Custom:    file.Custom,
		Functions: NewFunctions(),
		doc:       root,
	}
	if svc.Provider.Stage == "" {
		svc.Provider.Stage = DefaultStage
	}
	if svc.Provider.Region == "" {
		svc.Provider.Region = DefaultRegion
	}

	name, err := serviceName(&file.Service)
	if err != nil {
		return nil, err
	}
	svc.Name = name

	if err := decodeFunctions(&file.Functions, svc.Functions); err != nil {
		return nil, err
	}

	if file.Resources != nil {
		svc.Resources = &Resources{
			Resources: file.Resources.Resources,
			Outputs:   file.Resources.Outputs,
		}
	}
	return svc, nil
}

// serviceName supports both `service: name` and `service: {name: name}`.
func serviceName(node *yaml3.Node) (string, error) {
	switch node.Kind {
	case 0:
		return "", fmt.Errorf("missing 'service' name")
	case yaml3.ScalarNode:
		return node.Value, nil
	case yaml3.MappingNode:
		var named struct {
			Name string `yaml:"name"`
		}
		if err := node.Decode(&named); err != nil {
			return "", err
		}
		if named.Name == "" {
			return "", fmt.Errorf("missing 'service.name'")
		}
		return named.Name, nil
	}
	return "", fmt.Errorf("invalid 'service' at line %d", node.Line)
}

func decodeFunctions(node *yaml3.Node, fns *Functions) error {
	if node.Kind == 0 {
		return nil
	}
	if node.Kind != yaml3.MappingNode {
		return fmt.Errorf("'functions' must be a mapping (line %d)", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		fn := map[string]any{}
		if err := node.Content[i+1].Decode(&fn); err != nil {
			return errors.Wrapf(err, "could not decode function %s", key)
		}
		fns.Set(key, fn)
	}
	return nil
}

func tracingEnabled(v any) *bool {
	var enabled bool
	switch t := v.(type) {
	case bool:
		enabled = t
	case string:
		enabled = t == "Active"
	default:
		return nil
	}
	return &enabled
}

// EnsureResources creates the resources section (and its Resources map) if absent and returns it.
func (s *Service) EnsureResources() map[string]any {
	if s.Resources == nil {
		s.Resources = &Resources{}
	}
	if s.Resources.Resources == nil {
		s.Resources.Resources = make(map[string]any)
	}
	return s.Resources.Resources
}

// Document commits the service's functions, resources, stage and region into the document it
// was read from and returns the document's root mapping. Entries whose value is unchanged keep
// their original node, comments included.
func (s *Service) Document() (*yaml3.Node, error) {
	if s.doc == nil {
		s.doc = newMapping()
		setValue(s.doc, "service", stringNode(s.Name))
	}
	s.commitProvider()

	if s.Functions != nil {
		orig := mappingValue(s.doc, "functions")
		if orig != nil || s.Functions.Len() > 0 {
			fns, err := commitMapping(orig, s.Functions.Keys(), s.Functions.Get)
			if err != nil {
				return nil, errors.Wrap(err, "could not encode functions")
			}
			setValue(s.doc, "functions", fns)
		}
	}

	if s.Resources != nil {
		res := mappingValue(s.doc, "resources")
		if res == nil || res.Kind != yaml3.MappingNode {
			res = newMapping()
			setValue(s.doc, "resources", res)
		}
		sections := []struct {
			key    string
			values map[string]any
		}{
			{"Resources", s.Resources.Resources},
			{"Outputs", s.Resources.Outputs},
		}
		for _, section := range sections {
			if section.values == nil {
				continue
			}
			orig := mappingValue(res, section.key)
			get := func(k string) (any, bool) {
				v, ok := section.values[k]
				return v, ok
			}
			node, err := commitMapping(orig, orderedKeys(orig, section.values), get)
			if err != nil {
				return nil, errors.Wrapf(err, "could not encode resources.%s", section.key)
			}
			setValue(res, section.key, node)
		}
	}
	return s.doc, nil
}

func (s *Service) commitProvider() {
	provider := mappingValue(s.doc, "provider")
	if provider == nil {
		provider = newMapping()
		if s.Provider.Name != "" {
			setValue(provider, "name", stringNode(s.Provider.Name))
		}
		setValue(s.doc, "provider", provider)
	}
	if provider.Kind != yaml3.MappingNode {
		return
	}
	for _, kv := range [][2]string{{"stage", s.Provider.Stage}, {"region", s.Provider.Region}} {
		if kv[1] == "" {
			continue
		}
		if cur := mappingValue(provider, kv[0]); cur != nil && cur.Kind == yaml3.ScalarNode && cur.Value == kv[1] {
			continue
		}
		setValue(provider, kv[0], stringNode(kv[1]))
	}
}

func (s *Service) MarshalJSON() ([]byte, error) {
	doc, err := s.Document()
	if err != nil {
		return nil, err
	}
	buf := new(bytes.Buffer)
	if err := writeJSON(buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes the service as "yaml" (the default) or "json".
func (s *Service) Write(w io.Writer, format string) error {
	switch format {
	case "json":
		raw, err := s.MarshalJSON()
		if err != nil {
			return err
		}
		buf := new(bytes.Buffer)
		if err := json.Indent(buf, raw, "", "  "); err != nil {
			return err
		}
		buf.WriteByte('\n')
		_, err = buf.WriteTo(w)
		return err

	case "yaml", "":
		doc, err := s.Document()
		if err != nil {
			return err
		}
		enc := yaml3.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported output format %q", format)
}

// ValidFormat reports whether format is accepted by [Service.Write].
func ValidFormat(format string) error {
	switch format {
	case "json", "yaml", "":
		return nil
	}
	return fmt.Errorf("unsupported output format %q", format)
}

func newMapping() *yaml3.Node {
	return &yaml3.Node{Kind: yaml3.MappingNode, Tag: "!!map"}
}

func stringNode(v string) *yaml3.Node {
	return &yaml3.Node{Kind: yaml3.ScalarNode, Tag: "!!str", Value: v}
}

func lookup(m *yaml3.Node, key string) (*yaml3.Node, *yaml3.Node) {
	if m == nil || m.Kind != yaml3.MappingNode {
		return nil, nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i], m.Content[i+1]
		}
	}
	return nil, nil
}

func mappingValue(m *yaml3.Node, key string) *yaml3.Node {
	_, v := lookup(m, key)
	return v
}

func setValue(m *yaml3.Node, key string, value *yaml3.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content, stringNode(key), value)
}

// orderedKeys lists the keys of values, those already in orig first and in their original order.
func orderedKeys(orig *yaml3.Node, values map[string]any) []string {
	keys := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	if orig != nil && orig.Kind == yaml3.MappingNode {
		for i := 0; i+1 < len(orig.Content); i += 2 {
			k := orig.Content[i].Value
			if _, ok := values[k]; ok && !seen[k] {
				keys = append(keys, k)
				seen[k] = true
			}
		}
	}
	var added []string
	for k := range values {
		if !seen[k] {
			added = append(added, k)
		}
	}
	sort.Strings(added)
	return append(keys, added...)
}

// commitMapping builds the mapping for keys. A key whose value still decodes from its node in
// orig keeps that node; other values are encoded fresh.
func commitMapping(orig *yaml3.Node, keys []string, get func(string) (any, bool)) (*yaml3.Node, error) {
	out := newMapping()
	if orig != nil && orig.Kind == yaml3.MappingNode {
		out.Style = orig.Style
		out.HeadComment = orig.HeadComment
		out.LineComment = orig.LineComment
		out.FootComment = orig.FootComment
	}
	for _, key := range keys {
		v, _ := get(key)
		if keyNode, valNode := lookup(orig, key); valNode != nil && unchanged(valNode, v) {
			out.Content = append(out.Content, keyNode, valNode)
			continue
		}
		node, err := encodeNode(v)
		if err != nil {
			return nil, errors.Wrapf(err, "could not encode %s", key)
		}
		out.Content = append(out.Content, stringNode(key), node)
	}
	return out, nil
}

func unchanged(node *yaml3.Node, v any) bool {
	var decoded any
	if err := node.Decode(&decoded); err != nil {
		return false
	}
	return reflect.DeepEqual(decoded, v)
}

// encodeNode converts v to a YAML node following its JSON encoding, so json tags and
// MarshalJSON (eg intrinsic functions) apply.
func encodeNode(v any) (*yaml3.Node, error) {
	content, err := yaml.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc yaml3.Node
	if err := yaml3.Unmarshal(content, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return &yaml3.Node{Kind: yaml3.ScalarNode, Tag: "!!null", Value: "null"}, nil
	}
	return doc.Content[0], nil
}

// writeJSON writes n as JSON, keeping mapping keys in document order.
func writeJSON(buf *bytes.Buffer, n *yaml3.Node) error {
	switch n.Kind {
	case yaml3.DocumentNode:
		if len(n.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return writeJSON(buf, n.Content[0])

	case yaml3.AliasNode:
		return writeJSON(buf, n.Alias)

	case yaml3.MappingNode:
		if hasMergeKey(n) {
			return writeDecoded(buf, n)
		}
		buf.WriteByte('{')
		for i := 0; i+1 < len(n.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(n.Content[i].Value)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := writeJSON(buf, n.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case yaml3.SequenceNode:
		buf.WriteByte('[')
		for i, item := range n.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	}
	return writeDecoded(buf, n)
}

func writeDecoded(buf *bytes.Buffer, n *yaml3.Node) error {
	var v any
	if err := n.Decode(&v); err != nil {
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "could not convert line %d to json", n.Line)
	}
	buf.Write(b)
	return nil
}

func hasMergeKey(n *yaml3.Node) bool {
	for i := 0; i < len(n.Content); i += 2 {
		if n.Content[i].Tag == "!!merge" {
			return true
		}
	}
	return false
}
