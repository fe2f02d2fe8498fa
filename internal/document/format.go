package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format records which on-disk representation a Document was parsed from,
// so [save@handle] can write back in the same shape.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatTOML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return "unknown"
	}
}

// FormatFromExtension dispatches by file extension the way [load] does.
func FormatFromExtension(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return 0, formatError(fmt.Sprintf("unrecognized file extension for %q", path))
	}
}

// FormatFromName parses a format flag name such as "json"/"yaml"/"toml".
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return 0, formatError(fmt.Sprintf("unknown format %q", name))
	}
}

// Document is the shared handle a Doc value holds a pointer to: a root
// node plus the format/origin metadata needed for round-tripping.
type Document struct {
	Root   *Node
	Origin string
	Format Format
}

func New(format Format) *Document {
	return &Document{Root: NewObject(), Format: format}
}

// Decode parses raw bytes in the given format into a Document.
func Decode(data []byte, format Format) (*Document, error) {
	var root *Node
	var err error
	switch format {
	case FormatJSON:
		root, err = decodeJSON(data)
	case FormatYAML:
		root, err = decodeYAML(data)
	case FormatTOML:
		root, err = decodeTOML(data)
	default:
		return nil, formatError("unknown format")
	}
	if err != nil {
		return nil, formatError(err.Error())
	}
	return &Document{Root: root, Format: format}, nil
}

// Encode serializes d.Root back into d.Format.
func Encode(d *Document) ([]byte, error) {
	switch d.Format {
	case FormatJSON:
		return encodeJSON(d.Root)
	case FormatYAML:
		return encodeYAML(d.Root)
	case FormatTOML:
		return encodeTOML(d.Root)
	default:
		return nil, formatError("unknown format")
	}
}

// LoadFile reads and parses path, dispatching on its extension.
func LoadFile(path string) (*Document, error) {
	format, err := FormatFromExtension(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, formatError(err.Error())
	}
	doc, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	doc.Origin = path
	return doc, nil
}

// SaveFile writes d back to path (or d.Origin if path is empty).
func SaveFile(d *Document, path string) error {
	if path == "" {
		path = d.Origin
	}
	if path == "" {
		return formatError("document has no origin path to save to")
	}
	data, err := Encode(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// --- JSON ---
//
// encoding/json decodes objects into map[string]any and marshals maps with
// sorted keys, both of which would violate §3.2's key-order invariant. The
// decoder below walks json.Decoder tokens directly to preserve the source
// order; the encoder writes the tree by hand for the same reason.

func decodeJSON(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeJSONValue(dec, tok)
}

func decodeJSONValue(dec *json.Decoder, tok json.Token) (*Node, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, _ := keyTok.(string)
				valTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				val, err := decodeJSONValue(dec, valTok)
				if err != nil {
					return nil, err
				}
				obj.Object().Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return obj, nil
		case '[':
			var items []*Node
			for dec.More() {
				valTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				val, err := decodeJSONValue(dec, valTok)
				if err != nil {
					return nil, err
				}
				items = append(items, val)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return NewArray(items...), nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case nil:
		return NewNull(), nil
	case bool:
		return NewBool(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return NewNum(f), nil
	case string:
		return NewStr(t), nil
	default:
		return nil, fmt.Errorf("unexpected json token %v (%T)", tok, tok)
	}
}

func encodeJSON(n *Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSONNode(&buf, n, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSONNode(buf *bytes.Buffer, n *Node, depth int) error {
	switch n.Kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		if n.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Num:
		b, err := json.Marshal(n.num)
		if err != nil {
			return err
		}
		buf.Write(b)
	case Str:
		b, err := json.Marshal(n.str)
		if err != nil {
			return err
		}
		buf.Write(b)
	case Array:
		if len(n.arr) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteString("[\n")
		for i, c := range n.arr {
			buf.WriteString(jsonIndent(depth + 1))
			if err := writeJSONNode(buf, c, depth+1); err != nil {
				return err
			}
			if i < len(n.arr)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		buf.WriteString(jsonIndent(depth))
		buf.WriteByte(']')
	case Object:
		keys := n.Object().Keys()
		if len(keys) == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteString("{\n")
		for i, k := range keys {
			buf.WriteString(jsonIndent(depth + 1))
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteString(": ")
			v, _ := n.Object().Get(k)
			if err := writeJSONNode(buf, v, depth+1); err != nil {
				return err
			}
			if i < len(keys)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		buf.WriteString(jsonIndent(depth))
		buf.WriteByte('}')
	}
	return nil
}

func jsonIndent(depth int) string { return strings.Repeat("  ", depth) }

func fromGoValue(v any) *Node {
	switch t := v.(type) {
	case nil:
		return NewNull()
	case float64:
		return NewNum(t)
	case int64:
		return NewNum(float64(t))
	case int:
		return NewNum(float64(t))
	case string:
		return NewStr(t)
	case bool:
		return NewBool(t)
	case []any:
		items := make([]*Node, len(t))
		for i, e := range t {
			items[i] = fromGoValue(e)
		}
		return NewArray(items...)
	case []map[string]any:
		items := make([]*Node, len(t))
		for i, e := range t {
			items[i] = fromGoValue(e)
		}
		return NewArray(items...)
	case map[string]any:
		obj := NewObject()
		for k, e := range t {
			obj.Object().Set(k, fromGoValue(e))
		}
		return obj
	default:
		return NewNull()
	}
}

func toGoValue(n *Node) any {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case Null:
		return nil
	case Num:
		return n.num
	case Str:
		return n.str
	case Bool:
		return n.b
	case Array:
		out := make([]any, len(n.arr))
		for i, c := range n.arr {
			out[i] = toGoValue(c)
		}
		return out
	case Object:
		out := make(map[string]any, n.Object().Len())
		for _, k := range n.Object().Keys() {
			v, _ := n.Object().Get(k)
			out[k] = toGoValue(v)
		}
		return out
	default:
		return nil
	}
}

// --- YAML ---
//
// yaml.v3's yaml.Node preserves mapping key order and scalar tags, which is
// what lets an object's insertion order survive a load -> mutate -> save
// round trip.

func decodeYAML(data []byte) (*Node, error) {
	var raw yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if len(raw.Content) == 0 {
		return NewObject(), nil
	}
	return fromYAMLNode(raw.Content[0]), nil
}

func fromYAMLNode(n *yaml.Node) *Node {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return NewNull()
		}
		return fromYAMLNode(n.Content[0])
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			obj.Object().Set(n.Content[i].Value, fromYAMLNode(n.Content[i+1]))
		}
		return obj
	case yaml.SequenceNode:
		items := make([]*Node, len(n.Content))
		for i, c := range n.Content {
			items[i] = fromYAMLNode(c)
		}
		return NewArray(items...)
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil || v == nil {
			return NewNull()
		}
		switch t := v.(type) {
		case int:
			return NewNum(float64(t))
		case float64:
			return NewNum(t)
		case bool:
			return NewBool(t)
		case string:
			return NewStr(t)
		default:
			return NewStr(n.Value)
		}
	default:
		return NewNull()
	}
}

func encodeYAML(n *Node) ([]byte, error) {
	return yaml.Marshal(toYAMLNode(n))
}

// toYAMLNode builds a yaml.Node tree by hand instead of marshaling a Go
// map, since yaml.v3 sorts map keys on Marshal — building the node directly
// is what preserves insertion order through the round trip.
func toYAMLNode(n *Node) *yaml.Node {
	switch n.Kind {
	case Null:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case Bool:
		v := "false"
		if n.b {
			v = "true"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: v}
	case Num:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(n.num, 'g', -1, 64)}
	case Str:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: n.str}
	case Array:
		out := &yaml.Node{Kind: yaml.SequenceNode}
		for _, c := range n.arr {
			out.Content = append(out.Content, toYAMLNode(c))
		}
		return out
	case Object:
		out := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range n.Object().Keys() {
			v, _ := n.Object().Get(k)
			out.Content = append(out.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, toYAMLNode(v))
		}
		return out
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

// --- TOML ---

func decodeTOML(data []byte) (*Node, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return fromGoValue(raw), nil
}

func encodeTOML(n *Node) ([]byte, error) {
	if n.Kind != Object {
		return nil, formatError("TOML documents must be objects at the root")
	}
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(toGoValue(n)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
