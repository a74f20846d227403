package loader

import (
	"fmt"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

type valueKind int

const (
	kindNull valueKind = iota
	kindString
	kindInt
	kindFloat
	kindBool
	kindList
	kindMap
)

func (k valueKind) String() string {
	switch k {
	case kindString:
		return "string"
	case kindInt:
		return "int"
	case kindFloat:
		return "float"
	case kindBool:
		return "bool"
	case kindList:
		return "list"
	case kindMap:
		return "struct"
	default:
		return "null"
	}
}

// value is the format-neutral document tree both parsers produce.
// Scalars keep their source text so numbers are not reformatted.
type value struct {
	kind   valueKind
	text   string
	items  []*value
	fields []field
	pos    Position
}

type field struct {
	key string
	val *value
	pos Position
}

func (v *value) lookup(key string) (*value, bool) {
	for _, f := range v.fields {
		if f.key == key {
			return f.val, true
		}
	}
	return nil, false
}

func parseCUE(filename string, src []byte) (*value, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, &LoadError{File: filename, Code: ErrCodeParse, Message: fmt.Sprintf("compiling CUE: %v", err)}
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, &LoadError{File: filename, Code: ErrCodeParse, Message: fmt.Sprintf("CUE value is not concrete: %v", err)}
	}
	return fromCUE(filename, v)
}

func fromCUE(filename string, v cue.Value) (*value, error) {
	pos := Position{Line: v.Pos().Line(), Column: v.Pos().Column()}
	fail := func(err error) (*value, error) {
		return nil, &LoadError{File: filename, Code: ErrCodeParse, Message: err.Error(), Pos: pos}
	}

	switch v.Kind() {
	case cue.NullKind:
		return &value{kind: kindNull, pos: pos}, nil

	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return fail(err)
		}
		return &value{kind: kindString, text: s, pos: pos}, nil

	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return fail(err)
		}
		return &value{kind: kindInt, text: strconv.FormatInt(n, 10), pos: pos}, nil

	case cue.FloatKind:
		f, err := v.Float64()
		if err != nil {
			return fail(err)
		}
		return &value{kind: kindFloat, text: strconv.FormatFloat(f, 'f', -1, 64), pos: pos}, nil

	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return fail(err)
		}
		return &value{kind: kindBool, text: strconv.FormatBool(b), pos: pos}, nil

	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return fail(err)
		}
		out := &value{kind: kindList, pos: pos}
		for iter.Next() {
			item, err := fromCUE(filename, iter.Value())
			if err != nil {
				return nil, err
			}
			out.items = append(out.items, item)
		}
		return out, nil

	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return fail(err)
		}
		out := &value{kind: kindMap, pos: pos}
		for iter.Next() {
			item, err := fromCUE(filename, iter.Value())
			if err != nil {
				return nil, err
			}
			out.fields = append(out.fields, field{key: iter.Label(), val: item, pos: item.pos})
		}
		return out, nil

	default:
		return fail(fmt.Errorf("unsupported CUE kind %s", v.Kind()))
	}
}

func parseYAML(filename string, src []byte) (*value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, &LoadError{File: filename, Code: ErrCodeParse, Message: fmt.Sprintf("parsing YAML: %v", err)}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return &value{kind: kindMap}, nil
	}
	return fromYAML(filename, doc.Content[0])
}

func fromYAML(filename string, n *yaml.Node) (*value, error) {
	pos := Position{Line: n.Line, Column: n.Column}

	switch n.Kind {
	case yaml.AliasNode:
		return fromYAML(filename, n.Alias)

	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return &value{kind: kindNull, pos: pos}, nil
		case "!!int":
			i, err := strconv.ParseInt(n.Value, 0, 64)
			if err != nil {
				return nil, &LoadError{File: filename, Code: ErrCodeParse, Message: fmt.Sprintf("integer %q: %v", n.Value, err), Pos: pos}
			}
			return &value{kind: kindInt, text: strconv.FormatInt(i, 10), pos: pos}, nil
		case "!!float":
			f, err := strconv.ParseFloat(n.Value, 64)
			if err != nil {
				return nil, &LoadError{File: filename, Code: ErrCodeParse, Message: fmt.Sprintf("float %q: %v", n.Value, err), Pos: pos}
			}
			return &value{kind: kindFloat, text: strconv.FormatFloat(f, 'f', -1, 64), pos: pos}, nil
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err != nil {
				return nil, &LoadError{File: filename, Code: ErrCodeParse, Message: err.Error(), Pos: pos}
			}
			return &value{kind: kindBool, text: strconv.FormatBool(b), pos: pos}, nil
		default:
			return &value{kind: kindString, text: n.Value, pos: pos}, nil
		}

	case yaml.SequenceNode:
		out := &value{kind: kindList, pos: pos}
		for _, c := range n.Content {
			item, err := fromYAML(filename, c)
			if err != nil {
				return nil, err
			}
			out.items = append(out.items, item)
		}
		return out, nil

	case yaml.MappingNode:
		out := &value{kind: kindMap, pos: pos}
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			item, err := fromYAML(filename, v)
			if err != nil {
				return nil, err
			}
			out.fields = append(out.fields, field{key: k.Value, val: item, pos: Position{Line: k.Line, Column: k.Column}})
		}
		return out, nil

	default:
		return nil, &LoadError{File: filename, Code: ErrCodeParse, Message: "unsupported YAML node", Pos: pos}
	}
}
