package xlsxchart

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"

	"gopkg.in/yaml.v3"
)

// Field is one key/value pair of a Record.
type Field struct {
	Key   string
	Value any
}

// Record is a string-keyed mapping that remembers the order its keys were
// written in. Input decoded by LoadSpec uses Record for every mapping, so the
// first-seen order of series and categories survives decoding. Plain Go maps
// are accepted too, in sorted key order.
type Record []Field

// Get returns the value stored under key.
func (r Record) Get(key string) (any, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Keys returns the keys in order.
func (r Record) Keys() []string {
	keys := make([]string, len(r))
	for i, f := range r {
		keys[i] = f.Key
	}
	return keys
}

// set replaces the value under key or appends a new field.
func (r Record) set(key string, v any) Record {
	for i := range r {
		if r[i].Key == key {
			r[i].Value = v
			return r
		}
	}
	return append(r, Field{Key: key, Value: v})
}

// lookup returns the value under the first key present.
func (r Record) lookup(keys ...string) (any, string, bool) {
	for _, k := range keys {
		if v, ok := r.Get(k); ok {
			return v, k, true
		}
	}
	return nil, "", false
}

// asRecord views v as a Record. Go maps with string keys are ordered by key.
func asRecord(v any) (Record, bool) {
	switch m := v.(type) {
	case Record:
		return m, true
	case map[string]any:
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rec := make(Record, len(keys))
		for i, k := range keys {
			rec[i] = Field{Key: k, Value: m[k]}
		}
		return rec, true
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	rec := make(Record, len(keys))
	for i, k := range keys {
		rec[i] = Field{Key: k.String(), Value: rv.MapIndex(k).Interface()}
	}
	return rec, true
}

// asList views v as a sequence.
func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if _, isRecord := v.(Record); isRecord {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// LoadSpec decodes a YAML or JSON options document into the loosely-typed
// shape Normalize accepts, keeping mapping key order.
func LoadSpec(r io.Reader) (any, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("load spec: empty document")
		}
		return nil, fmt.Errorf("load spec: %w", err)
	}
	return fromYAML(&doc)
}

// LoadSpecFile reads and decodes an options document from disk.
func LoadSpecFile(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open spec %q: %w", path, err)
	}
	defer f.Close()
	return LoadSpec(f)
}

// Alias expansion limits, matching the ratio yaml.v3 applies when decoding
// into Go values.
const (
	aliasRatioRangeLow  = 400000
	aliasRatioRangeHigh = 4000000
	aliasRatioRange     = float64(aliasRatioRangeHigh - aliasRatioRangeLow)
)

func allowedAliasRatio(decodeCount int) float64 {
	switch {
	case decodeCount <= aliasRatioRangeLow:
		return 0.99
	case decodeCount >= aliasRatioRangeHigh:
		return 0.10
	default:
		return 0.99 - 0.89*(float64(decodeCount-aliasRatioRangeLow)/aliasRatioRange)
	}
}

// yamlDecoder converts a yaml.Node tree, expanding aliases. Aliases that
// refer to themselves and documents that expand excessively are rejected.
type yamlDecoder struct {
	expanding   map[*yaml.Node]bool
	aliasDepth  int
	decodeCount int
	aliasCount  int
}

func fromYAML(n *yaml.Node) (any, error) {
	d := &yamlDecoder{expanding: make(map[*yaml.Node]bool)}
	return d.decode(n)
}

func (d *yamlDecoder) decode(n *yaml.Node) (any, error) {
	d.decodeCount++
	if d.aliasDepth > 0 {
		d.aliasCount++
	}
	if d.aliasCount > 100 && d.decodeCount > 1000 &&
		float64(d.aliasCount)/float64(d.decodeCount) > allowedAliasRatio(d.decodeCount) {
		return nil, fmt.Errorf("line %d: document contains excessive aliasing", n.Line)
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return d.decode(n.Content[0])
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, fmt.Errorf("line %d: unknown anchor %q", n.Line, n.Value)
		}
		if d.expanding[n.Alias] {
			return nil, fmt.Errorf("line %d: anchor %q refers to itself", n.Line, n.Value)
		}
		d.expanding[n.Alias] = true
		d.aliasDepth++
		v, err := d.decode(n.Alias)
		d.aliasDepth--
		delete(d.expanding, n.Alias)
		return v, err
	case yaml.MappingNode:
		rec := make(Record, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := d.decode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			rec = rec.set(n.Content[i].Value, v)
		}
		return rec, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := d.decode(c)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("line %d: unsupported yaml node kind %d", n.Line, n.Kind)
}
