package scaffold

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/tidwall/gjson"
)

type (
	// Manifest is a package.json kept as raw top-level members in their original order.
	// Members the generator does not replace are written back byte for byte.
	Manifest struct {
		members []member
	}

	member struct {
		key string
		// rawKey is the key as quoted in the source document.
		rawKey string
		value  []byte
		// touched values are re-indented on output.
		touched bool
	}
)

const ManifestFile = "package.json"

func NewManifest() *Manifest {
	return &Manifest{}
}

// ReadManifest loads the package.json inside dir.
// Non-nil returned error wraps [ErrManifest].
func ReadManifest(dir string) (*Manifest, error) {
	path := filepath.Clean(filepath.Join(dir, ManifestFile))

	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %q: %w", ErrManifest, path, err)
	}

	m, err := ParseManifest(contents)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", path, err)
	}

	return m, nil
}

// ParseManifest reads a JSON object. A repeated key keeps its first position and its last value.
// Non-nil returned error wraps [ErrManifest].
func ParseManifest(data []byte) (*Manifest, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrManifest)
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: not a JSON object", ErrManifest)
	}

	m := NewManifest()

	doc.ForEach(func(key, value gjson.Result) bool {
		m.put(member{key: key.String(), rawKey: key.Raw, value: []byte(value.Raw)})

		return true
	})

	return m, nil
}

func (m *Manifest) put(mb member) {
	for i := range m.members {
		if m.members[i].key == mb.key {
			m.members[i].value = mb.value
			m.members[i].touched = mb.touched

			return
		}
	}

	if mb.rawKey == "" {
		mb.rawKey = string(marshalUnescaped(mb.key))
	}

	m.members = append(m.members, mb)
}

// Bytes renders the manifest with two-space indentation and a trailing newline.
func (m *Manifest) Bytes() []byte {
	var b bytes.Buffer

	if len(m.members) == 0 {
		return []byte("{}\n")
	}

	b.WriteString("{\n")

	for i, mb := range m.members {
		b.WriteString("  ")
		b.WriteString(mb.rawKey)
		b.WriteString(": ")

		if mb.touched {
			_ = json.Indent(&b, mb.value, "  ", "  ")
		} else {
			b.Write(mb.value)
		}

		if i < len(m.members)-1 {
			b.WriteByte(',')
		}

		b.WriteByte('\n')
	}

	b.WriteString("}\n")

	return b.Bytes()
}

// Write overwrites the package.json inside dir.
// Non-nil returned error wraps [ErrFileWrite].
func (m *Manifest) Write(dir string) error {
	return WriteToFile(dir, ManifestFile, func(fd io.Writer) error {
		_, err := fd.Write(m.Bytes())

		return err
	})
}

// marshalUnescaped encodes s, leaving <, > and & as they are.
func marshalUnescaped(s string) []byte {
	var b bytes.Buffer

	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)

	// a string always encodes
	_ = enc.Encode(s)

	return bytes.TrimSuffix(b.Bytes(), []byte("\n"))
}

func (m *Manifest) Keys() []string {
	keys := make([]string, 0, len(m.members))

	for _, mb := range m.members {
		keys = append(keys, mb.key)
	}

	return keys
}

// Get returns the raw value stored under key, or nil.
func (m *Manifest) Get(key string) []byte {
	for _, mb := range m.members {
		if mb.key == key {
			return mb.value
		}
	}

	return nil
}

// SetString replaces the value under key. New keys are appended after the existing ones.
func (m *Manifest) SetString(key, value string) {
	m.put(member{key: key, value: marshalUnescaped(value), touched: true})
}

// SetObject replaces the value under key with a string map whose keys are sorted.
func (m *Manifest) SetObject(key string, entries map[string]string) {
	inner := NewManifest()

	for _, name := range slices.Sorted(maps.Keys(entries)) {
		inner.SetString(name, entries[name])
	}

	m.put(member{key: key, value: inner.compact(), touched: true})
}

// Merge overlays entries onto the object stored under key, creating it when absent or null.
// Existing members keep their position, new ones are appended in key order.
// Non-nil returned error wraps [ErrManifest].
func (m *Manifest) Merge(key string, entries map[string]string) error {
	inner := NewManifest()

	if raw := m.Get(key); raw != nil {
		switch current := gjson.ParseBytes(raw); {
		case current.Type == gjson.Null:
		case current.IsObject():
			current.ForEach(func(k, v gjson.Result) bool {
				inner.put(member{key: k.String(), rawKey: k.Raw, value: []byte(v.Raw)})

				return true
			})
		default:
			return fmt.Errorf("%w: manifest field %q is not an object", ErrManifest, key)
		}
	}

	for _, name := range slices.Sorted(maps.Keys(entries)) {
		inner.SetString(name, entries[name])
	}

	m.put(member{key: key, value: inner.compact(), touched: true})

	return nil
}

// compact renders the members on one line, for nesting inside another manifest value.
func (m *Manifest) compact() []byte {
	var b bytes.Buffer

	b.WriteByte('{')

	for i, mb := range m.members {
		if i > 0 {
			b.WriteByte(',')
		}

		b.WriteString(mb.rawKey)
		b.WriteByte(':')
		b.Write(mb.value)
	}

	b.WriteByte('}')

	return b.Bytes()
}
