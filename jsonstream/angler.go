// Package jsonstream pulls a single scalar out of a JSON document without decoding the whole of it.
package jsonstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

type Angler struct {
	dec     *json.Decoder
	keys    []string
	visited []string
}

var ErrNotFound = errors.New("key not found")

func isDelim(t json.Token, want ...json.Delim) bool {
	d, ok := t.(json.Delim)
	if !ok {
		return false
	}

	for _, w := range want {
		if d == w {
			return true
		}
	}

	return false
}

// NewAngler prepares to read the value at path, written as ".a.b.c", from stream.
func NewAngler(stream io.Reader, path string) (*Angler, error) {
	if !strings.HasPrefix(path, ".") {
		return nil, errors.New(`path must start with the dot character "."`)
	}

	keys := strings.Split(path, ".")[1:]

	for _, k := range keys {
		if k == "" {
			return nil, fmt.Errorf("path %q contains an empty key", path)
		}
	}

	dec := json.NewDecoder(stream)
	dec.UseNumber()

	return &Angler{dec: dec, keys: keys}, nil
}

func (a *Angler) where() string {
	return "." + strings.Join(a.visited, ".")
}

// Land walks the stream down to the target key and returns its scalar value.
// Numbers are returned as [json.Number].
// Non-nil returned error wraps [ErrNotFound] when any key on the path is missing.
func (a *Angler) Land(ctx context.Context) (value any, err error) {
	for _, key := range a.keys {
		if err = a.descend(ctx, key); err != nil {
			return nil, err
		}

		a.visited = append(a.visited, key)
	}

	t, err := a.dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read the value at %q: %w", a.where(), err)
	}

	if isDelim(t, '{', '[') {
		return nil, fmt.Errorf("the value at %q is not a scalar", a.where())
	}

	return t, nil
}

// LandString is [Angler.Land] for values that must be JSON strings.
func (a *Angler) LandString(ctx context.Context) (string, error) {
	v, err := a.Land(ctx)
	if err != nil {
		return "", err
	}

	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("the value at %q is not a string", a.where())
	}

	return s, nil
}

func (a *Angler) descend(ctx context.Context, key string) error {
	t, err := a.dec.Token()
	if err != nil {
		return fmt.Errorf("failed to read the value at %q: %w", a.where(), err)
	}

	if !isDelim(t, '{') {
		return fmt.Errorf("the value at %q is not a JSON object", a.where())
	}

	for a.dec.More() {
		if err = context.Cause(ctx); err != nil {
			return fmt.Errorf("stopped looking for key %q under %q: %w", key, a.where(), err)
		}

		if t, err = a.dec.Token(); err != nil {
			return err
		}

		if name, ok := t.(string); ok && name == key {
			return nil
		}

		if err = a.skip(); err != nil {
			return err
		}
	}

	return fmt.Errorf("%w: %q under %q", ErrNotFound, key, a.where())
}

// skip consumes one complete value, however deeply nested.
func (a *Angler) skip() error {
	depth := 0

	for {
		t, err := a.dec.Token()
		if err != nil {
			return err
		}

		switch {
		case isDelim(t, '{', '['):
			depth++
		case isDelim(t, '}', ']'):
			depth--
		}

		if depth == 0 {
			return nil
		}
	}
}
