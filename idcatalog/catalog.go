package idcatalog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// NotSelectedPlaceholder is shown in place of an example ID number while no
// ID type is selected.
const NotSelectedPlaceholder = "Select an ID first"

var (
	ErrDuplicateKey     = errors.New("duplicate id type key")
	ErrEmptyKey         = errors.New("empty id type key")
	ErrMissingPattern   = errors.New("id type has no pattern")
	ErrMissingHint      = errors.New("id type has no placeholder")
	ErrUnanchoredRegexp = errors.New("id type pattern must be anchored with ^ and $")
)

// Record is the literal definition of one ID type.
type Record struct {
	Key         string
	Pattern     string
	Placeholder string
}

// IDType is a compiled catalog entry.
type IDType struct {
	Key         string
	Pattern     string
	Placeholder string

	re *regexp.Regexp
}

// NotSelected is returned by Lookup when no known ID type is selected. It has
// no pattern and carries the fallback placeholder.
var NotSelected = IDType{Placeholder: NotSelectedPlaceholder}

// Selected reports whether t is a catalog entry rather than NotSelected.
func (t IDType) Selected() bool {
	return t.Key != ""
}

// Label returns the key with underscores replaced by spaces, as used in
// user-facing messages ("driver_license" becomes "driver license").
func (t IDType) Label() string {
	return strings.ReplaceAll(t.Key, "_", " ")
}

// Matches tests value, unmodified, against the compiled pattern. NotSelected
// matches nothing.
func (t IDType) Matches(value string) bool {
	if t.re == nil {
		return false
	}
	return t.re.MatchString(value)
}

// Catalog is an ordered, immutable set of ID types.
type Catalog struct {
	types []IDType
	index map[string]int
}

// New compiles records into a catalog. It fails on an empty or duplicate key,
// a missing pattern or placeholder, or a pattern that is invalid or not
// anchored at both ends.
func New(records []Record) (*Catalog, error) {
	c := &Catalog{
		types: make([]IDType, 0, len(records)),
		index: make(map[string]int, len(records)),
	}
	for _, r := range records {
		if r.Key == "" {
			return nil, ErrEmptyKey
		}
		if _, dup := c.index[r.Key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, r.Key)
		}
		if r.Pattern == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingPattern, r.Key)
		}
		if r.Placeholder == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingHint, r.Key)
		}
		if !strings.HasPrefix(r.Pattern, "^") || !strings.HasSuffix(r.Pattern, "$") {
			return nil, fmt.Errorf("%w: %s", ErrUnanchoredRegexp, r.Key)
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("could not compile pattern for %s: %w", r.Key, err)
		}
		c.index[r.Key] = len(c.types)
		c.types = append(c.types, IDType{
			Key:         r.Key,
			Pattern:     r.Pattern,
			Placeholder: r.Placeholder,
			re:          re,
		})
	}
	return c, nil
}

// MustNew is like New but panics on error. It is meant for package level
// catalogs built from literals.
func MustNew(records []Record) *Catalog {
	c, err := New(records)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the ID type for key. Unknown and empty keys return
// NotSelected and false.
func (c *Catalog) Lookup(key string) (IDType, bool) {
	i, ok := c.index[key]
	if !ok {
		return NotSelected, false
	}
	return c.types[i], true
}

// All returns the ID types in catalog order.
func (c *Catalog) All() []IDType {
	out := make([]IDType, len(c.types))
	copy(out, c.types)
	return out
}

// Keys returns the ID type keys in catalog order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.types))
	for i, t := range c.types {
		keys[i] = t.Key
	}
	return keys
}

// Len returns the number of ID types.
func (c *Catalog) Len() int {
	return len(c.types)
}

// Placeholders returns a fresh key to placeholder map.
func (c *Catalog) Placeholders() map[string]string {
	m := make(map[string]string, len(c.types))
	for _, t := range c.types {
		m[t.Key] = t.Placeholder
	}
	return m
}

// Patterns returns a fresh key to pattern map.
func (c *Catalog) Patterns() map[string]string {
	m := make(map[string]string, len(c.types))
	for _, t := range c.types {
		m[t.Key] = t.Pattern
	}
	return m
}
