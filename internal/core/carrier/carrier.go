// Package carrier identifies the shipping carrier that issued a tracking
// number using an ordered table of format patterns.
//
// The default table lives in carriers.yaml and is embedded at build time.
// A replacement table can be loaded with Load or built in code with NewTable.
package carrier

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Auto is the carrier code sent to the provider when neither a hint nor a
// detection result is available.
const Auto = "auto"

//go:embed carriers.yaml
var defaultTableYAML []byte

// Spec is the declarative form of a carrier entry.
type Spec struct {
	Code     string   `yaml:"code"`
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

// Carrier is a compiled table entry.
type Carrier struct {
	Code     string
	Name     string
	Patterns []*regexp.Regexp
}

// Table is an immutable, ordered carrier table. It is safe for concurrent use.
type Table struct {
	carriers []Carrier
}

type tableFile struct {
	Carriers []Spec `yaml:"carriers"`
}

// NewTable compiles specs in the given order.
func NewTable(specs ...Spec) (*Table, error) {
	t := &Table{carriers: make([]Carrier, 0, len(specs))}
	seen := make(map[string]struct{}, len(specs))
	for i, s := range specs {
		code := strings.TrimSpace(s.Code)
		if code == "" {
			return nil, fmt.Errorf("carrier[%d]: code is required", i)
		}
		if _, dup := seen[code]; dup {
			return nil, fmt.Errorf("carrier %q: duplicate code", code)
		}
		seen[code] = struct{}{}

		c := Carrier{Code: code, Name: s.Name, Patterns: make([]*regexp.Regexp, 0, len(s.Patterns))}
		for _, p := range s.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("carrier %q: pattern %q: %w", code, p, err)
			}
			c.Patterns = append(c.Patterns, re)
		}
		t.carriers = append(t.carriers, c)
	}
	return t, nil
}

// Parse reads a YAML carrier table.
func Parse(r io.Reader) (*Table, error) {
	var f tableFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("carrier table: %w", err)
	}
	if len(f.Carriers) == 0 {
		return nil, fmt.Errorf("carrier table: no carriers defined")
	}
	return NewTable(f.Carriers...)
}

// Load reads a carrier table from path. An empty path yields the default table.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("carrier table: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

var defaultTable = sync.OnceValue(func() *Table {
	t, err := Parse(bytes.NewReader(defaultTableYAML))
	if err != nil {
		panic(err)
	}
	return t
})

// Default returns the embedded carrier table.
func Default() *Table {
	return defaultTable()
}

// Normalize trims surrounding whitespace and upper-cases a tracking number.
func Normalize(trackingNumber string) string {
	return strings.ToUpper(strings.TrimSpace(trackingNumber))
}

// Detect returns the code of the first carrier whose patterns match the
// normalized tracking number.
func (t *Table) Detect(trackingNumber string) (string, bool) {
	normalized := Normalize(trackingNumber)
	if normalized == "" {
		return "", false
	}
	for _, c := range t.carriers {
		for _, re := range c.Patterns {
			if re.MatchString(normalized) {
				return c.Code, true
			}
		}
	}
	return "", false
}

// Name resolves a carrier code to its display name, falling back to the
// upper-cased code.
func (t *Table) Name(code string) string {
	for _, c := range t.carriers {
		if c.Code == code {
			return c.Name
		}
	}
	return strings.ToUpper(code)
}

// Carriers returns the table entries in match order.
func (t *Table) Carriers() []Carrier {
	out := make([]Carrier, len(t.carriers))
	copy(out, t.carriers)
	return out
}

// Detect runs the default table.
func Detect(trackingNumber string) (string, bool) {
	return Default().Detect(trackingNumber)
}

// Name resolves code against the default table.
func Name(code string) string {
	return Default().Name(code)
}
