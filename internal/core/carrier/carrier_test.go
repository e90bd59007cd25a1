package carrier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_DefaultTable(t *testing.T) {
	cases := []struct {
		number string
		want   string
	}{
		{"CZ1234567890123", "ppl"},
		{"SK1234567890123", "ppl"},
		{"12345678901234", "dpd"},
		{"12345678", "gls"},
		{"1234567890", "gls"}, // also a DHL format; GLS is earlier in the table
		{"Z123456789", "zasilkovna"},
		{"ABC1234567", "dhl"},
		{"RR123456789CZ", "ceska-posta"},
		{"DR123456789CZ", "ceska-posta"},
		{"BA123456789CZ", "ceska-posta"},
		{"1Z999AA10123456784", "ups"},
		{"123456789012", "fedex"},
		{"1234567890123", "fedex"},
		{"123456789012345", "fedex"},
	}

	for _, tc := range cases {
		got, ok := Detect(tc.number)
		assert.True(t, ok, "number=%s", tc.number)
		assert.Equal(t, tc.want, got, "number=%s", tc.number)
	}
}

func TestDetect_NoMatch(t *testing.T) {
	for _, number := range []string{"", "   ", "HELLO", "1234567", "RR123456789SK", "1Z123"} {
		code, ok := Detect(number)
		assert.False(t, ok, "number=%q", number)
		assert.Empty(t, code)
	}
}

func TestDetect_CaseAndWhitespaceInsensitive(t *testing.T) {
	a, okA := Detect("  z123456789 ")
	b, okB := Detect("Z123456789")

	require.True(t, okA)
	require.True(t, okB)
	assert.Equal(t, b, a)
	assert.Equal(t, "zasilkovna", a)

	c, ok := Detect("\trr123456789cz\n")
	require.True(t, ok)
	assert.Equal(t, "ceska-posta", c)
}

func TestDetect_TableOrderWins(t *testing.T) {
	first, err := NewTable(
		Spec{Code: "alpha", Name: "Alpha", Patterns: []string{`^\d{10}$`}},
		Spec{Code: "beta", Name: "Beta", Patterns: []string{`^\d{8,12}$`}},
	)
	require.NoError(t, err)

	reversed, err := NewTable(
		Spec{Code: "beta", Name: "Beta", Patterns: []string{`^\d{8,12}$`}},
		Spec{Code: "alpha", Name: "Alpha", Patterns: []string{`^\d{10}$`}},
	)
	require.NoError(t, err)

	code, _ := first.Detect("1234567890")
	assert.Equal(t, "alpha", code)

	code, _ = reversed.Detect("1234567890")
	assert.Equal(t, "beta", code)
}

func TestName(t *testing.T) {
	assert.Equal(t, "PPL", Name("ppl"))
	assert.Equal(t, "Česká pošta", Name("ceska-posta"))
	assert.Equal(t, "ACME", Name("acme"))
	assert.Equal(t, "", Name(""))
}

func TestParse(t *testing.T) {
	doc := `
carriers:
  - code: one
    name: One
    patterns: ['^A\d+$']
  - code: two
    name: Two
    patterns: ['^B\d+$']
`
	table, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, table.Carriers(), 2)

	code, ok := table.Detect("b42")
	require.True(t, ok)
	assert.Equal(t, "two", code)
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":         "carriers: []",
		"missing code":  "carriers:\n  - name: X\n    patterns: ['^X$']",
		"bad pattern":   "carriers:\n  - code: x\n    patterns: ['^(X$']",
		"duplicate":     "carriers:\n  - code: x\n  - code: x",
		"unknown field": "carriers:\n  - code: x\n    regex: ['^X$']",
	}
	for name, doc := range cases {
		_, err := Parse(strings.NewReader(doc))
		assert.Error(t, err, name)
	}
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	table, err := Load("")
	require.NoError(t, err)
	assert.Same(t, Default(), table)
}
