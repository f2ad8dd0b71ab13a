package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnescape(t *testing.T) {
	cases := []struct {
		escaped  string
		expected string
	}{
		{"not escaped", "not escaped"},
		{`newline\n`, "newline\n"},
		{`double-escape\\n`, `double-escape\n`},
		{`tab\t`, "tab\t"},
		// Octal
		{`\07`, string(rune(7))},
		{`\011`, "\t"},
		{`\0101`, "A"},
		// Hex
		{`\x7`, string(rune(07))},
		{`\x9`, "\t"},
		{`\x4A`, "J"},
	}

	for _, tc := range cases {
		t.Run(tc.escaped, func(t *testing.T) {
			actual := unescape(tc.escaped)

			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestEcho(t *testing.T) {
	goldenTestSuite{
		"simple":     {[]string{"echo", "hello", "world"}},
		"escapes":    {[]string{"echo", "-e", `a\tb`}},
		"no-newline": {[]string{"echo", "-n", "bare"}},
		"empty":      {[]string{"echo"}},
	}.Run(t)
}

func TestEchoExitCode(t *testing.T) {
	rc, stdout, stderr := invoke(newFakeShell(), "echo", "hi")
	assert.Equal(t, 0, rc)
	assert.Equal(t, "hi\n", stdout)
	assert.Empty(t, stderr)
}
