package shell

// Line handling loosely follows the POSIX shell command language
// (https://pubs.opengroup.org/onlinepubs/9699919799/utilities/V3_chap02.html):
// the line is split into words and operators, variables are expanded, and
// the result is handed to the execution engine which performs redirection
// and command search itself.

import (
	"fmt"
	"strings"

	shlex "github.com/anmitsu/go-shlex"

	"github.com/gosh-shell/gosh/core/exec"
)

// ErrEmptyLine reports a line with no commands after parsing.
var ErrEmptyLine = fmt.Errorf("empty command line")

// Parse splits a command line into the engine's token sequence: argument
// vectors separated by "|", optionally ending in "&". The expand function
// is applied to every word; quoting is handled before expansion.
func Parse(line string, expand func(string) string) ([]exec.Token, error) {
	words, err := shlex.Split(line, true)
	if err != nil {
		return nil, fmt.Errorf("syntax error: %w", err)
	}
	if expand != nil {
		for i, w := range words {
			words[i] = expand(w)
		}
	}

	var tokens []exec.Token
	var current []string
	flush := func() error {
		if len(current) == 0 {
			return fmt.Errorf("syntax error near unexpected token")
		}
		tokens = append(tokens, exec.Token{Argv: current})
		current = nil
		return nil
	}

	for i, w := range words {
		switch w {
		case "|":
			if err := flush(); err != nil {
				return nil, err
			}
			tokens = append(tokens, exec.Pipe())
		case "&":
			if i != len(words)-1 {
				return nil, fmt.Errorf("syntax error near unexpected token `&'")
			}
			if err := flush(); err != nil {
				return nil, err
			}
			tokens = append(tokens, exec.Amp())
		default:
			current = append(current, w)
		}
	}
	if len(current) > 0 {
		tokens = append(tokens, exec.Token{Argv: current})
	}

	if len(tokens) == 0 {
		return nil, ErrEmptyLine
	}
	if tokens[len(tokens)-1].Ctl == "|" {
		return nil, fmt.Errorf("syntax error: pipeline has no final command")
	}
	return tokens, nil
}

// ParseAssignment recognizes a lone NAME=value word, the form that sets a
// shell variable without running a command.
func ParseAssignment(line string) (name, value string, ok bool) {
	words, err := shlex.Split(line, true)
	if err != nil || len(words) != 1 {
		return "", "", false
	}
	name, value, found := strings.Cut(words[0], "=")
	if !found || name == "" || strings.ContainsAny(name, " \t/$") {
		return "", "", false
	}
	return name, value, true
}
