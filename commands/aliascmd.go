package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/anmitsu/go-shlex"

	"github.com/gosh-shell/gosh/core/alias"
)

// Alias implements the alias builtin: with no arguments it lists every
// definition, "name" prints one, and "name=expansion" defines one.
func Alias(inv *alias.Invocation) int {
	reg := inv.Shell.Aliases()

	printOne := func(name string) bool {
		v, ok := reg.Raw(name)
		if !ok {
			fmt.Fprintf(inv.Stderr, "alias: %s: not found\n", name)
			return false
		}
		switch v.Kind {
		case alias.KindCallable:
			fmt.Fprintf(inv.Stdout, "alias %s=<builtin>\n", name)
		default:
			fmt.Fprintf(inv.Stdout, "alias %s='%s'\n", name, strings.Join(v.Expansion, " "))
		}
		return true
	}

	args := inv.Args()
	if len(args) == 0 {
		names := reg.Names()
		sort.Strings(names)
		for _, name := range names {
			printOne(name)
		}
		return 0
	}

	exitCode := 0
	for _, arg := range args {
		name, expansion, found := strings.Cut(arg, "=")
		if !found {
			if !printOne(name) {
				exitCode = 1
			}
			continue
		}

		words, err := shlex.Split(expansion, true)
		if err != nil {
			fmt.Fprintf(inv.Stderr, "alias: %s: %v\n", name, err)
			exitCode = 1
			continue
		}
		reg.Define(name, words...)
	}
	return exitCode
}

// Unalias implements the unalias builtin.
func Unalias(inv *alias.Invocation) int {
	reg := inv.Shell.Aliases()

	exitCode := 0
	for _, name := range inv.Args() {
		if _, ok := reg.Raw(name); !ok {
			fmt.Fprintf(inv.Stderr, "unalias: %s: not found\n", name)
			exitCode = 1
			continue
		}
		reg.Undefine(name)
	}
	return exitCode
}

func init() {
	register(alias.Func("alias", Alias))
	register(alias.Func("unalias", Unalias))
}
