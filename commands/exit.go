package commands

import (
	"fmt"
	"strconv"

	"github.com/gosh-shell/gosh/core/alias"
)

// Exit implements the exit builtin.
func Exit(inv *alias.Invocation) int {
	code := 0
	if args := inv.Args(); len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(inv.Stderr, "exit: %s: numeric argument required\n", args[0])
			parsed = 2
		}
		code = parsed
	}

	inv.Shell.RequestExit(code)
	return code
}

// True and False are the classic status commands.
func True(inv *alias.Invocation) int { return 0 }

func False(inv *alias.Invocation) int { return 1 }

func init() {
	register(alias.Func("exit", Exit))
	register(alias.Func("true", True))
	register(alias.Func("false", False))
}
