package commands

import (
	"fmt"

	"github.com/gosh-shell/gosh/core/alias"
)

// Pwd implements the pwd builtin.
func Pwd(inv *alias.Invocation) int {
	cmd := &SimpleCommand{
		Use:   "pwd",
		Short: "Print the name of the current working directory.",
	}

	return cmd.Run(inv, func() int {
		fmt.Fprintln(inv.Stdout, inv.Shell.Getwd())
		return 0
	})
}

func init() {
	register(alias.Func("pwd", Pwd))
}
