package commands

import (
	"fmt"

	"github.com/gosh-shell/gosh/core/alias"
)

// Which implements the which builtin, checking aliases before $PATH.
func Which(inv *alias.Invocation) int {
	cmd := &SimpleCommand{
		Use:   "which [COMMAND...]",
		Short: "Locate a command.",
		// Never bail, even if args are bad.
		NeverBail: true,
	}

	return cmd.RunEachArg(inv, func(arg string) error {
		if v, ok := inv.Shell.Aliases().Raw(arg); ok {
			switch v.Kind {
			case alias.KindCallable:
				fmt.Fprintf(inv.Stdout, "%s: shell builtin\n", arg)
			default:
				fmt.Fprintf(inv.Stdout, "%s: aliased\n", arg)
			}
			return nil
		}

		path, ok := inv.Shell.Resolve(arg)
		if !ok {
			return fmt.Errorf("not found")
		}
		fmt.Fprintln(inv.Stdout, path)
		return nil
	})
}

func init() {
	register(alias.Func("which", Which))
}
