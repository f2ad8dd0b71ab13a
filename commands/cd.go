package commands

import (
	"fmt"
	"path/filepath"

	"github.com/gosh-shell/gosh/core/alias"
)

// Cd implements the cd builtin. A bare cd goes home, "cd -" returns to the
// previous directory.
func Cd(inv *alias.Invocation) int {
	env := inv.Shell.Env()

	var target string
	switch args := inv.Args(); len(args) {
	case 0:
		target = env.Getenv("HOME")
		if target == "" {
			fmt.Fprintln(inv.Stderr, "cd: HOME not set")
			return 1
		}
	case 1:
		target = args[0]
		if target == "-" {
			target = env.Getenv("OLDPWD")
			if target == "" {
				fmt.Fprintln(inv.Stderr, "cd: OLDPWD not set")
				return 1
			}
			fmt.Fprintln(inv.Stdout, target)
		}
	default:
		fmt.Fprintln(inv.Stderr, "cd: too many arguments")
		return 1
	}

	prev := inv.Shell.Getwd()
	if !filepath.IsAbs(target) {
		target = filepath.Join(prev, target)
	}
	if err := inv.Shell.Chdir(target); err != nil {
		fmt.Fprintf(inv.Stderr, "cd: %s: %v\n", target, err)
		return 1
	}

	_ = env.Setenv("OLDPWD", prev)
	_ = env.Setenv("PWD", inv.Shell.Getwd())
	return 0
}

func init() {
	register(alias.Func("cd", Cd))
}
