// Package flagx holds helpers for parsing only the command-line flags a
// component owns, so several flag sets can share os.Args.
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs keeps the allowed flags from args, in order, together with
// their values. Both "-f value" and "-f=value" forms are recognised. The
// token after an allowed flag is its value, even when it starts with "-"
// (a secret such as "-k -x9"), unless it is itself an allowed flag.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
			if _, keep := allowed[name]; keep {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, keep := allowed[arg]; !keep {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !isAllowed(args[i+1], allowed) {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

func isAllowed(arg string, allowed map[string]struct{}) bool {
	name, _, _ := strings.Cut(arg, "=")
	_, ok := allowed[name]
	return ok
}

// ConfigFileFlag returns the value of -c / -config found in args, or "".
func ConfigFileFlag(args []string) string {
	return stringFlag(args, "config", "c")
}

// EnvFileFlag returns the value of -env-file found in args, or "".
func EnvFileFlag(args []string) string {
	return stringFlag(args, "env-file")
}

func stringFlag(args []string, names ...string) string {
	var value string

	allowed := make([]string, 0, len(names))
	fs := flag.NewFlagSet(names[0], flag.ContinueOnError)
	for _, n := range names {
		allowed = append(allowed, "-"+n, "--"+n)
		fs.StringVar(&value, n, "", "")
	}
	_ = fs.Parse(FilterArgs(args, allowed))

	return value
}
