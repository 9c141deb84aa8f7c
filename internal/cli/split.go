package cli

import (
	"flag"
	"strings"
)

// boolFlags returns names of flags that don't require a value.
func boolFlags(fs *flag.FlagSet) map[string]bool {
	m := map[string]bool{}
	fs.VisitAll(func(f *flag.Flag) {
		if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
			m[f.Name] = true
		}
	})
	return m
}

// splitFlagsAndPositionals separates flag-like args from positionals so the
// working directory may come before, between or after the options.
func splitFlagsAndPositionals(fs *flag.FlagSet, argv []string) (flagArgs, posArgs []string) {
	bools := boolFlags(fs)
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		if arg == "--" {
			posArgs = append(posArgs, argv[i+1:]...)
			break
		}
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			posArgs = append(posArgs, arg)
			continue
		}
		flagArgs = append(flagArgs, arg)
		if strings.Contains(arg, "=") {
			continue
		}
		name := strings.TrimLeft(arg, "-")
		if bools[name] && i+1 < len(argv) && isBoolWord(argv[i+1]) {
			flagArgs[len(flagArgs)-1] = arg + "=" + argv[i+1]
			i++
			continue
		}
		if !bools[name] && i+1 < len(argv) {
			flagArgs = append(flagArgs, argv[i+1])
			i++
		}
	}
	return
}

// isBoolWord reports whether s reads as the value of a yes/no option, as in
// "--scaffolding no".
func isBoolWord(s string) bool {
	switch strings.ToLower(s) {
	case "yes", "no", "y", "n", "true", "false":
		return true
	}
	return false
}
