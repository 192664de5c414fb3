// Package sense reads feature toggles from the environment and, as a
// fallback, straight from the raw command line (before any flag parsing).
package sense

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

var main_argv = os.Args // allow test package to override

// Getenv is os.Getenv with surrounding whitespace removed.
func Getenv(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}

// FeatureEnabled returns true if the os env is truthy, or flagname is found in command line
func FeatureEnabled(envname string, flagname string) bool {
	if envname == "" && flagname == "" {
		panic("FeatureEnabled called with no args")
	}
	if envname != "" && EnvBool(envname) {
		return true
	}
	if flagname != "" && fastParseArgsBool(flagname) {
		return true
	}
	return false
}

// fastParseArgs reports whether -flagname (or --flagname, -flagname=value)
// is present on the command line, and the value following it if any.
// The first argument (program name) is skipped.
func fastParseArgs(flagname string) (bool, string) {
	if strings.Contains(flagname, "-") {
		panic("here, flagname should not contain -")
	}
	for i := 1; i < len(main_argv); i++ {
		arg := strings.TrimLeft(main_argv[i], "-")
		if arg == main_argv[i] {
			continue // not a flag
		}
		if name, value, ok := strings.Cut(arg, "="); ok {
			if name == flagname {
				return true, value
			}
			continue
		}
		if arg == flagname {
			if i+1 < len(main_argv) {
				return true, main_argv[i+1]
			}
			return true, ""
		}
	}
	return false, ""
}

func fastParseArgsBool(flagname string) bool {
	found, next := fastParseArgs(flagname)
	if !found {
		return false
	}
	if next == "" || strings.HasPrefix(next, "-") {
		return true
	}
	return boolString(next, true, true)
}

func boolString(s string, unset bool, unparsable bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return unset
	case "true", "yes", "1", "on", "enabled", "enable":
		return true
	case "false", "no", "0", "off", "disabled", "disable":
		return false
	default:
		fmt.Fprintf(os.Stderr, "warn: unknown bool string: %q\n", s)
		return unparsable
	}
}

// EnvBool returns false if empty/unset/falsy, true if otherwise non-empty
func EnvBool(name string) bool {
	x, ok := os.LookupEnv(name)
	if !ok {
		return false
	}
	return boolString(x, false, true)
}

// EnvOr returns the value of the environment variable, or the default if unset
func EnvOr(name, def string) string {
	x, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	return x
}

// EnvUint returns the environment variable parsed as an unsigned integer,
// or def if it is unset or malformed.
func EnvUint(name string, def uint64) uint64 {
	x := Getenv(name)
	if x == "" {
		return def
	}
	v, err := strconv.ParseUint(x, 0, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warn: %s is not a number: %q\n", name, x)
		return def
	}
	return v
}
