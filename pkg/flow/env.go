package flow

import (
	"os"
	"strings"
)

// LookupFunc resolves a variable name, reporting whether it is set.
type LookupFunc func(name string) (string, bool)

// ResolveEnv resolves a value of the form ${NAME} or ${NAME:-default}.
// A missing NAME yields default, or "" when there is none. Any other value
// is returned unchanged.
func ResolveEnv(raw string, lookup LookupFunc) string {
	if !strings.HasPrefix(raw, "${") || !strings.HasSuffix(raw, "}") || len(raw) < 3 {
		return raw
	}

	inner := raw[2 : len(raw)-1]
	name, def := inner, ""
	if i := strings.Index(inner, ":-"); i >= 0 {
		name, def = inner[:i], inner[i+2:]
	}

	if lookup != nil {
		if v, ok := lookup(name); ok {
			return v
		}
	}
	return def
}

// EnvLookup returns a LookupFunc reading the process environment first and
// falling back to defaults (the config file's env section).
func EnvLookup(defaults map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		if v, ok := os.LookupEnv(name); ok {
			return v, true
		}
		v, ok := defaults[name]
		return v, ok
	}
}
