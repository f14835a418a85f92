package config

import (
	"strings"

	"github.com/stripwm/stripwm/internal/platform"
)

// KeybindRegistry resolves string binding expressions ("mod+mod-key"
// shaped strings) to a Command. It deliberately stops at the string: it
// does not resolve physical keycodes or modifier masks against a
// platform virtual-keycode table, since that resolution is an external
// collaborator (SPEC_FULL supplemented feature 7).
type KeybindRegistry struct {
	byBinding map[string]platform.Command
}

// NewKeybindRegistry builds a registry from a loaded Document's
// bindings table, validating every command expression.
func NewKeybindRegistry(doc *Document) (*KeybindRegistry, []error) {
	r := &KeybindRegistry{byBinding: map[string]platform.Command{}}
	var errs []error
	for expr, value := range doc.Bindings {
		cmd, err := ParseCommand(splitExpr(expr))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, b := range value.Bindings {
			r.byBinding[normalizeBinding(b)] = cmd
		}
	}
	return r, errs
}

// Resolve looks up the Command bound to a binding expression string.
func (r *KeybindRegistry) Resolve(binding string) (platform.Command, bool) {
	cmd, ok := r.byBinding[normalizeBinding(binding)]
	return cmd, ok
}

// normalizeBinding lowercases and trims whitespace around '+'-joined
// modifier tokens for tolerant binding-string parsing.
func normalizeBinding(b string) string {
	parts := strings.Split(b, "+")
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, "+")
}
