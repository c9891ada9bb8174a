package surface

import "strings"

// VariableSet is the ordered list of function variables. The first two name
// the spatial axes; the rest are higher parameters swept over the run.
type VariableSet []string

// ParseVariables accepts "x, y, a", "x y a" or "xya" (single-letter names
// written together, as the interactive prompt allowed).
func ParseVariables(s string) VariableSet {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.ContainsAny(s, ", \t") {
		fields := strings.FieldsFunc(s, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		return VariableSet(fields)
	}
	out := make(VariableSet, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Validate enforces at least two distinct identifier names.
func (v VariableSet) Validate() error {
	if len(v) < 2 {
		return configErr("variables", "need at least two names (x and y axes), got %d", len(v))
	}
	seen := make(map[string]bool, len(v))
	for _, name := range v {
		if !isIdent(name) {
			return configErr("variables", "%q is not a valid name", name)
		}
		if seen[name] {
			return configErr("variables", "duplicate name %q", name)
		}
		seen[name] = true
	}
	return nil
}

// Spatial returns the names bound to the x and y grids.
func (v VariableSet) Spatial() (x, y string) { return v[0], v[1] }

// Higher returns the swept parameter names.
func (v VariableSet) Higher() []string {
	if len(v) <= 2 {
		return nil
	}
	return append([]string(nil), v[2:]...)
}

func (v VariableSet) Contains(name string) bool {
	for _, n := range v {
		if n == name {
			return true
		}
	}
	return false
}

func (v VariableSet) String() string { return strings.Join(v, ", ") }

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		alpha := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
		if !alpha && (i == 0 || c < '0' || c > '9') {
			return false
		}
	}
	return true
}
