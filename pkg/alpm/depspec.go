package alpm

import "strings"

// Constraint is the version relation carried by a dependency.
type Constraint int

const (
	ConstraintAny Constraint = iota
	ConstraintLT
	ConstraintLE
	ConstraintEQ
	ConstraintGE
	ConstraintGT
)

func (c Constraint) String() string {
	switch c {
	case ConstraintLT:
		return "<"
	case ConstraintLE:
		return "<="
	case ConstraintEQ:
		return "="
	case ConstraintGE:
		return ">="
	case ConstraintGT:
		return ">"
	}
	return ""
}

// DepSpec is one parsed dependency, provision, conflict or replacement:
// a name, an optional version constraint and, for optional dependencies,
// a trailing description.
type DepSpec struct {
	Name        string
	Mod         Constraint
	Version     string
	Description string
}

// ParseDep parses pacman dependency syntax: "glibc>=2.38", "python",
// "libfoo.so=1-64", "sqlite: database support".
func ParseDep(s string) DepSpec {
	var dep DepSpec

	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ':'); i >= 0 && !strings.Contains(s[:i], "=") {
		dep.Description = strings.TrimSpace(s[i+1:])
		s = s[:i]
	}

	for _, op := range []struct {
		token string
		mod   Constraint
	}{
		{">=", ConstraintGE},
		{"<=", ConstraintLE},
		{">", ConstraintGT},
		{"<", ConstraintLT},
		{"=", ConstraintEQ},
	} {
		if i := strings.Index(s, op.token); i >= 0 {
			dep.Name = s[:i]
			dep.Mod = op.mod
			dep.Version = s[i+len(op.token):]
			return dep
		}
	}

	dep.Name = s
	return dep
}

// ParseDeps parses a list of dependency strings, skipping empties.
func ParseDeps(specs []string) []DepSpec {
	if len(specs) == 0 {
		return nil
	}
	deps := make([]DepSpec, 0, len(specs))
	for _, s := range specs {
		if strings.TrimSpace(s) == "" {
			continue
		}
		deps = append(deps, ParseDep(s))
	}
	return deps
}

func (d DepSpec) String() string {
	if d.Mod == ConstraintAny {
		return d.Name
	}
	return d.Name + d.Mod.String() + d.Version
}

// matchVersion reports whether the given version satisfies the constraint.
func (d DepSpec) matchVersion(version string) bool {
	if d.Mod == ConstraintAny {
		return true
	}

	cmp := VerCmp(version, d.Version)
	switch d.Mod {
	case ConstraintLT:
		return cmp < 0
	case ConstraintLE:
		return cmp <= 0
	case ConstraintEQ:
		return cmp == 0
	case ConstraintGE:
		return cmp >= 0
	case ConstraintGT:
		return cmp > 0
	}
	return false
}
