package alpm

import "testing"

func TestParseDep(t *testing.T) {
	tests := []struct {
		in   string
		want DepSpec
	}{
		{"python", DepSpec{Name: "python"}},
		{"glibc>=2.38", DepSpec{Name: "glibc", Mod: ConstraintGE, Version: "2.38"}},
		{"libfoo.so=1-64", DepSpec{Name: "libfoo.so", Mod: ConstraintEQ, Version: "1-64"}},
		{"pkg<2", DepSpec{Name: "pkg", Mod: ConstraintLT, Version: "2"}},
		{"pkg<=2.0", DepSpec{Name: "pkg", Mod: ConstraintLE, Version: "2.0"}},
		{"pkg>1.0", DepSpec{Name: "pkg", Mod: ConstraintGT, Version: "1.0"}},
		{"sqlite: database support", DepSpec{Name: "sqlite", Description: "database support"}},
		{"  spaced  ", DepSpec{Name: "spaced"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseDep(tt.in)
			if got != tt.want {
				t.Errorf("ParseDep(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDepSpecString(t *testing.T) {
	if got := ParseDep("glibc>=2.38").String(); got != "glibc>=2.38" {
		t.Errorf("String() = %q, want %q", got, "glibc>=2.38")
	}
	if got := ParseDep("python").String(); got != "python" {
		t.Errorf("String() = %q, want %q", got, "python")
	}
}

func TestSatisfies(t *testing.T) {
	rec := &PackageRecord{
		Name:    "openssl",
		Version: "3.2.1-1",
		Provides: []DepSpec{
			{Name: "libcrypto.so", Mod: ConstraintEQ, Version: "3-64"},
			{Name: "tls-provider"},
		},
	}

	tests := []struct {
		dep  string
		want bool
	}{
		{"openssl", true},
		{"openssl>=3.0", true},
		{"openssl<3.0", false},
		{"openssl=3.2.1-1", true},
		{"libcrypto.so", true},
		{"libcrypto.so=3-64", true},
		{"libcrypto.so=2-64", false},
		{"tls-provider", true},
		// A versioned requirement needs a versioned provision.
		{"tls-provider>=1.0", false},
		{"nothing", false},
	}

	for _, tt := range tests {
		t.Run(tt.dep, func(t *testing.T) {
			if got := rec.Satisfies(ParseDep(tt.dep)); got != tt.want {
				t.Errorf("Satisfies(%q) = %v, want %v", tt.dep, got, tt.want)
			}
		})
	}
}
