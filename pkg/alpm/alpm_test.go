package alpm

import "testing"

func TestHumanSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{4300000, "4.1 MiB"},
		{5 * 1024 * 1024 * 1024, "5.0 GiB"},
	}

	for _, tt := range tests {
		if got := HumanSize(tt.in); got != tt.want {
			t.Errorf("HumanSize(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSourceString(t *testing.T) {
	if got := LocalSource.String(); got != "local" {
		t.Errorf("LocalSource.String() = %q", got)
	}
	if got := RepoSource("core").String(); got != "core" {
		t.Errorf("RepoSource(core).String() = %q", got)
	}
}
