package alpm

import (
	"errors"
	"testing"
)

func TestParseEngineError(t *testing.T) {
	tests := []struct {
		name     string
		stderr   string
		wantKind EngineErrorKind
		wantPkgs []string
	}{
		{
			name:     "target not found",
			stderr:   "error: target not found: nosuchpkg",
			wantKind: EngineErrorNotFound,
			wantPkgs: []string{"nosuchpkg"},
		},
		{
			name:     "dependency failure",
			stderr:   "error: failed to prepare transaction (could not satisfy dependencies)",
			wantKind: EngineErrorVersionConflict,
		},
		{
			name:     "breaks dependency",
			stderr:   ":: installing glibc (2.39-1) breaks dependency 'glibc=2.38' required by oldapp",
			wantKind: EngineErrorVersionConflict,
			wantPkgs: []string{"glibc", "oldapp"},
		},
		{
			name:     "package conflict",
			stderr:   ":: iptables and iptables-nft are in conflict",
			wantKind: EngineErrorVersionConflict,
			wantPkgs: []string{"iptables", "iptables-nft"},
		},
		{
			name:     "file conflict",
			stderr:   "error: failed to commit transaction (conflicting files)\nfoo: /usr/bin/foo exists in filesystem",
			wantKind: EngineErrorFileConflict,
		},
		{
			name:     "invalid signature",
			stderr:   "error: linux: signature from \"Builder <b@arch.org>\" is invalid",
			wantKind: EngineErrorSignatureInvalid,
		},
		{
			name:     "corrupted package",
			stderr:   "error: failed to commit transaction (invalid or corrupted package (PGP signature))",
			wantKind: EngineErrorSignatureInvalid,
		},
		{
			name:     "download failure",
			stderr:   "error: failed retrieving file 'core.db' from mirror.example.org : timeout",
			wantKind: EngineErrorDownloadFailed,
		},
		{
			name:     "privilege denied",
			stderr:   "error: you cannot perform this operation unless you are root.",
			wantKind: EngineErrorPrivilegeDenied,
		},
		{
			name:     "database locked",
			stderr:   "error: failed to init transaction (unable to lock database)",
			wantKind: EngineErrorDatabaseLocked,
		},
		{
			name:     "unclassified output",
			stderr:   "something unexpected happened",
			wantKind: EngineErrorIO,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engErr := ParseEngineError(tt.stderr, errors.New("exit status 1"))
			if engErr == nil {
				t.Fatal("ParseEngineError returned nil")
			}
			if engErr.Kind != tt.wantKind {
				t.Errorf("kind = %v, want %v", engErr.Kind, tt.wantKind)
			}
			if len(tt.wantPkgs) > 0 {
				if len(engErr.Packages) != len(tt.wantPkgs) {
					t.Fatalf("packages = %v, want %v", engErr.Packages, tt.wantPkgs)
				}
				for i, p := range tt.wantPkgs {
					if engErr.Packages[i] != p {
						t.Errorf("packages[%d] = %q, want %q", i, engErr.Packages[i], p)
					}
				}
			}
		})
	}
}

func TestParseEngineErrorNothingToClassify(t *testing.T) {
	if got := ParseEngineError("", nil); got != nil {
		t.Errorf("ParseEngineError(\"\", nil) = %v, want nil", got)
	}
}

func TestEngineErrorUnwrap(t *testing.T) {
	inner := errors.New("exit status 1")
	engErr := ParseEngineError("error: target not found: x", inner)
	if !errors.Is(engErr, inner) {
		t.Error("EngineError does not unwrap to the process error")
	}
}
