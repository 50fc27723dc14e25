package alpm

import "regexp"

// EngineErrorKind classifies a failure reported by the pacman binary.
type EngineErrorKind int

const (
	EngineErrorUnknown EngineErrorKind = iota
	EngineErrorNotFound
	EngineErrorVersionConflict
	EngineErrorFileConflict
	EngineErrorSignatureInvalid
	EngineErrorDownloadFailed
	EngineErrorIO
	EngineErrorPrivilegeDenied
	EngineErrorDatabaseLocked
)

func (k EngineErrorKind) String() string {
	switch k {
	case EngineErrorNotFound:
		return "target not found"
	case EngineErrorVersionConflict:
		return "version conflict"
	case EngineErrorFileConflict:
		return "file conflict"
	case EngineErrorSignatureInvalid:
		return "invalid signature"
	case EngineErrorDownloadFailed:
		return "download failed"
	case EngineErrorIO:
		return "i/o error"
	case EngineErrorPrivilegeDenied:
		return "privilege denied"
	case EngineErrorDatabaseLocked:
		return "database locked"
	}
	return "unknown engine error"
}

// EngineError is a structured failure parsed from pacman's stderr.
type EngineError struct {
	Kind       EngineErrorKind
	RawOutput  string
	Packages   []string // affected packages, when the output names them
	Suggestion string
	Wrapped    error
}

func (e *EngineError) Error() string {
	if e.Wrapped != nil {
		return e.Kind.String() + ": " + e.Wrapped.Error()
	}
	return e.Kind.String()
}

func (e *EngineError) Unwrap() error {
	return e.Wrapped
}

// Patterns matched against pacman stderr, one per failure class.
var (
	notFoundPattern   = regexp.MustCompile(`error: target not found: (\S+)`)
	depFailurePattern = regexp.MustCompile(`failed to prepare transaction.*could not satisfy dependencies`)
	breaksDepPattern  = regexp.MustCompile(`:: installing (\S+) .* breaks dependency .* required by (\S+)`)
	conflictPattern   = regexp.MustCompile(`:: (\S+) and (\S+) are in conflict`)
	fileConflictPat   = regexp.MustCompile(`(\S+) exists in filesystem|conflicting files`)
	signaturePattern  = regexp.MustCompile(`signature from .* is (invalid|unknown trust)|invalid or corrupted package \(PGP signature\)`)
	downloadPattern   = regexp.MustCompile(`failed retrieving file '([^']+)'|download library error`)
	privilegePattern  = regexp.MustCompile(`you cannot perform this operation unless you are root`)
	dbLockedPattern   = regexp.MustCompile(`failed to init transaction.*unable to lock database`)
)

// ParseEngineError classifies pacman stderr output. It returns nil when
// there is nothing to classify: no output and no process error.
func ParseEngineError(stderr string, runErr error) *EngineError {
	if stderr == "" && runErr == nil {
		return nil
	}

	engErr := &EngineError{
		Kind:      EngineErrorUnknown,
		RawOutput: stderr,
		Wrapped:   runErr,
	}

	switch {
	case privilegePattern.MatchString(stderr):
		engErr.Kind = EngineErrorPrivilegeDenied

	case matchAll(notFoundPattern, stderr, &engErr.Packages):
		engErr.Kind = EngineErrorNotFound

	case signaturePattern.MatchString(stderr):
		engErr.Kind = EngineErrorSignatureInvalid
		engErr.Suggestion = "refresh the keyring or re-sync the repository databases"

	case downloadPattern.MatchString(stderr):
		engErr.Kind = EngineErrorDownloadFailed
		engErr.Suggestion = "check the network connection and mirror configuration"

	case fileConflictPat.MatchString(stderr):
		engErr.Kind = EngineErrorFileConflict

	case depFailurePattern.MatchString(stderr),
		matchAll(breaksDepPattern, stderr, &engErr.Packages),
		matchAll(conflictPattern, stderr, &engErr.Packages):
		engErr.Kind = EngineErrorVersionConflict
		engErr.Suggestion = "upgrade the system first so dependency versions line up"

	case dbLockedPattern.MatchString(stderr):
		engErr.Kind = EngineErrorDatabaseLocked
		engErr.Suggestion = "another package manager may be running; wait or remove the db.lck file"

	case runErr != nil || stderr != "":
		engErr.Kind = EngineErrorIO
	}

	return engErr
}

// matchAll collects every unique submatch into dst and reports whether the
// pattern matched at all.
func matchAll(pattern *regexp.Regexp, stderr string, dst *[]string) bool {
	matches := pattern.FindAllStringSubmatch(stderr, -1)
	if len(matches) == 0 {
		return false
	}
	seen := make(map[string]bool)
	for _, m := range matches {
		for _, name := range m[1:] {
			if name != "" && !seen[name] {
				*dst = append(*dst, name)
				seen[name] = true
			}
		}
	}
	return true
}
