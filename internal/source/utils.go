package source

import (
	"path/filepath"
	"slices"
)

// normalizeCRLF replaces every \r\n with \n, leaving lone \r untouched.
// Returns the resulting slice and whether anything changed.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !slices.Contains(content, '\r') {
		return content, false
	}

	out := make([]byte, 0, len(content))
	changed := false

	i := 0
	for i < len(content) {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i += 2
			changed = true
		} else {
			out = append(out, content[i])
			i++
		}
	}
	return out, changed
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) < 3 {
		return content, false
	}

	if content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}

	return content, false
}

// Normalize strips a UTF-8 BOM and collapses CRLF pairs, returning flags
// describing what changed. Load applies it to disk content; callers feeding
// streams (stdin) can apply it themselves before AddVirtual.
func Normalize(content []byte) ([]byte, FileFlags) {
	var flags FileFlags
	if trimmed, had := removeBOM(content); had {
		content = trimmed
		flags |= FileHadBOM
	}
	if normalized, changed := normalizeCRLF(content); changed {
		content = normalized
		flags |= FileNormalizedCRLF
	}
	return content, flags
}

func normalizePath(p string) string {
	// one canonical form for cross-platform diffs
	return filepath.ToSlash(filepath.Clean(p))
}
