package stacktrace

import "strings"

// InternalPaths extracts "internal/...go:line" frames from a debug.Stack dump,
// dropping runtime and third-party frames.
func InternalPaths(stack []byte) []string {
	var paths []string
	for line := range strings.Lines(string(stack)) {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "/") && !strings.Contains(line, ".go:") {
			continue
		}

		_, rel, found := strings.Cut(line, "/internal/")
		if !found {
			continue
		}

		// drop the trailing " +0x1f" program counter offset
		if i := strings.IndexByte(rel, ' '); i >= 0 {
			rel = rel[:i]
		}
		if strings.Contains(rel, ".go:") {
			paths = append(paths, "internal/"+rel)
		}
	}
	return paths
}
