package tools

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/statkit/rsessiond/session"
)

// topLevelAssign matches an R top-level assignment at the start of a
// statement: `name <- value`, `name <<- value`, or `name = value`. Only
// unindented statements are considered top-level; assignments inside
// function bodies are conventionally indented and create local bindings,
// not global ones.
var topLevelAssign = regexp.MustCompile(`^([a-zA-Z.][a-zA-Z0-9._]*)\s*(<<-|<-|=)([^=]|$)`)

// assignedNames extracts the top-level names an R snippet would assign.
// Statements are split on newlines and semicolons. Duplicates are removed,
// first occurrence order is kept.
func assignedNames(code string) []string {
	var names []string
	seen := make(map[string]bool)

	for _, line := range strings.Split(code, "\n") {
		for i, stmt := range strings.Split(line, ";") {
			if i > 0 {
				stmt = strings.TrimSpace(stmt)
			}
			m := topLevelAssign.FindStringSubmatch(stmt)
			if m == nil {
				continue
			}
			if !seen[m[1]] {
				seen[m[1]] = true
				names = append(names, m[1])
			}
		}
	}
	return names
}

// checkReassignment refuses code that would silently overwrite an existing
// top-level variable. existing is the probed set of names currently bound in
// the target environment. The returned error names the offending variable;
// the "overwrite existing variable" phrase is part of the client contract.
func checkReassignment(code string, existing map[string]bool) error {
	for _, name := range assignedNames(code) {
		if existing[name] {
			return fmt.Errorf("%w: refusing to overwrite existing variable %q; pass allow_reassign=true to permit",
				ErrReassignmentDenied, name)
		}
	}
	return nil
}

// checkCreateArguments enforces the create_document exclusivity rule:
// exactly one of "blank in-memory buffer" or "file at path" per call. The
// "Cannot specify both" phrase is part of the client contract.
func checkCreateArguments(blank bool, path string) error {
	if blank && path != "" {
		return fmt.Errorf("%w: Cannot specify both a blank document and a file path", ErrConflictingArguments)
	}
	return nil
}

// checkRangeShape validates the argument-level properties of a line range:
// both endpoints positive, start not after end. Document-length bounds are
// checked later, against the buffer read inside the serializer.
func checkRangeShape(rng session.Range) error {
	if rng.StartLine < 1 || rng.EndLine < 1 {
		return fmt.Errorf("%w: line numbers are 1-based and must be positive", ErrInvalidRange)
	}
	if rng.StartLine > rng.EndLine {
		return fmt.Errorf("%w: start_line %d is after end_line %d", ErrInvalidRange, rng.StartLine, rng.EndLine)
	}
	return nil
}

// checkRangeBounds validates a line range against the document length.
func checkRangeBounds(rng session.Range, lineCount int) error {
	if rng.EndLine > lineCount {
		return fmt.Errorf("%w: end_line %d exceeds document length %d", ErrInvalidRange, rng.EndLine, lineCount)
	}
	return nil
}

// splitLines splits buffer contents into lines. A single trailing newline
// does not count as an extra empty line.
func splitLines(contents string) []string {
	contents = strings.TrimSuffix(contents, "\n")
	if contents == "" {
		return nil
	}
	return strings.Split(contents, "\n")
}
