// Package sourcemap renders source line excerpts for diagnostics. It lets
// the CLI show the offending line alongside a lexer or parser error
// without re-scanning the source from the start at every error site.
package sourcemap

import "sort"

// LineIndex pre-computes line start offsets for a source string, giving
// O(log n) line-number lookups. Lines are 1-indexed to match the line
// numbers already carried on tokens and AST errors.
type LineIndex struct {
	source     string
	lineStarts []int // byte offset of the start of line i+1
}

// NewLineIndex builds a LineIndex over source.
func NewLineIndex(source string) *LineIndex {
	idx := &LineIndex{source: source, lineStarts: []int{0}}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			idx.lineStarts = append(idx.lineStarts, i+1)
		}
	}
	return idx
}

// LineCount reports the number of lines in the source.
func (idx *LineIndex) LineCount() int {
	return len(idx.lineStarts)
}

// Line returns the text of the given 1-indexed line, without its trailing
// newline. ok is false if line is out of range.
func (idx *LineIndex) Line(line int) (text string, ok bool) {
	if line < 1 || line > len(idx.lineStarts) {
		return "", false
	}
	start := idx.lineStarts[line-1]
	end := len(idx.source)
	if line < len(idx.lineStarts) {
		end = idx.lineStarts[line] - 1
	}
	if end > start && idx.source[end-1] == '\r' {
		end--
	}
	return idx.source[start:end], true
}

// LineAt finds the 1-indexed line number containing the given byte offset.
func (idx *LineIndex) LineAt(offset int) int {
	if offset < 0 {
		offset = 0
	}
	line := sort.Search(len(idx.lineStarts), func(i int) bool {
		return idx.lineStarts[i] > offset
	})
	if line < 1 {
		line = 1
	}
	return line
}

// Excerpt renders the source line at (line, column) followed by a caret
// line pointing at column, for inclusion in a diagnostic message. column is
// 1-indexed; an out-of-range line renders as the empty string.
func Excerpt(idx *LineIndex, line, column int) string {
	text, ok := idx.Line(line)
	if !ok {
		return ""
	}
	caretPos := column - 1
	if caretPos < 0 {
		caretPos = 0
	}
	if caretPos > len(text) {
		caretPos = len(text)
	}
	caret := make([]byte, caretPos)
	for i := range caret {
		if text[i] == '\t' {
			caret[i] = '\t'
		} else {
			caret[i] = ' '
		}
	}
	return text + "\n" + string(caret) + "^"
}
