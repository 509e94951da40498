package errors

import "github.com/nooga/tsblame/pkg/source"

// Position represents a specific location in a declaration source.
// It includes line and column numbers (1-based) for human-readability,
// and byte offsets (0-based) for tooling.
type Position struct {
	Line     int                // 1-based line number
	Column   int                // 1-based column number
	StartPos int                // 0-based byte offset of the start of the error span
	EndPos   int                // 0-based byte offset of the end of the error span (exclusive)
	Source   *source.SourceFile // Reference to the source file
}

// PositionAt builds a Position for a byte offset in src.
func PositionAt(src *source.SourceFile, offset int) Position {
	pos := Position{StartPos: offset, EndPos: offset + 1, Source: src}
	if src != nil {
		pos.Line, pos.Column = src.LineColumn(offset)
	}
	return pos
}
