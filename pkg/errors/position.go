package errors

// Position describes a location in an LKQL source buffer.
// Line and Column are 1-based; StartPos/EndPos are byte offsets.
type Position struct {
	Line     int
	Column   int
	StartPos int
	EndPos   int
}
