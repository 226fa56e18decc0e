package topomap

import (
	"errors"
	"fmt"

	"github.com/beetlebugorg/topomap/internal/mpk"
)

// Container failure classes, reachable with errors.Is through a FormatError.
var (
	ErrTruncated      = mpk.ErrTruncated
	ErrSchema         = mpk.ErrSchema
	ErrUnknownArcType = mpk.ErrUnknownArcType
	ErrCorruptBlock   = mpk.ErrCorruptBlock
)

// FormatError indicates the map container could not be decoded.
// No partial map is returned alongside it.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("invalid map container %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("invalid map container: %v", e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// StructuralError indicates a topology that cannot be turned into features:
// a ring reference outside the arc pool or an arc of unknown type.
type StructuralError struct {
	Layer   LayerID
	Polygon int // -1 when the error concerns an arc
	Ring    int
	Ref     int32
	Reason  string
}

func (e *StructuralError) Error() string {
	if e.Polygon < 0 {
		return fmt.Sprintf("layer %v: arc %d: %s", e.Layer, e.Ref, e.Reason)
	}
	return fmt.Sprintf("layer %v: polygon %d ring %d: reference %d: %s",
		e.Layer, e.Polygon, e.Ring, e.Ref, e.Reason)
}

// IsStructural reports whether err is or wraps a StructuralError.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}
