package playerio

import (
	"fmt"
	"math"

	apperrors "github.com/duskhaven/duskhaven/internal/platform/errors"
)

// Row is an immutable, column-addressed snapshot of one fetched player row.
//
// Loader steps read from the same snapshot without advancing any cursor, so
// step order can never corrupt another step's view of the base row. Accessors
// record the first conversion failure; callers check Err once per step
// instead of threading an error through every column read.
type Row struct {
	cols map[string]any
	err  error
}

// NewRow builds a snapshot from column values. The map is retained; callers
// must not mutate it afterwards.
func NewRow(cols map[string]any) *Row {
	return &Row{cols: cols}
}

// Err returns the first accessor failure recorded on this snapshot.
func (r *Row) Err() error {
	return r.err
}

// Has reports whether the snapshot carries a column.
func (r *Row) Has(name string) bool {
	_, ok := r.cols[name]
	return ok
}

func (r *Row) fail(name, reason string) {
	if r.err != nil {
		return
	}
	r.err = apperrors.WithMetadata(
		apperrors.CodeMalformedRow,
		fmt.Sprintf("malformed player row: column %s %s", name, reason),
		map[string]string{"column": name},
	)
}

// Int64 returns an integer column, recording a malformed-row failure when the
// column is absent or not an integer.
func (r *Row) Int64(name string) int64 {
	value, ok := r.cols[name]
	if !ok {
		r.fail(name, "is missing")
		return 0
	}
	switch v := value.(type) {
	case int64:
		return v
	case nil:
		return 0
	default:
		r.fail(name, fmt.Sprintf("has type %T, want integer", value))
		return 0
	}
}

// Uint64 returns a non-negative integer column.
func (r *Row) Uint64(name string) uint64 {
	v := r.Int64(name)
	if v < 0 {
		r.fail(name, "is negative")
		return 0
	}
	return uint64(v)
}

// Uint32 returns an integer column constrained to uint32 range.
func (r *Row) Uint32(name string) uint32 {
	v := r.Int64(name)
	if v < 0 || v > math.MaxUint32 {
		r.fail(name, "is out of uint32 range")
		return 0
	}
	return uint32(v)
}

// Uint16 returns an integer column constrained to uint16 range.
func (r *Row) Uint16(name string) uint16 {
	v := r.Int64(name)
	if v < 0 || v > math.MaxUint16 {
		r.fail(name, "is out of uint16 range")
		return 0
	}
	return uint16(v)
}

// Uint8 returns an integer column constrained to uint8 range.
func (r *Row) Uint8(name string) uint8 {
	v := r.Int64(name)
	if v < 0 || v > math.MaxUint8 {
		r.fail(name, "is out of uint8 range")
		return 0
	}
	return uint8(v)
}

// Int32 returns an integer column constrained to int32 range.
func (r *Row) Int32(name string) int32 {
	v := r.Int64(name)
	if v < math.MinInt32 || v > math.MaxInt32 {
		r.fail(name, "is out of int32 range")
		return 0
	}
	return int32(v)
}

// Bool returns an integer column interpreted as a boolean flag.
func (r *Row) Bool(name string) bool {
	return r.Int64(name) != 0
}

// String returns a text column. Byte columns are accepted for drivers that
// scan TEXT into []byte.
func (r *Row) String(name string) string {
	value, ok := r.cols[name]
	if !ok {
		r.fail(name, "is missing")
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		r.fail(name, fmt.Sprintf("has type %T, want text", value))
		return ""
	}
}

// Bytes returns a copy of a blob column; NULL yields nil.
func (r *Row) Bytes(name string) []byte {
	value, ok := r.cols[name]
	if !ok {
		r.fail(name, "is missing")
		return nil
	}
	switch v := value.(type) {
	case []byte:
		out := make([]byte, len(v))
		copy(out, v)
		return out
	case string:
		return []byte(v)
	case nil:
		return nil
	default:
		r.fail(name, fmt.Sprintf("has type %T, want blob", value))
		return nil
	}
}
