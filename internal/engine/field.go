package engine

// Field carries one decoded parameter in three states: absent (the caller
// never mentioned it), null (the caller explicitly cleared it), or a value.
// The zero Field is absent.
type Field[T any] struct {
	present bool
	null    bool
	value   T
}

// FieldOf returns a Field holding a concrete value.
func FieldOf[T any](v T) Field[T] {
	return Field[T]{present: true, value: v}
}

// NullField returns a Field that was explicitly cleared.
func NullField[T any]() Field[T] {
	return Field[T]{present: true, null: true}
}

// Present reports whether the caller mentioned the field at all.
func (f Field[T]) Present() bool { return f.present }

// Null reports whether the caller explicitly cleared the field.
func (f Field[T]) Null() bool { return f.present && f.null }

// Value returns the held value and whether one is held.
func (f Field[T]) Value() (T, bool) {
	if !f.present || f.null {
		var zero T
		return zero, false
	}
	return f.value, true
}

// Or returns the held value or the fallback when absent or null.
func (f Field[T]) Or(fallback T) T {
	if v, ok := f.Value(); ok {
		return v
	}
	return fallback
}
