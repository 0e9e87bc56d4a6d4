package dto

import "encoding/json"

// Nullable tells an omitted JSON field apart from an explicit null.
// Set reports that the key was present; Valid that it held a value.
type Nullable[T any] struct {
	Set   bool
	Valid bool
	Value T
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Valid = false
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Ptr returns the value, or nil when absent or null.
func (n Nullable[T]) Ptr() *T {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// Cleared reports an explicit null.
func (n Nullable[T]) Cleared() bool {
	return n.Set && !n.Valid
}
