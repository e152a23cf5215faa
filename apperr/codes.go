package apperr

import "fmt"

// UniqueSaveError is returned by catalogue Save operations when the
// natural-key uniqueness constraint (currency.code, wallet.name,
// actor.alias, item_tag.name) is violated. Grounded in
// original_source/monee/src/shared (UniqueSaveError is referenced
// throughout the item_tags and sync domain files read for this project).
type UniqueSaveError struct {
	Entity string
	Key    string
}

func (e UniqueSaveError) Error() string {
	return fmt.Sprintf("%s: %q already exists", e.Entity, e.Key)
}

func (e UniqueSaveError) Code() string {
	return e.Entity + ".already_exists"
}

// NotFoundError is returned by resolve-by-id operations when a referenced
// entity is absent from the catalogue at event time (spec.md §3 invariant:
// every id referenced by an event must resolve in the catalogue).
type NotFoundError struct {
	Entity string
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e NotFoundError) Code() string {
	return e.Entity + ".not_found"
}
