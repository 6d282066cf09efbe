package options

import "errors"

// ErrUnknownTag marks a record whose tag is not in the catalog for its
// context. Such records are skipped, never fatal.
var ErrUnknownTag = errors.New("options: unknown tag")
