package creations

import "errors"

// ErrNotFound indicates the creation does not exist.
var ErrNotFound = errors.New("creation not found")

// ErrNotOwner indicates the acting user does not own the creation.
var ErrNotOwner = errors.New("creation not owned by user")

// ErrNotPublishable indicates publish was toggled on a non-image creation.
var ErrNotPublishable = errors.New("only image creations can be published")
