package entitlements

import "errors"

// ErrQuotaExceeded indicates a free-tier user has spent their usage counter.
var ErrQuotaExceeded = errors.New("free usage limit reached")

// ErrPlanRequired indicates an operation available to premium plans only.
var ErrPlanRequired = errors.New("premium plan required")
