package errors

import "errors"

// ErrSubscriptionNotFound indicates that the user has never had a plan activated
var ErrSubscriptionNotFound = errors.New("subscription not found")
