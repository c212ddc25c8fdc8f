package balancer

import "errors"

// ErrPoolNotFound is reported by backends when the remote system does not
// know the pool. Callers branch on it with errors.Is; reads normalize it to
// an empty set and deletes to a no-op, while adds may use it to trigger
// lazy pool creation. Transport and authentication failures are ordinary
// errors and never map to this sentinel.
var ErrPoolNotFound = errors.New("pool not found")
