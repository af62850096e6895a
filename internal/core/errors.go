package core

import "errors"

// ErrNotFound marks lookups of tenants, ledger entries, and API keys that do
// not exist. The API layer answers 404 for it and 500 for everything else.
var ErrNotFound = errors.New("not found")
