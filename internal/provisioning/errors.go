package provisioning

import (
	"errors"
	"fmt"
)

var (
	ErrMissingRequiredResource = errors.New("vm, network and disk parameters are required")
	ErrInvalidBundle           = errors.New("invalid resource bundle")
)

// PersistenceError reports a failed read or write against one table
type PersistenceError struct {
	Table string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist %s record: %v", e.Table, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
