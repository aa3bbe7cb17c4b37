// Package store persists resource records and provisioning logs. Records are
// JSON documents keyed by the identifier column of their table.
package store

import (
	"context"
	"errors"
	"fmt"

	"vmforge/internal/resource"
)

const (
	TableVirtualMachines = "virtual_machines"
	TableNetworks        = "networks"
	TableDisks           = "disks"
	TableProvisioningLog = "provisioning_logs"
)

var ErrNotFound = errors.New("record not found")

// keyColumns maps each table to its identifier column
var keyColumns = map[string]string{
	TableVirtualMachines: "vm_id",
	TableNetworks:        "network_id",
	TableDisks:           "disk_id",
	TableProvisioningLog: "log_id",
}

// Tables returns every table a Store accepts
func Tables() []string {
	return []string{TableVirtualMachines, TableNetworks, TableDisks, TableProvisioningLog}
}

// KeyColumn returns the identifier column of table
func KeyColumn(table string) (string, error) {
	col, ok := keyColumns[table]
	if !ok {
		return "", fmt.Errorf("unknown table: %s", table)
	}
	return col, nil
}

// Store is the persistence collaborator of the provisioning service
type Store interface {
	// Insert writes rec into table. A record with an existing key replaces the
	// stored one.
	Insert(ctx context.Context, table string, rec resource.Record) error
	// SelectOne returns the first record of table whose column equals value,
	// or ErrNotFound.
	SelectOne(ctx context.Context, table, column string, value any) (resource.Record, error)
	// List returns up to limit records of table, newest first. A limit of zero
	// or less returns all records.
	List(ctx context.Context, table string, limit int) ([]resource.Record, error)
	Close() error
}

// recordKey validates table and extracts the identifier of rec
func recordKey(table string, rec resource.Record) (string, error) {
	col, err := KeyColumn(table)
	if err != nil {
		return "", err
	}
	key := rec.String(col)
	if key == "" {
		return "", fmt.Errorf("record for %s has no %s", table, col)
	}
	return key, nil
}

// matches compares a decoded record field against a lookup value
func matches(rec resource.Record, column string, value any) bool {
	v, ok := rec[column]
	if !ok {
		return false
	}
	return fmt.Sprint(v) == fmt.Sprint(value)
}
