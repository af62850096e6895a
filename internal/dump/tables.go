package dump

import (
	"fmt"
	"regexp"
)

// DomainTables lists the clinic tables covered by the record-level dump,
// ordered parents before children so replayed inserts satisfy foreign keys.
// Deletes during restore walk this list in reverse.
var DomainTables = []string{
	"patients",
	"clinicians",
	"appointments",
	"treatment_plans",
	"treatments",
	"clinical_notes",
	"inventory_items",
	"invoices",
	"invoice_items",
	"ratings",
}

// LedgerTables hold the backup catalog and schedule. They may appear inside
// a dump, but a restore never truncates or deletes them: wiping the ledger
// would destroy the audit trail of the restore itself.
var LedgerTables = []string{
	"backup_records",
	"backup_schedule",
}

// validSchemaNameRe matches only lowercase identifiers. Schema names are
// interpolated into DDL and CLI arguments, so anything else is rejected.
var validSchemaNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func ValidateSchemaName(name string) error {
	if !validSchemaNameRe.MatchString(name) {
		return fmt.Errorf("invalid schema name %q", name)
	}
	return nil
}

func isDomainTable(name string) bool {
	for _, t := range DomainTables {
		if t == name {
			return true
		}
	}
	return false
}
