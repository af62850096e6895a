package dump

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

const recordDumpVersion = 1

// RecordDump is the fallback archive format: serialized table contents of
// the domain allow-list plus the ledger tables, one JSON document per
// archive.
type RecordDump struct {
	FormatVersion int            `json:"format_version"`
	Schema        string         `json:"schema"`
	CreatedAt     time.Time      `json:"created_at"`
	Tables        []TableRecords `json:"tables"`
}

// TableRecords holds one table's column names and row values.
type TableRecords struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// EncodeRecordDump serializes the contents of every in-scope table in the
// given schema. Ledger tables are included in the dump; the restore path is
// what excludes them from cleanup.
func EncodeRecordDump(ctx context.Context, db Querier, schema string) ([]byte, error) {
	if err := ValidateSchemaName(schema); err != nil {
		return nil, err
	}

	d := RecordDump{
		FormatVersion: recordDumpVersion,
		Schema:        schema,
		CreatedAt:     time.Now().UTC(),
	}

	tables := append(append([]string{}, DomainTables...), LedgerTables...)
	for _, table := range tables {
		tr, err := dumpTable(ctx, db, schema, table)
		if err != nil {
			return nil, fmt.Errorf("dump table %s: %w", table, err)
		}
		d.Tables = append(d.Tables, *tr)
	}

	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode record dump: %w", err)
	}
	return data, nil
}

func dumpTable(ctx context.Context, db Querier, schema, table string) (*TableRecords, error) {
	rows, err := db.Query(ctx, "SELECT * FROM "+pgx.Identifier{schema, table}.Sanitize())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tr := &TableRecords{Name: table}
	for _, fd := range rows.FieldDescriptions() {
		tr.Columns = append(tr.Columns, string(fd.Name))
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		tr.Rows = append(tr.Rows, normalizeRow(values))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tr, nil
}

// normalizeRow makes row values JSON-stable: timestamps become RFC 3339
// strings so they survive the round trip through the archive.
func normalizeRow(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		switch t := v.(type) {
		case time.Time:
			out[i] = t.UTC().Format(time.RFC3339Nano)
		default:
			out[i] = v
		}
	}
	return out
}

// DecodeRecordDump parses and validates a record-format archive. The whole
// document is decoded up front: a restore must never start deleting rows on
// the strength of a dump it cannot fully read.
func DecodeRecordDump(data []byte) (*RecordDump, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var d RecordDump
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decode record dump: %w", err)
	}
	if d.FormatVersion != recordDumpVersion {
		return nil, fmt.Errorf("unsupported record dump version %d", d.FormatVersion)
	}
	if err := ValidateSchemaName(d.Schema); err != nil {
		return nil, err
	}

	for _, tr := range d.Tables {
		for i, row := range tr.Rows {
			if len(row) != len(tr.Columns) {
				return nil, fmt.Errorf("table %s row %d: %d values for %d columns",
					tr.Name, i, len(row), len(tr.Columns))
			}
		}
	}

	return &d, nil
}
