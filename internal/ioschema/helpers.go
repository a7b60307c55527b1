package ioschema

import "fmt"

// collationSQL returns the statement setting "C" collation on a varchar
// column.
func collationSQL(table, column string, varchar int) string {
	return fmt.Sprintf(
		`ALTER TABLE %s ALTER COLUMN %s TYPE VARCHAR(%d) COLLATE "C"`,
		table, column, varchar,
	)
}
