package ioschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollationSQL(t *testing.T) {
	tests := []struct {
		name, table, column string
		varchar             int
		expected            string
	}{
		{
			name: "hydro_tables huc", table: "hydro_tables", column: "huc",
			varchar:  8,
			expected: `ALTER TABLE hydro_tables ALTER COLUMN huc TYPE VARCHAR(8) COLLATE "C"`,
		},
		{
			name: "publish_runs version", table: "publish_runs", column: "version",
			varchar:  50,
			expected: `ALTER TABLE publish_runs ALTER COLUMN version TYPE VARCHAR(50) COLLATE "C"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, collationSQL(tt.table, tt.column, tt.varchar))
		})
	}
}
