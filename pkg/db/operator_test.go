package db_test

import (
	"testing"

	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iodb"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/db"
)

// TestPgxOperatorImplementsInterface verifies at compile time that
// PgxOperator implements db.Operator.
func TestPgxOperatorImplementsInterface(t *testing.T) {
	var _ db.Operator = (*iodb.PgxOperator)(nil)
}
