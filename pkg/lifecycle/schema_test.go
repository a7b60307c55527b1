package lifecycle_test

import (
	"testing"

	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/ioschema"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/lifecycle"
	"github.com/stretchr/testify/assert"
)

// TestSchemaManagerContract ensures that ioschema.Manager implements
// lifecycle.SchemaManager. The check happens at compile time.
func TestSchemaManagerContract(t *testing.T) {
	var _ lifecycle.SchemaManager = &ioschema.Manager{}
	assert.True(t, true, "ioschema.Manager should implement lifecycle.SchemaManager")
}
