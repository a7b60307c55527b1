package iodb

import (
	"testing"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolConfig(t *testing.T) {
	cfg := config.New().Database
	cfg.Host = "db.example.org"
	cfg.Port = 6432
	cfg.User = "fim"
	cfg.Password = `p@ss/w:rd 'x'`
	cfg.Database = "hydrofabric"
	cfg.SSLMode = "disable"

	pc, err := poolConfig(&cfg)
	require.NoError(t, err)
	cc := pc.ConnConfig
	assert.Equal(t, "db.example.org", cc.Host)
	assert.Equal(t, uint16(6432), cc.Port)
	assert.Equal(t, `p@ss/w:rd 'x'`, cc.Password)
	assert.Equal(t, "hydrofabric", cc.Database)
	assert.Equal(t, "fim", cc.RuntimeParams["application_name"])
	assert.Nil(t, cc.TLSConfig)
	assert.Equal(t, int32(4), pc.MaxConns)
}

func TestPoolConfigBadSSLMode(t *testing.T) {
	cfg := config.New().Database
	cfg.SSLMode = "sometimes"
	_, err := poolConfig(&cfg)
	assert.Error(t, err)
}
