package db

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig("postgres://taskdeck:pw@localhost:5432/taskdeck?sslmode=disable", 8)
	require.NoError(t, err)
	require.EqualValues(t, 8, cfg.MaxConns)
	require.Equal(t, "taskdeck", cfg.ConnConfig.Database)

	defaults, err := ParseConfig("postgres://taskdeck:pw@localhost:5432/taskdeck?sslmode=disable&pool_max_conns=3", 0)
	require.NoError(t, err)
	require.EqualValues(t, 3, defaults.MaxConns)

	_, err = ParseConfig("postgres://%zz", 0)
	require.ErrorContains(t, err, "platform/db: parse config")
}
