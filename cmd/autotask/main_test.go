package main

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The --config flag steers initConfig and the credential persistence
// path, so it must be visible through viper like every other flag.
func TestConfigFlagBoundToViper(t *testing.T) {
	require.NoError(t, rootCmd.PersistentFlags().Set("config", "/tmp/alt-autotask.yml"))
	assert.Equal(t, "/tmp/alt-autotask.yml", viper.GetString("config"))
}
