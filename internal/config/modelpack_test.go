package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePack = `
temperature_profiles:
  - id: profile-1
    name: Standard Fjord
    readings:
      - day_number: 1
        temp_c: 8.0
      - day_number: 100
        temp_c: 12.0
tgc_models:
  - id: tgc-1
    name: Standard TGC
    tgc_value: 0.025
    temperature_exponent: 0.333
    weight_exponent: 0.333
    profile_id: profile-1
fcr_models:
  - id: fcr-1
    name: Standard FCR
    stages:
      - stage: parr
        fcr_value: 1.1
        duration_days: 90
mortality_models:
  - id: mortality-1
    name: Standard Mortality
    frequency: daily
    base_rate_percent: 0.02
`

func TestLoadModelPack_ParsesAllSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte(samplePack), 0644))

	pack, err := LoadModelPack(path)
	require.NoError(t, err)

	require.Len(t, pack.TemperatureProfiles, 1)
	assert.Equal(t, "profile-1", pack.TemperatureProfiles[0].ID)
	require.Len(t, pack.TemperatureProfiles[0].Readings, 2)

	require.Len(t, pack.TGCModels, 1)
	assert.Equal(t, 0.025, pack.TGCModels[0].TGCValue)
	assert.Equal(t, "profile-1", pack.TGCModels[0].ProfileID)

	require.Len(t, pack.FCRModels, 1)
	require.Len(t, pack.FCRModels[0].Stages, 1)
	assert.Equal(t, 1.1, pack.FCRModels[0].Stages[0].FCRValue)

	require.Len(t, pack.MortalityModels, 1)
	assert.Equal(t, 0.02, pack.MortalityModels[0].BaseRatePercent)
}

func TestLoadModelPack_MissingFileErrors(t *testing.T) {
	_, err := LoadModelPack("/nonexistent/models.yaml")
	assert.Error(t, err)
}
