package verdict

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writePolicy(t, `
weights:
  rules: 0.4
  quality: 0.2
  ocr: 0.2
  advisory: 0.2
thresholds:
  approve: 0.9
  review: 0.7
  suspicious: 0.5
expiry_window_years: 10
`)

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.InDelta(t, 0.4, cfg.Weights.Rules, 1e-9)
	assert.InDelta(t, 0.9, cfg.Thresholds.Approve, 1e-9)
	assert.Equal(t, 10, cfg.ExpiryWindowYears)
	// Unspecified settings keep their defaults.
	assert.Equal(t, 150, cfg.MaxAgeYears)
}

func TestLoadConfig_RejectsInvalidPolicy(t *testing.T) {
	for name, content := range map[string]string{
		"weights do not sum to 1": `
weights: {rules: 0.5, quality: 0.5, ocr: 0.5, advisory: 0.5}
`,
		"thresholds out of order": `
thresholds: {approve: 0.5, review: 0.7, suspicious: 0.3}
`,
		"negative weight": `
weights: {rules: 1.5, quality: -0.5, ocr: 0, advisory: 0}
`,
		"not yaml": "{{{",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writePolicy(t, content))
			assert.Error(t, err)
		})
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}
