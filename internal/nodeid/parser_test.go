package nodeid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name         string
		rawID        string
		expectErr    bool
		expectedAddr Address
	}{
		{
			name:         "binary",
			rawID:        "binary.core",
			expectedAddr: Address{Kind: Binary, Name: "core"},
		},
		{
			name:         "run with dashes",
			rawID:        "run.unit-tests",
			expectedAddr: Address{Kind: Run, Name: "unit-tests"},
		},
		{
			name:      "error - empty string",
			rawID:     "",
			expectErr: true,
		},
		{
			name:      "error - no kind",
			rawID:     "core",
			expectErr: true,
		},
		{
			name:      "error - unknown kind",
			rawID:     "step.core",
			expectErr: true,
		},
		{
			name:      "error - nested name",
			rawID:     "binary.a.b",
			expectErr: true,
		},
		{
			name:      "error - leading digit",
			rawID:     "binary.1x",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			addr, err := Parse(tc.rawID)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedAddr, addr)
			assert.Equal(t, tc.rawID, addr.String())
		})
	}
}

func TestParseTarget(t *testing.T) {
	addr, err := ParseTarget("app", Binary)
	require.NoError(t, err)
	assert.Equal(t, NewBinary("app"), addr)

	addr, err = ParseTarget("run.smoke", Binary)
	require.NoError(t, err)
	assert.Equal(t, NewRun("smoke"), addr)

	_, err = ParseTarget("bad name", Run)
	assert.Error(t, err)
}
