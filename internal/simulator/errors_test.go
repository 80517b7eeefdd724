package simulator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimulationCount(t *testing.T) {
	tests := []struct {
		raw      string
		expected int
		errMsg   string
	}{
		{raw: "1000", expected: 1000},
		{raw: " 25 ", expected: 25},
		{raw: "0", errMsg: "got 0"},
		{raw: "-5", errMsg: "got -5"},
		{raw: "2.5", errMsg: `got "2.5"`},
		{raw: "lots", errMsg: `got "lots"`},
		{raw: "", errMsg: `got ""`},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			n, err := ParseSimulationCount(tt.raw)
			if tt.errMsg == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, n)
				return
			}

			var countErr *InvalidSimulationCountError
			require.True(t, errors.As(err, &countErr))
			assert.Contains(t, countErr.Error(), tt.errMsg)
		})
	}
}
