package cnpj

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		in    string
		valid bool
	}{
		{"11222333000181", true},
		{"11.222.333/0001-81", true},
		{"12345678000195", true},
		{"11222333000182", false},
		{"1122233300018", false},
		{"00000000000000", false},
		{"", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			err := Validate(tc.in)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestComputeCheckDigits(t *testing.T) {
	full, err := ComputeCheckDigits("11.222.333/0001")
	require.NoError(t, err)
	assert.Equal(t, "11222333000181", full)

	_, err = ComputeCheckDigits("123")
	assert.Error(t, err)
}
