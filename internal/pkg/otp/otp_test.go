package otp

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestNewNumeric(t *testing.T) {
	tests := []struct {
		name    string
		digits  int
		want    int
		wantErr error
	}{
		{name: "zero falls back to default", digits: 0, want: DefaultDigits},
		{name: "lower bound", digits: 4, want: 4},
		{name: "upper bound", digits: 10, want: 10},
		{name: "too short", digits: 3, wantErr: ErrInvalidDigits},
		{name: "too long", digits: 11, wantErr: ErrInvalidDigits},
		{name: "negative", digits: -1, wantErr: ErrInvalidDigits},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewNumeric(tt.digits)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, g)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, g.Digits())
		})
	}
}

func TestNumeric_Generate_Shape(t *testing.T) {
	for _, digits := range []int{4, 6, 8, 10} {
		g, err := NewNumeric(digits)
		require.NoError(t, err)

		for range 500 {
			code, err := g.Generate()
			require.NoError(t, err)
			require.Len(t, code, digits)
			for _, r := range code {
				require.True(t, r >= '0' && r <= '9', "non-digit in %q", code)
			}
		}
	}
}

func TestNumeric_Generate_KeepsLeadingZeros(t *testing.T) {
	// Arrange
	g, err := NewNumeric(6)
	require.NoError(t, err)
	g.reader = bytes.NewReader(make([]byte, 64))

	// Act
	code, err := g.Generate()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "000000", code)
}

func TestNumeric_Generate_EntropyFailure(t *testing.T) {
	g, err := NewNumeric(6)
	require.NoError(t, err)
	g.reader = failingReader{}

	code, err := g.Generate()

	assert.Error(t, err)
	assert.Empty(t, code)
}

// Chi-square goodness of fit per digit position. With 9 degrees of freedom the
// critical value at p=0.0001 is 33.72.
func TestNumeric_Generate_Uniform(t *testing.T) {
	if testing.Short() {
		t.Skip("uniformity check draws 100k codes")
	}

	const (
		samples  = 100_000
		critical = 33.72
	)

	g, err := NewNumeric(6)
	require.NoError(t, err)

	var counts [6][10]int
	for range samples {
		code, err := g.Generate()
		require.NoError(t, err)
		for pos, r := range code {
			counts[pos][r-'0']++
		}
	}

	expected := float64(samples) / 10
	for pos := range counts {
		var chi float64
		for _, observed := range counts[pos] {
			d := float64(observed) - expected
			chi += d * d / expected
		}
		assert.Lessf(t, chi, critical, "position %d is skewed: %v", pos, counts[pos])
	}
}
