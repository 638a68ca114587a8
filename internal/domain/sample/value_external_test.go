package sample_test

import (
	"testing"

	"github.com/kodflow/syswit/internal/domain/sample"
	"github.com/stretchr/testify/require"
)

func TestParseNumericStripsUnitSuffix(t *testing.T) {
	v := sample.ParseNumeric("16384 kB")
	got, ok := v.Int()
	require.True(t, ok)
	require.Equal(t, int64(16384), got)
}

func TestParseNumericParsesPlainInt(t *testing.T) {
	v := sample.ParseNumeric("100")
	got, ok := v.Int()
	require.True(t, ok)
	require.Equal(t, int64(100), got)
}

func TestParseNumericPreservesLeadingMinusSentinel(t *testing.T) {
	v := sample.ParseNumeric("-1")
	got, ok := v.Int()
	require.True(t, ok)
	require.Equal(t, int64(-1), got)
}

func TestParseNumericParsesFloat(t *testing.T) {
	v := sample.ParseNumeric("3.50 MHz")
	got, ok := v.Float()
	require.True(t, ok)
	require.Equal(t, 3.50, got)
}

func TestParseNumericFallsBackToStringForNonNumeric(t *testing.T) {
	v := sample.ParseNumeric("S")
	require.True(t, v.IsString())
	require.Equal(t, "S", v.String())
}
