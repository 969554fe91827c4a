package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringList_ValueOfNilIsEmptyArray(t *testing.T) {
	var l StringList

	v, err := l.Value()

	require.NoError(t, err)
	assert.Equal(t, "[]", string(v.([]byte)))
}

func TestStringList_ScanRoundTrip(t *testing.T) {
	original := StringList{"rice noodles", "beef", "star anise"}
	raw, err := original.Value()
	require.NoError(t, err)

	var scanned StringList
	require.NoError(t, scanned.Scan(raw))
	assert.Equal(t, original, scanned)
}

func TestStringList_ScanString(t *testing.T) {
	var l StringList

	require.NoError(t, l.Scan(`["salt","pepper"]`))
	assert.Equal(t, StringList{"salt", "pepper"}, l)
}

func TestStringList_ScanNil(t *testing.T) {
	l := StringList{"stale"}

	require.NoError(t, l.Scan(nil))
	assert.Empty(t, l)
}

func TestStringList_ScanUnsupportedType(t *testing.T) {
	var l StringList

	assert.Error(t, l.Scan(42))
}
