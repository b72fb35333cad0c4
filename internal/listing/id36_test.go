package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID36(t *testing.T) {
	assert.Equal(t, "1", ID36(1))
	assert.Equal(t, "z", ID36(35))
	assert.Equal(t, "10", ID36(36))

	for _, id := range []int64{1, 35, 36, 1295, 123456789} {
		parsed, err := ParseID36(ID36(id))
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	}
}

func TestParseID36(t *testing.T) {
	id, err := ParseID36("")
	require.NoError(t, err)
	assert.Zero(t, id)

	id, err = ParseID36("Z")
	require.NoError(t, err)
	assert.Equal(t, int64(35), id)

	_, err = ParseID36("not-an-id")
	assert.Error(t, err)
	_, err = ParseID36("0")
	assert.Error(t, err)
}
