package stars

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderRoundTrip(t *testing.T) {
	t.Parallel()

	for r := 0.0; r <= 5.0; r += 0.5 {
		txt, err := Render(r)
		require.NoError(t, err)

		parsed, err := ToFloat(txt)
		require.NoError(t, err)

		rendered, err := Render(parsed)
		require.NoError(t, err)
		assert.Equal(t, txt, rendered, "rating %v", r)
	}
}

func TestRenderOutOfRange(t *testing.T) {
	t.Parallel()

	_, err := Render(-0.5)
	assert.Error(t, err)
	_, err = Render(5.5)
	assert.Error(t, err)
}

func TestRenderRoundsDownToHalfStep(t *testing.T) {
	t.Parallel()

	txt, err := Render(3.7)
	require.NoError(t, err)
	assert.Equal(t, "★★★½", txt)
}

func TestToFloatUnknownGlyph(t *testing.T) {
	t.Parallel()

	_, err := ToFloat("***")
	assert.Error(t, err)
}
