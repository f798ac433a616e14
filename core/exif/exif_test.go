package exif_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alex-voss/sdmeta/core/exif"
)

func TestBuildAndParseRoundTrip(t *testing.T) {
	block := exif.Build(exif.EmitFields{
		ImageDescription: "Workflow: a prompt", HasImageDescription: true,
		Make: "ComfyUI", HasMake: true,
		UserComment: `{"prompt":"x"}`, HasUserComment: true, RawUserComment: true,
	})

	parsed, err := exif.Parse(block)
	require.NoError(t, err)
	assert.True(t, parsed.HasImageDescription)
	assert.Equal(t, "Workflow: a prompt", parsed.ImageDescription)
	assert.True(t, parsed.HasMake)
	assert.Equal(t, "ComfyUI", parsed.Make)
	require.True(t, parsed.HasUserComment)

	text, ok := exif.DecodeUserComment(parsed.UserCommentRaw)
	require.True(t, ok)
	assert.Equal(t, `{"prompt":"x"}`, text)
}

func TestDecodeUserCommentASCIIDesignator(t *testing.T) {
	raw := exif.EncodeUserComment("hello world")
	text, ok := exif.DecodeUserComment(raw)
	require.True(t, ok)
	assert.Equal(t, "hello world", text)
}

func TestDecodeUserCommentUnicodeDesignator(t *testing.T) {
	raw := exif.EncodeUserComment("猫")
	text, ok := exif.DecodeUserComment(raw)
	require.True(t, ok)
	assert.Equal(t, "猫", text)
}

func TestSplitPrefix(t *testing.T) {
	prefix, rest := exif.SplitPrefix("Workflow: the rest")
	assert.Equal(t, "Workflow: ", prefix)
	assert.Equal(t, "the rest", rest)

	prefix, rest = exif.SplitPrefix("no prefix here")
	assert.Empty(t, prefix)
	assert.Equal(t, "no prefix here", rest)
}

func TestParseTooShort(t *testing.T) {
	_, err := exif.Parse([]byte{0x01, 0x02})
	assert.Error(t, err)
}
