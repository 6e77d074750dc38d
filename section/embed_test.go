package section

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedder_NewFile(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Set("protogen", "messages", "struct Msg;\n"))
	require.NoError(t, e.Set("protogen", "enums", "enum Kind { A };"))

	out, err := e.Apply(nil)
	require.NoError(t, err)

	expected := "/* GENERATED CODE BEGIN protogen messages */\nstruct Msg;\n/* GENERATED CODE END protogen messages */\n" +
		"\n" +
		"/* GENERATED CODE BEGIN protogen enums */\nenum Kind { A };\n/* GENERATED CODE END protogen enums */\n"
	assert.Equal(t, expected, string(out))
}

func TestEmbedder_ReplacesInPlaceAndAppendsMissing(t *testing.T) {
	existing := "#include \"app.h\"\n" +
		"/* GENERATED CODE BEGIN protogen messages */\nstale;\n/* GENERATED CODE END protogen messages */\n" +
		"int user_code(void) { return 1; }"

	e := NewEmbedder()
	require.NoError(t, e.Set("protogen", "messages", "fresh;\n"))
	require.NoError(t, e.Set("protogen", "enums", "enum Kind { A };\n"))

	out, err := e.Apply([]byte(existing))
	require.NoError(t, err)

	expected := "#include \"app.h\"\n" +
		"/* GENERATED CODE BEGIN protogen messages */\nfresh;\n/* GENERATED CODE END protogen messages */\n" +
		"int user_code(void) { return 1; }\n" +
		"\n" +
		"/* GENERATED CODE BEGIN protogen enums */\nenum Kind { A };\n/* GENERATED CODE END protogen enums */\n"
	assert.Equal(t, expected, string(out))

	again, err := e.Apply(out)
	require.NoError(t, err)
	assert.Equal(t, string(out), string(again), "applying twice is a no-op")
}

func TestEmbedder_LeavesUserSectionsAndUnknownBlocksAlone(t *testing.T) {
	existing := "/* USER CODE BEGIN Keep */\nmine\n/* USER CODE END Keep */\n" +
		"/* GENERATED CODE BEGIN other thing */\nkeep me\n/* GENERATED CODE END other thing */\n"

	e := NewEmbedder()
	require.NoError(t, e.Set("other", "thing2", "x\n"))

	out, err := e.Apply([]byte(existing))
	require.NoError(t, err)
	assert.Contains(t, string(out), "mine\n")
	assert.Contains(t, string(out), "keep me\n")
}

func TestEmbedder_Errors(t *testing.T) {
	e := NewEmbedder()
	assert.True(t, errors.Is(e.Set("two words", "x", ""), ErrInvalidName))
	require.NoError(t, e.Set("tool", "x", ""))
	assert.True(t, errors.Is(e.Set("tool", "x", ""), ErrDuplicateSection))

	_, err := e.Apply([]byte("/* GENERATED CODE BEGIN tool x */\n"))
	assert.True(t, errors.Is(err, ErrUnterminatedSection))
}
