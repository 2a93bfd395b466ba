package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskAPIKey_HidesShortKeysEntirely(t *testing.T) {
	for _, key := range []string{"", "abc", "12345678"} {
		assert.Equal(t, "****", maskAPIKey(key), key)
	}
}

func TestMaskAPIKey_KeepsEnds(t *testing.T) {
	assert.Equal(t, "sk-o...wxyz", maskAPIKey("sk-openai-abcdefghijklmnopqrstuvwxyz"))
	assert.Equal(t, "1234...6789", maskAPIKey("123456789"))
}

func TestParseChoice_Menu(t *testing.T) {
	// Provider menu: 1 = Ollama, 2 = OpenAI, defaulting to OpenAI.
	cases := map[string]int{
		"":    2,
		"1":   1,
		"2":   2,
		"3":   2,
		"0":   2,
		"-2":  2,
		"x":   2,
		" 1 ": 2,
	}
	for input, want := range cases {
		assert.Equal(t, want, parseChoice(input, 2, 2), "input %q", input)
	}
}
