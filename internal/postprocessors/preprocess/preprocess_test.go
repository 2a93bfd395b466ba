package preprocess

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragchat/internal/core/ports/driven"
)

// mapLemmatizer is a deterministic lemmatizer for tests.
type mapLemmatizer map[string]string

func (m mapLemmatizer) Lemma(word string) string {
	if lemma, ok := m[word]; ok {
		return lemma
	}
	return word
}

func newTestPreprocessor(t *testing.T) *Preprocessor {
	t.Helper()
	p, err := New(WithLemmatizer(mapLemmatizer{
		"cats":      "cat",
		"documents": "document",
		"indexes":   "index",
		"mice":      "mouse",
	}))
	require.NoError(t, err)
	return p
}

func TestNew_ImplementsInterface(t *testing.T) {
	p := newTestPreprocessor(t)
	var _ driven.TextPreprocessor = p
	assert.Equal(t, "preprocess", p.Name())
}

func TestPreprocess(t *testing.T) {
	p := newTestPreprocessor(t)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercases and removes stop words",
			input:    "The Cats are on the Mat",
			expected: "cat mat",
		},
		{
			name:     "drops punctuation and numbers",
			input:    "Build 42 indexes, quickly!",
			expected: "build index quickly",
		},
		{
			name:     "splits contractions and drops clitics",
			input:    "Don't delete the documents",
			expected: "delete document",
		},
		{
			name:     "drops hyphenated and dotted tokens",
			input:    "state-of-the-art e.g. search",
			expected: "search",
		},
		{
			name:     "collapses whitespace",
			input:    "  alpha\n\tbeta   gamma  ",
			expected: "alpha beta gamma",
		},
		{
			name:     "keeps non-ascii letters",
			input:    "Café Mice",
			expected: "café mouse",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "only stop words",
			input:    "it is what it is",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.Preprocess(tt.input))
		})
	}
}

func TestPreprocess_Deterministic(t *testing.T) {
	p := newTestPreprocessor(t)
	input := "Retrieval-augmented generation answers questions using documents."

	first := p.Preprocess(input)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, p.Preprocess(input))
	}
}

func TestPreprocess_ConcurrentUse(t *testing.T) {
	p := newTestPreprocessor(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "cat mat", p.Preprocess("the cats on the mat"))
		}()
	}
	wg.Wait()
}

func TestWithStopWords(t *testing.T) {
	p, err := New(WithLemmatizer(mapLemmatizer{}), WithStopWords([]string{"alpha"}))
	require.NoError(t, err)

	assert.Equal(t, "the beta", p.Preprocess("alpha the beta"))
}

func TestNew_DefaultLemmatizer(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	assert.Equal(t, "cat", p.Preprocess("cats"))
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"simple words", "hello world", []string{"hello", "world"}},
		{"trailing punctuation", "hello, world!", []string{"hello", ",", "world", "!"}},
		{"leading punctuation", "(quoted)", []string{"(", "quoted", ")"}},
		{"negation", "don't", []string{"do", "n't"}},
		{"possessive", "John's", []string{"John", "'s"}},
		{"curly apostrophe", "we’re", []string{"we", "’re"}},
		{"inner hyphen kept", "well-known", []string{"well-known"}},
		{"numbers", "v2 3.14", []string{"v2", "3.14"}},
		{"only punctuation", "...", []string{".", ".", "."}},
		{"empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tokenize(tt.input))
		})
	}
}

func TestEnglishStopWords(t *testing.T) {
	words := EnglishStopWords()

	assert.Len(t, words, 179)
	assert.Contains(t, words, "the")
	assert.Contains(t, words, "wouldn't")
	assert.NotContains(t, words, "search")
}
