package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Document is a source file read from a corpus folder.
// It only lives for the duration of an index build.
type Document struct {
	// Path is the file path the text was read from.
	Path string

	// Text is the raw file content.
	Text string
}

// RecognisedExtensions lists the file types indexed from a corpus folder.
func RecognisedExtensions() []string {
	return []string{".md", ".mdx", ".txt", ".json"}
}

// IsRecognisedFile reports whether path has an indexable extension.
func IsRecognisedFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range RecognisedExtensions() {
		if ext == e {
			return true
		}
	}
	return false
}

// IndexManifest describes one built version of a named vector index.
type IndexManifest struct {
	// DocName is the index name.
	DocName string `json:"doc_name"`

	// Version identifies this build. Every rebuild gets a new one.
	Version string `json:"version"`

	// EmbeddingModel is the model the vectors were produced with.
	EmbeddingModel string `json:"embedding_model"`

	// Dimensions is the vector size.
	Dimensions int `json:"dimensions"`

	// Count is the number of indexed documents.
	Count int `json:"count"`

	// SourceDir is the corpus folder the index was built from.
	SourceDir string `json:"source_dir"`

	// BuiltAt is when the build committed.
	BuiltAt time.Time `json:"built_at"`
}

// RetrievedPassage is one nearest-neighbour hit mapped back to its text.
type RetrievedPassage struct {
	// Position is the row in the index.
	Position int `json:"position"`

	// Distance is the squared Euclidean distance to the query.
	Distance float32 `json:"distance"`

	// Text is the indexed (preprocessed) document text.
	Text string `json:"text"`
}

// BuildPhase names a stage of an index build, reported through progress callbacks.
type BuildPhase string

// Index build phases.
const (
	BuildPhaseScan       BuildPhase = "scan"
	BuildPhasePreprocess BuildPhase = "preprocess"
	BuildPhaseEmbed      BuildPhase = "embed"
	BuildPhaseCommit     BuildPhase = "commit"
)

// BuildProgress is reported while an index build runs.
type BuildProgress struct {
	Phase BuildPhase
	Done  int
	Total int
}
