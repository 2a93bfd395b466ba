package driven

// ConfigStore holds application configuration as dotted keys such as
// "llm.model". Typed getters return the zero value for a missing key or a
// value of the wrong type.
type ConfigStore interface {
	// Get retrieves a raw value and whether the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string value.
	GetString(key string) string

	// GetInt retrieves an integer value.
	GetInt(key string) int

	// GetFloat retrieves a number. Integers are widened.
	GetFloat(key string) float64

	// GetBool retrieves a boolean value.
	GetBool(key string) bool

	// Set stores one value and persists it.
	Set(key string, value any) error

	// Update stores several values and persists them in a single write.
	Update(values map[string]any) error

	// Load re-reads configuration from storage, discarding unsaved state.
	Load() error

	// Path returns where the configuration is kept.
	Path() string
}
