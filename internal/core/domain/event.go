package domain

// StoreEventType identifies the kind of conversation store mutation.
type StoreEventType string

// Store event types. One is emitted for every mutation.
const (
	EventSessionCreated  StoreEventType = "session_created"
	EventSessionDeleted  StoreEventType = "session_deleted"
	EventSessionSelected StoreEventType = "session_selected"
	EventStoreReset      StoreEventType = "store_reset"
	EventMessageAppended StoreEventType = "message_appended"
	EventMessageDeleted  StoreEventType = "message_deleted"
	EventAnswerAppended  StoreEventType = "answer_appended"
	EventTurnStarted     StoreEventType = "turn_started"
	EventTurnEnded       StoreEventType = "turn_ended"
)

// StoreEvent describes a single conversation store mutation.
type StoreEvent struct {
	// Type is the kind of mutation.
	Type StoreEventType `json:"type"`

	// Session is the affected session name.
	Session string `json:"session"`

	// Index is the affected message position, or -1 when not applicable.
	Index int `json:"index"`

	// MessageID is the affected message, if any.
	MessageID string `json:"message_id,omitempty"`

	// Delta is the appended answer text for EventAnswerAppended.
	Delta string `json:"delta,omitempty"`
}
