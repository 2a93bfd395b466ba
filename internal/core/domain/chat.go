package domain

import "time"

// DefaultSessionName is the session every empty conversation store falls back to.
const DefaultSessionName = "Intros"

// Message is one question/answer exchange within a session.
// Question is fixed at creation. Answer starts empty and only ever grows
// while the completion streams; once the turn ends it is frozen.
type Message struct {
	// ID uniquely identifies the message.
	ID string `json:"id"`

	// Question is the user's question.
	Question string `json:"question"`

	// Answer is the model's answer, accumulated from streamed chunks.
	Answer string `json:"answer"`

	// Model is the chat model that produced the answer.
	Model string `json:"model"`

	// CreatedAt is when the question was submitted.
	CreatedAt time.Time `json:"created_at"`
}

// ChatSession is a named, ordered conversation thread.
type ChatSession struct {
	// Name uniquely identifies the session within the store.
	Name string `json:"name"`

	// Messages are ordered oldest first.
	Messages []Message `json:"messages"`
}

// ChatView is the UI-facing snapshot of the conversation store.
type ChatView struct {
	// Current is the selected session name.
	Current string `json:"current"`

	// Sessions lists session names in creation order.
	Sessions []string `json:"sessions"`

	// Messages are the messages of the current session.
	Messages []Message `json:"messages"`

	// Processing is true while the current session has a completion streaming.
	Processing bool `json:"processing"`
}
