package models

import "time"

// InterrogationStatus is a checkpoint of the briefing flow.
type InterrogationStatus string

const (
	StatusUpload            InterrogationStatus = "upload"
	StatusBriefing          InterrogationStatus = "briefing"
	StatusComplete          InterrogationStatus = "complete"
	StatusDocumentGenerated InterrogationStatus = "document_generated"
	StatusSaved             InterrogationStatus = "saved"
)

// CanTransition reports whether the flow may move from s to next.
func (s InterrogationStatus) CanTransition(next InterrogationStatus) bool {
	switch s {
	case StatusUpload:
		return next == StatusBriefing
	case StatusBriefing:
		return next == StatusBriefing || next == StatusComplete
	case StatusComplete:
		return next == StatusDocumentGenerated
	case StatusDocumentGenerated:
		// Regenerating is allowed before saving
		return next == StatusDocumentGenerated || next == StatusSaved
	case StatusSaved:
		return false
	default:
		return false
	}
}

// Material is a piece of uploaded briefing input already reduced to text.
type Material struct {
	Name   string  `json:"name"`
	Text   string  `json:"text"`
	FileID *string `json:"fileId,omitempty"`
}

// ChatTurn is one entry of the briefing conversation.
type ChatTurn struct {
	Role     string    `json:"role"` // "user" or "assistant"
	Content  string    `json:"content"`
	FieldKey string    `json:"fieldKey,omitempty"`
	Layer    int       `json:"layer,omitempty"`
	Chips    []string  `json:"chips,omitempty"`
	At       time.Time `json:"at"`
}

// Interrogation is a persisted AI briefing session.
type Interrogation struct {
	ID            string              `json:"id"`
	WorkspaceID   string              `json:"workspaceId"`
	CreatedBy     string              `json:"createdBy"`
	Status        InterrogationStatus `json:"status"`
	CurrentLayer  int                 `json:"currentLayer"`
	Summary       string              `json:"summary"`
	Materials     []Material          `json:"materials"`
	History       []ChatTurn          `json:"history"`
	Answers       map[string]string   `json:"answers"`
	FinalDocument *string             `json:"finalDocument"`
	SavedAt       *time.Time          `json:"savedAt"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}
