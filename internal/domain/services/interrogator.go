package services

import (
	"context"
	"io"

	"thecrew/internal/domain/models"
)

// InterrogatorService drives the AI briefing flow and persists its checkpoints
type InterrogatorService interface {
	// UploadText reduces an uploaded briefing file to plain text
	UploadText(ctx context.Context, filename string, content []byte) (*ExtractedText, error)

	// Transcribe converts recorded speech to text
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)

	// Summarize starts a session from the given materials and returns it with the first question
	Summarize(ctx context.Context, userID string, req *SummarizeRequest) (*BriefingStep, error)

	// Chat records an answer and asks the model for the next question
	Chat(ctx context.Context, userID string, req *ChatRequest) (*BriefingStep, error)

	GenerateFinal(ctx context.Context, userID string, req *GenerateFinalRequest) (*models.Interrogation, error)
	SaveFinal(ctx context.Context, userID string, req *SaveFinalRequest) (*SaveFinalResult, error)

	Get(ctx context.Context, userID, interrogationID string) (*models.Interrogation, error)
	List(ctx context.Context, userID, workspaceID string) ([]models.Interrogation, error)
}

// ContentConverter converts a file's content to text.
// Implementations should be stateless and thread-safe.
type ContentConverter interface {
	Convert(ctx context.Context, input []byte) (string, error)

	// SupportedExtensions returns extensions with the leading dot (e.g., [".html", ".htm"])
	SupportedExtensions() []string

	Name() string
}

type ExtractedText struct {
	Name      string `json:"name"`
	Text      string `json:"text"`
	WordCount int    `json:"wordCount"`
}

type SummarizeRequest struct {
	WorkspaceID string            `json:"workspaceId"`
	Materials   []models.Material `json:"materials"`
	FileIDs     []string          `json:"fileIds,omitempty"`
}

type ChatRequest struct {
	InterrogationID string `json:"interrogationId"`
	Message         string `json:"message"`
	FieldKey        string `json:"fieldKey,omitempty"`
}

type GenerateFinalRequest struct {
	InterrogationID string `json:"interrogationId"`
}

type SaveFinalRequest struct {
	InterrogationID string  `json:"interrogationId"`
	Document        *string `json:"document,omitempty"` // Edited brief; nil keeps the generated one
	CreateTasks     bool    `json:"createTasks"`
}

// BriefingStep is the interrogation plus the model's latest reply
type BriefingStep struct {
	Interrogation *models.Interrogation `json:"interrogation"`
	Message       string                `json:"message"`
	CurrentLayer  int                   `json:"currentLayer"`
	FieldKey      string                `json:"fieldKey"`
	Chips         []string              `json:"chips"`
	IsComplete    bool                  `json:"isComplete"`
}

type SaveFinalResult struct {
	Interrogation *models.Interrogation `json:"interrogation"`
	Tasks         []models.Task         `json:"tasks"`
}
