package interrogator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"thecrew/internal/briefing"
	"thecrew/internal/config"
	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
	"thecrew/internal/domain/repositories"
	"thecrew/internal/domain/services"
	"thecrew/internal/service/interrogator/converter"
)

const (
	summaryMaxTokens = 1024
	chatMaxTokens    = 1024
	finalMaxTokens   = 4096
)

// Repositories groups the stores the briefing flow reads and writes
type Repositories struct {
	Interrogations repositories.InterrogationRepository
	Files          repositories.FileRepository
	Tasks          repositories.TaskRepository
}

type interrogatorService struct {
	repos       Repositories
	txManager   repositories.TransactionManager
	authorizer  services.WorkspaceAuthorizer
	catalog     *briefing.Catalog
	model       services.ChatModel
	transcriber services.Transcriber
	converters  *converter.ConverterRegistry
	logger      *slog.Logger
}

// NewInterrogatorService creates the briefing service.
// transcriber may be nil when no speech-to-text backend is configured.
func NewInterrogatorService(
	repos Repositories,
	txManager repositories.TransactionManager,
	authorizer services.WorkspaceAuthorizer,
	catalog *briefing.Catalog,
	model services.ChatModel,
	transcriber services.Transcriber,
	converters *converter.ConverterRegistry,
	logger *slog.Logger,
) services.InterrogatorService {
	return &interrogatorService{
		repos:       repos,
		txManager:   txManager,
		authorizer:  authorizer,
		catalog:     catalog,
		model:       model,
		transcriber: transcriber,
		converters:  converters,
		logger:      logger,
	}
}

// UploadText reduces a briefing file to text using the converter for its extension
func (s *interrogatorService) UploadText(ctx context.Context, filename string, content []byte) (*services.ExtractedText, error) {
	if filename == "" {
		return nil, &domain.ValidationError{Message: "file name is required"}
	}
	if len(content) > config.MaxBriefingFileBytes {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("file exceeds %d bytes", config.MaxBriefingFileBytes)}
	}

	text, err := s.converters.Convert(ctx, filename, content)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("briefing text extracted", "name", filename, "bytes", len(content))
	return &services.ExtractedText{
		Name:      filepath.Base(filename),
		Text:      text,
		WordCount: CountWords(text),
	}, nil
}

func (s *interrogatorService) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	if s.transcriber == nil {
		return "", &domain.UpstreamError{Message: "transcription is not configured"}
	}
	return s.transcriber.Transcribe(ctx, filename, audio)
}

// load fetches a session and checks the caller may perform action in its workspace
func (s *interrogatorService) load(ctx context.Context, userID, id string, action models.Action) (*models.Interrogation, *models.WorkspaceMember, error) {
	it, err := s.repos.Interrogations.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	member, err := s.authorizer.Authorize(ctx, userID, it.WorkspaceID, action)
	if err != nil {
		return nil, nil, err
	}
	return it, member, nil
}

func (s *interrogatorService) Get(ctx context.Context, userID, interrogationID string) (*models.Interrogation, error) {
	it, _, err := s.load(ctx, userID, interrogationID, models.ActionRead)
	return it, err
}

func (s *interrogatorService) List(ctx context.Context, userID, workspaceID string) ([]models.Interrogation, error) {
	if _, err := s.authorizer.Authorize(ctx, userID, workspaceID, models.ActionRead); err != nil {
		return nil, err
	}
	return s.repos.Interrogations.ListByWorkspace(ctx, workspaceID)
}

// transition moves it to next or reports an invalid_state conflict
func transition(it *models.Interrogation, next models.InterrogationStatus) error {
	if !it.Status.CanTransition(next) {
		return &domain.StateError{Message: fmt.Sprintf("interrogation is %s; cannot move to %s", it.Status, next)}
	}
	it.Status = next
	return nil
}
