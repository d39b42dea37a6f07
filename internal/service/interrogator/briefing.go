package interrogator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"thecrew/internal/config"
	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
	"thecrew/internal/domain/services"
)

// Summarize starts a session: it validates the materials, asks the model for a
// summary and the first question, and persists the session in the briefing state.
func (s *interrogatorService) Summarize(ctx context.Context, userID string, req *services.SummarizeRequest) (*services.BriefingStep, error) {
	if _, err := s.authorizer.Authorize(ctx, userID, req.WorkspaceID, models.ActionRunBriefing); err != nil {
		return nil, err
	}

	materials, err := s.collectMaterials(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := s.model.Complete(ctx, &services.CompletionRequest{
		System:    summarizeSystemPrompt(s.catalog),
		Messages:  []services.CompletionMessage{{Role: "user", Content: materialsPrompt(materials)}},
		MaxTokens: summaryMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	reply, parsed := parseReply(resp.Text)
	summary := strings.TrimSpace(reply.Summary)
	if !parsed {
		summary = strings.TrimSpace(resp.Text)
	}
	// Nothing is answered yet, so the opening turn always asks a question
	reply.IsComplete = false
	answers := map[string]string{}
	next := resolveStep(s.catalog, reply, parsed, answers)

	now := time.Now()
	it := &models.Interrogation{
		WorkspaceID:  req.WorkspaceID,
		CreatedBy:    userID,
		Status:       models.StatusUpload,
		CurrentLayer: next.layer,
		Summary:      summary,
		Materials:    materials,
		Answers:      answers,
		History: []models.ChatTurn{{
			Role:     "assistant",
			Content:  next.message,
			FieldKey: next.fieldKey,
			Layer:    next.layer,
			Chips:    next.chips,
			At:       now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := transition(it, models.StatusBriefing); err != nil {
		return nil, err
	}
	if err := s.repos.Interrogations.Create(ctx, it); err != nil {
		return nil, err
	}

	s.logger.Info("briefing started",
		"id", it.ID,
		"workspace_id", it.WorkspaceID,
		"materials", len(materials),
		"model", resp.Model,
	)
	return stepResult(it, next), nil
}

// collectMaterials validates inline materials and resolves file references,
// which must belong to the session's workspace
func (s *interrogatorService) collectMaterials(ctx context.Context, req *services.SummarizeRequest) ([]models.Material, error) {
	if len(req.Materials) == 0 && len(req.FileIDs) == 0 {
		return nil, &domain.ValidationError{Message: "at least one material or file is required"}
	}

	materials := make([]models.Material, 0, len(req.Materials)+len(req.FileIDs))
	total := 0
	for i, m := range req.Materials {
		m.Name = strings.TrimSpace(m.Name)
		if err := validation.ValidateStruct(&m,
			validation.Field(&m.Name, validation.Required, validation.Length(1, config.MaxFileNameLength)),
			validation.Field(&m.Text, validation.Required),
		); err != nil {
			return nil, fmt.Errorf("%w: materials[%d]: %v", domain.ErrValidation, i, err)
		}
		total += utf8.RuneCountInString(m.Text)
		m.FileID = nil
		materials = append(materials, m)
	}
	if total > config.MaxBriefingMaterialChars {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("materials exceed %d characters", config.MaxBriefingMaterialChars)}
	}

	seen := make(map[string]bool, len(req.FileIDs))
	for _, id := range req.FileIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		file, err := s.repos.Files.GetByID(ctx, id, req.WorkspaceID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, &domain.ValidationError{Message: fmt.Sprintf("file %s does not belong to this workspace", id)}
			}
			return nil, err
		}
		fileID := file.ID
		materials = append(materials, models.Material{Name: file.Name, FileID: &fileID})
	}
	return materials, nil
}

// Chat records the answer to the pending question and asks for the next one
func (s *interrogatorService) Chat(ctx context.Context, userID string, req *services.ChatRequest) (*services.BriefingStep, error) {
	it, _, err := s.load(ctx, userID, req.InterrogationID, models.ActionRunBriefing)
	if err != nil {
		return nil, err
	}
	if it.Status != models.StatusBriefing {
		return nil, &domain.StateError{Message: fmt.Sprintf("interrogation is %s; chat needs briefing", it.Status)}
	}

	message := strings.TrimSpace(req.Message)
	if err := validation.Validate(message, validation.Required, validation.Length(1, config.MaxBriefingMessageLength)); err != nil {
		return nil, fmt.Errorf("%w: message: %v", domain.ErrValidation, err)
	}

	fieldKey := strings.TrimSpace(req.FieldKey)
	if fieldKey == "" {
		fieldKey = pendingField(it.History)
	}
	if fieldKey != "" {
		if _, ok := s.catalog.Field(fieldKey); !ok {
			return nil, &domain.ValidationError{Message: fmt.Sprintf("unknown field %q", fieldKey)}
		}
		if it.Answers == nil {
			it.Answers = map[string]string{}
		}
		it.Answers[fieldKey] = message
	}

	now := time.Now()
	it.History = append(it.History, models.ChatTurn{
		Role:     "user",
		Content:  message,
		FieldKey: fieldKey,
		Layer:    it.CurrentLayer,
		At:       now,
	})

	resp, err := s.model.Complete(ctx, &services.CompletionRequest{
		System:    chatSystemPrompt(s.catalog, it),
		Messages:  conversation(it),
		MaxTokens: chatMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	reply, parsed := parseReply(resp.Text)
	next := resolveStep(s.catalog, reply, parsed, it.Answers)

	status := models.StatusBriefing
	if next.complete {
		status = models.StatusComplete
	}
	if err := transition(it, status); err != nil {
		return nil, err
	}
	it.CurrentLayer = next.layer
	it.History = append(it.History, models.ChatTurn{
		Role:     "assistant",
		Content:  next.message,
		FieldKey: next.fieldKey,
		Layer:    next.layer,
		Chips:    next.chips,
		At:       now,
	})
	it.UpdatedAt = now

	if err := s.repos.Interrogations.Update(ctx, it); err != nil {
		return nil, err
	}

	s.logger.Debug("briefing turn",
		"id", it.ID,
		"field", fieldKey,
		"next_field", next.fieldKey,
		"layer", next.layer,
		"complete", next.complete,
	)
	return stepResult(it, next), nil
}

// pendingField is the field the last assistant turn asked about
func pendingField(history []models.ChatTurn) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "assistant" {
			return history[i].FieldKey
		}
	}
	return ""
}

// conversation replays the session for the model. The materials open the
// conversation as a user turn so roles alternate starting with the user.
func conversation(it *models.Interrogation) []services.CompletionMessage {
	msgs := make([]services.CompletionMessage, 0, len(it.History)+1)
	msgs = append(msgs, services.CompletionMessage{Role: "user", Content: materialsPrompt(it.Materials)})
	for _, turn := range it.History {
		msgs = append(msgs, services.CompletionMessage{Role: turn.Role, Content: turn.Content})
	}
	return msgs
}

func stepResult(it *models.Interrogation, next step) *services.BriefingStep {
	chips := next.chips
	if chips == nil {
		chips = []string{}
	}
	return &services.BriefingStep{
		Interrogation: it,
		Message:       next.message,
		CurrentLayer:  next.layer,
		FieldKey:      next.fieldKey,
		Chips:         chips,
		IsComplete:    next.complete,
	}
}
