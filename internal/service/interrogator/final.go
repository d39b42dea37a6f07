package interrogator

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"thecrew/internal/config"
	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
	"thecrew/internal/domain/services"
)

const checklistPrefix = "- [ ] "

// GenerateFinal turns a completed questionnaire into the markdown brief.
// It may be called again to regenerate until the brief is saved.
func (s *interrogatorService) GenerateFinal(ctx context.Context, userID string, req *services.GenerateFinalRequest) (*models.Interrogation, error) {
	it, _, err := s.load(ctx, userID, req.InterrogationID, models.ActionRunBriefing)
	if err != nil {
		return nil, err
	}
	if err := transition(it, models.StatusDocumentGenerated); err != nil {
		return nil, err
	}

	draft := draftBrief(s.catalog, it)
	resp, err := s.model.Complete(ctx, &services.CompletionRequest{
		System:    finalSystemPrompt,
		Messages:  []services.CompletionMessage{{Role: "user", Content: draft}},
		MaxTokens: finalMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	doc := stripFence(resp.Text)
	if doc == "" {
		doc = draft
	}
	if utf8.RuneCountInString(doc) > config.MaxBriefDocumentLength {
		return nil, &domain.UpstreamError{Message: "generated brief is too long"}
	}

	it.FinalDocument = &doc
	it.UpdatedAt = time.Now()
	if err := s.repos.Interrogations.Update(ctx, it); err != nil {
		return nil, err
	}

	s.logger.Info("brief generated", "id", it.ID, "words", CountWords(doc))
	return it, nil
}

// SaveFinal stores the brief and, when asked, turns its checklist into todo
// tasks linked to the session. Both happen in one transaction.
func (s *interrogatorService) SaveFinal(ctx context.Context, userID string, req *services.SaveFinalRequest) (*services.SaveFinalResult, error) {
	it, _, err := s.load(ctx, userID, req.InterrogationID, models.ActionRunBriefing)
	if err != nil {
		return nil, err
	}
	if req.CreateTasks {
		if _, err := s.authorizer.Authorize(ctx, userID, it.WorkspaceID, models.ActionManageTasks); err != nil {
			return nil, err
		}
	}
	if err := transition(it, models.StatusSaved); err != nil {
		return nil, err
	}

	if req.Document != nil {
		doc := strings.TrimSpace(*req.Document)
		if doc == "" {
			return nil, &domain.ValidationError{Message: "document must not be empty"}
		}
		if utf8.RuneCountInString(doc) > config.MaxBriefDocumentLength {
			return nil, &domain.ValidationError{Message: fmt.Sprintf("document exceeds %d characters", config.MaxBriefDocumentLength)}
		}
		it.FinalDocument = &doc
	}
	if it.FinalDocument == nil {
		return nil, &domain.StateError{Message: "no brief has been generated"}
	}

	now := time.Now()
	it.SavedAt = &now
	it.UpdatedAt = now

	tasks := make([]models.Task, 0)
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.repos.Interrogations.Update(txCtx, it); err != nil {
			return err
		}
		if !req.CreateTasks {
			return nil
		}

		position, err := s.repos.Tasks.NextPosition(txCtx, it.WorkspaceID, models.TaskTodo)
		if err != nil {
			return fmt.Errorf("next position: %w", err)
		}
		for _, title := range ChecklistItems(*it.FinalDocument) {
			interrogationID := it.ID
			task := models.Task{
				WorkspaceID:     it.WorkspaceID,
				Title:           title,
				Status:          models.TaskTodo,
				Position:        position,
				InterrogationID: &interrogationID,
				CreatedBy:       userID,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if err := s.repos.Tasks.Create(txCtx, &task); err != nil {
				return err
			}
			tasks = append(tasks, task)
			position++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("brief saved", "id", it.ID, "workspace_id", it.WorkspaceID, "tasks", len(tasks))
	return &services.SaveFinalResult{Interrogation: it, Tasks: tasks}, nil
}

// ChecklistItems returns the text of every unchecked "- [ ] " line,
// trimmed to a valid task title. Blank items are skipped.
func ChecklistItems(markdown string) []string {
	var items []string
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		var rest string
		switch {
		case strings.HasPrefix(line, checklistPrefix):
			rest = line[len(checklistPrefix):]
		case strings.HasPrefix(line, "* [ ] "):
			rest = line[len("* [ ] "):]
		default:
			continue
		}
		title := strings.TrimSpace(rest)
		if title == "" {
			continue
		}
		if r := []rune(title); len(r) > config.MaxTaskTitleLength {
			title = string(r[:config.MaxTaskTitleLength])
		}
		items = append(items, title)
	}
	return items
}

// stripFence removes a ```markdown fence wrapped around the whole reply
func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if nl := strings.Index(text, "\n"); nl != -1 {
		text = text[nl+1:]
	} else {
		return ""
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
