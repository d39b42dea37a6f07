package interrogator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thecrew/internal/briefing"
	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
	"thecrew/internal/domain/services"
	"thecrew/internal/repository/memory"
	serviceauth "thecrew/internal/service/auth"
	"thecrew/internal/service/interrogator/converter"
	"thecrew/internal/service/llm"
	"thecrew/internal/service/llm/providers/scripted"
)

type fixture struct {
	repos   *memory.Repositories
	model   *scripted.Provider
	svc     services.InterrogatorService
	catalog *briefing.Catalog
	ws      *models.Workspace
	users   map[models.Role]string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repos := memory.NewRepositories()
	catalog, err := briefing.Load()
	require.NoError(t, err)
	model := scripted.NewProvider()

	f := &fixture{
		repos:   repos,
		model:   model,
		catalog: catalog,
		users:   make(map[models.Role]string),
	}
	f.svc = NewInterrogatorService(
		Repositories{Interrogations: repos.Interrogations, Files: repos.Files, Tasks: repos.Tasks},
		repos.Tx,
		serviceauth.NewRoleAuthorizer(repos.Members),
		catalog,
		llm.NewBreakerModel(model, llm.DefaultBreakerSettings(time.Second), logger),
		model,
		converter.NewConverterRegistry(),
		logger,
	)

	roles := []models.Role{models.RoleAdmin, models.RoleMember, models.RoleViewer}
	for _, role := range roles {
		u := &models.User{Email: string(role) + "@example.com", Name: string(role)}
		require.NoError(t, repos.Users.Create(ctx, u))
		f.users[role] = u.ID
	}
	f.ws = &models.Workspace{Name: "Launch", CreatedBy: f.users[models.RoleAdmin]}
	require.NoError(t, repos.Workspaces.Create(ctx, f.ws))
	for _, role := range roles {
		require.NoError(t, repos.Members.Add(ctx, &models.WorkspaceMember{WorkspaceID: f.ws.ID, UserID: f.users[role], Role: role}))
	}
	return f
}

func (f *fixture) start(t *testing.T) *services.BriefingStep {
	t.Helper()
	step, err := f.svc.Summarize(context.Background(), f.users[models.RoleMember], &services.SummarizeRequest{
		WorkspaceID: f.ws.ID,
		Materials:   []models.Material{{Name: "notes.md", Text: "Spring drop for the new sneaker line."}},
	})
	require.NoError(t, err)
	return step
}

// answerAll answers every pending question until the session completes
func (f *fixture) answerAll(t *testing.T, id string) *services.BriefingStep {
	t.Helper()
	var step *services.BriefingStep
	for i := 0; i < 20; i++ {
		var err error
		step, err = f.svc.Chat(context.Background(), f.users[models.RoleMember], &services.ChatRequest{InterrogationID: id, Message: "answer " + step0Key(step)})
		require.NoError(t, err)
		if step.IsComplete {
			return step
		}
	}
	t.Fatal("briefing never completed")
	return nil
}

func step0Key(s *services.BriefingStep) string {
	if s == nil {
		return "first"
	}
	return s.FieldKey
}

func TestSummarizeIgnoresEarlyCompletion(t *testing.T) {
	f := newFixture(t)
	f.model.Queue(`{"summary":"s","message":"All clear","isComplete":true}`)

	step := f.start(t)

	_, first, ok := f.catalog.Next(map[string]string{})
	require.True(t, ok)
	assert.False(t, step.IsComplete)
	assert.Equal(t, first.Key, step.FieldKey)
	assert.Equal(t, first.Question, step.Message)
	assert.Equal(t, models.StatusBriefing, step.Interrogation.Status)

	_, err := f.svc.GenerateFinal(context.Background(), f.users[models.RoleMember], &services.GenerateFinalRequest{InterrogationID: step.Interrogation.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestSummarizeStartsBriefing(t *testing.T) {
	f := newFixture(t)
	f.model.Queue("```json\n" + `{"summary":"Sneaker launch","message":"Who is this for?","currentLayer":1,"fieldKey":"audience","chips":["Gen Z"]}` + "\n```")

	step := f.start(t)

	assert.Equal(t, "Who is this for?", step.Message)
	assert.Equal(t, "audience", step.FieldKey)
	assert.Equal(t, 1, step.CurrentLayer)
	assert.Equal(t, []string{"Gen Z"}, step.Chips)
	assert.False(t, step.IsComplete)

	stored, err := f.svc.Get(context.Background(), f.users[models.RoleViewer], step.Interrogation.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBriefing, stored.Status)
	assert.Equal(t, "Sneaker launch", stored.Summary)
	require.Len(t, stored.History, 1)
	assert.Equal(t, "assistant", stored.History[0].Role)
}

func TestSummarizeFallsBackToCatalogOrder(t *testing.T) {
	f := newFixture(t)

	// the scripted model echoes, which is not JSON
	step := f.start(t)

	first, ok := f.catalog.Field("objective")
	require.True(t, ok)
	assert.Equal(t, "objective", step.FieldKey)
	assert.Equal(t, first.Question, step.Message)
	assert.Equal(t, first.Chips, step.Chips)
	assert.Contains(t, step.Interrogation.Summary, "Spring drop")
}

func TestSummarizeIgnoresUnknownField(t *testing.T) {
	f := newFixture(t)
	f.model.Queue(`{"summary":"s","message":"What colour?","currentLayer":9,"fieldKey":"colour"}`)

	step := f.start(t)
	assert.Equal(t, "objective", step.FieldKey)
	assert.Equal(t, 1, step.CurrentLayer)
}

func TestSummarizeValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.users[models.RoleMember]

	_, err := f.svc.Summarize(ctx, member, &services.SummarizeRequest{WorkspaceID: f.ws.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Summarize(ctx, member, &services.SummarizeRequest{WorkspaceID: f.ws.ID, FileIDs: []string{"missing"}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Summarize(ctx, f.users[models.RoleViewer], &services.SummarizeRequest{
		WorkspaceID: f.ws.ID,
		Materials:   []models.Material{{Name: "a", Text: "b"}},
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, f.model.Calls(), "rejected requests never reach the model")
}

func TestSummarizeWithWorkspaceFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	folder := &models.Folder{WorkspaceID: f.ws.ID, Name: "Refs"}
	require.NoError(t, f.repos.Folders.Create(ctx, folder))
	file := &models.File{WorkspaceID: f.ws.ID, FolderID: folder.ID, Name: "moodboard.png", Type: "image/png", ObjectPath: "uploads/u/1/moodboard.png"}
	require.NoError(t, f.repos.Files.Create(ctx, file))

	step, err := f.svc.Summarize(ctx, f.users[models.RoleMember], &services.SummarizeRequest{WorkspaceID: f.ws.ID, FileIDs: []string{file.ID, file.ID}})
	require.NoError(t, err)
	require.Len(t, step.Interrogation.Materials, 1)
	assert.Equal(t, "moodboard.png", step.Interrogation.Materials[0].Name)
	require.NotNil(t, step.Interrogation.Materials[0].FileID)
}

func TestChatRecordsAnswerAndAdvances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	step := f.start(t)

	step, err := f.svc.Chat(ctx, f.users[models.RoleMember], &services.ChatRequest{InterrogationID: step.Interrogation.ID, Message: "Drive sales"})
	require.NoError(t, err)

	assert.Equal(t, "audience", step.FieldKey)
	assert.Equal(t, "Drive sales", step.Interrogation.Answers["objective"])
	assert.Len(t, step.Interrogation.History, 3)

	// the model sees the materials first, then the conversation
	calls := f.model.Calls()
	last := calls[len(calls)-1]
	require.Len(t, last.Messages, 3)
	assert.Equal(t, "user", last.Messages[0].Role)
	assert.Contains(t, last.Messages[0].Content, "Spring drop")
	assert.Equal(t, "Drive sales", last.Messages[2].Content)
	assert.Contains(t, last.System, `"objective":"Drive sales"`)
}

func TestChatHonoursModelFieldChoice(t *testing.T) {
	f := newFixture(t)
	step := f.start(t)
	f.model.Queue(`Sure! {"message":"Which platform?","currentLayer":1,"fieldKey":"platform","chips":["TikTok"],"isComplete":false}`)

	step, err := f.svc.Chat(context.Background(), f.users[models.RoleMember], &services.ChatRequest{
		InterrogationID: step.Interrogation.ID,
		Message:         "Gen Z",
		FieldKey:        "audience",
	})
	require.NoError(t, err)
	assert.Equal(t, "platform", step.FieldKey)
	assert.Equal(t, "Which platform?", step.Message)
	assert.Equal(t, []string{"TikTok"}, step.Chips)
	assert.Equal(t, "Gen Z", step.Interrogation.Answers["audience"])
}

func TestChatValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	step := f.start(t)
	id := step.Interrogation.ID

	_, err := f.svc.Chat(ctx, f.users[models.RoleMember], &services.ChatRequest{InterrogationID: id, Message: " "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Chat(ctx, f.users[models.RoleMember], &services.ChatRequest{InterrogationID: id, Message: "x", FieldKey: "colour"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Chat(ctx, f.users[models.RoleViewer], &services.ChatRequest{InterrogationID: id, Message: "x"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.Chat(ctx, f.users[models.RoleMember], &services.ChatRequest{InterrogationID: "missing", Message: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChatUpstreamFailureKeepsSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	step := f.start(t)
	f.model.FailWith(errors.New("overloaded"))

	_, err := f.svc.Chat(ctx, f.users[models.RoleMember], &services.ChatRequest{InterrogationID: step.Interrogation.ID, Message: "Drive sales"})
	var uerr *domain.UpstreamError
	require.ErrorAs(t, err, &uerr)

	stored, err := f.repos.Interrogations.GetByID(ctx, step.Interrogation.ID)
	require.NoError(t, err)
	assert.Len(t, stored.History, 1)
	assert.Empty(t, stored.Answers)
}

func TestChatCompletesWhenEverythingIsAnswered(t *testing.T) {
	f := newFixture(t)
	step := f.start(t)

	done := f.answerAll(t, step.Interrogation.ID)

	assert.True(t, done.IsComplete)
	assert.Equal(t, f.catalog.MaxLayer(), done.CurrentLayer)
	assert.Equal(t, models.StatusComplete, done.Interrogation.Status)
	assert.Len(t, done.Interrogation.Answers, 12)

	_, err := f.svc.Chat(context.Background(), f.users[models.RoleMember], &services.ChatRequest{InterrogationID: step.Interrogation.ID, Message: "more"})
	var serr *domain.StateError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, domain.KindInvalidState, serr.Kind())
}

func TestChatModelMayCompleteEarly(t *testing.T) {
	f := newFixture(t)
	step := f.start(t)
	f.model.Queue(`{"message":"Great, that is all I need.","isComplete":true}`)

	step, err := f.svc.Chat(context.Background(), f.users[models.RoleMember], &services.ChatRequest{InterrogationID: step.Interrogation.ID, Message: "Everything is in the deck"})
	require.NoError(t, err)
	assert.True(t, step.IsComplete)
	assert.Equal(t, "Great, that is all I need.", step.Message)
	assert.Equal(t, models.StatusComplete, step.Interrogation.Status)
}

func TestGenerateAndSaveFinal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.users[models.RoleMember]
	step := f.start(t)
	id := step.Interrogation.ID

	_, err := f.svc.GenerateFinal(ctx, member, &services.GenerateFinalRequest{InterrogationID: id})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	f.answerAll(t, id)

	it, err := f.svc.GenerateFinal(ctx, member, &services.GenerateFinalRequest{InterrogationID: id})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDocumentGenerated, it.Status)
	require.NotNil(t, it.FinalDocument)
	assert.Contains(t, *it.FinalDocument, "# Production brief")
	generated := ChecklistItems(*it.FinalDocument)
	assert.NotEmpty(t, generated)

	// regenerate is allowed before saving
	_, err = f.svc.GenerateFinal(ctx, member, &services.GenerateFinalRequest{InterrogationID: id})
	require.NoError(t, err)

	edited := "# Brief\n\n- [ ] Write script\n- [x] Already done\n  - [ ] Book studio\n- [ ]   \n"
	res, err := f.svc.SaveFinal(ctx, member, &services.SaveFinalRequest{InterrogationID: id, Document: &edited, CreateTasks: true})
	require.NoError(t, err)

	assert.Equal(t, models.StatusSaved, res.Interrogation.Status)
	assert.NotNil(t, res.Interrogation.SavedAt)
	require.Len(t, res.Tasks, 2)
	assert.Equal(t, "Write script", res.Tasks[0].Title)
	assert.Equal(t, "Book studio", res.Tasks[1].Title)

	tasks, err := f.repos.Tasks.List(ctx, f.ws.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	for i, task := range tasks {
		assert.Equal(t, models.TaskTodo, task.Status)
		assert.Equal(t, i, task.Position)
		require.NotNil(t, task.InterrogationID)
		assert.Equal(t, id, *task.InterrogationID)
	}

	_, err = f.svc.SaveFinal(ctx, member, &services.SaveFinalRequest{InterrogationID: id})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestSaveFinalWithoutTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.users[models.RoleMember]
	id := f.start(t).Interrogation.ID
	f.answerAll(t, id)
	_, err := f.svc.GenerateFinal(ctx, member, &services.GenerateFinalRequest{InterrogationID: id})
	require.NoError(t, err)

	res, err := f.svc.SaveFinal(ctx, member, &services.SaveFinalRequest{InterrogationID: id})
	require.NoError(t, err)
	assert.Empty(t, res.Tasks)

	tasks, err := f.repos.Tasks.List(ctx, f.ws.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestListInterrogations(t *testing.T) {
	f := newFixture(t)
	first := f.start(t)
	second := f.start(t)

	list, err := f.svc.List(context.Background(), f.users[models.RoleViewer], f.ws.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.Interrogation.ID, list[0].ID)
	assert.Equal(t, first.Interrogation.ID, list[1].ID)
}

func TestUploadText(t *testing.T) {
	f := newFixture(t)

	out, err := f.svc.UploadText(context.Background(), "brief.html", []byte("<h1>Launch</h1><p>New <b>sneaker</b> drop</p><script>alert(1)</script>"))
	require.NoError(t, err)
	assert.Equal(t, "brief.html", out.Name)
	assert.Contains(t, out.Text, "sneaker")
	assert.NotContains(t, out.Text, "alert")
	assert.Equal(t, 4, out.WordCount)

	_, err = f.svc.UploadText(context.Background(), "clip.mp4", []byte("xx"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTranscribe(t *testing.T) {
	f := newFixture(t)

	text, err := f.svc.Transcribe(context.Background(), "memo.webm", strings.NewReader("audio"))
	require.NoError(t, err)
	assert.Contains(t, text, "memo.webm")
}
