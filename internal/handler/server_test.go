package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"thecrew/internal/auth"
	"thecrew/internal/briefing"
	"thecrew/internal/middleware"
	"thecrew/internal/repository/memory"
	"thecrew/internal/service/account"
	serviceauth "thecrew/internal/service/auth"
	"thecrew/internal/service/docsystem"
	"thecrew/internal/service/interrogator"
	"thecrew/internal/service/interrogator/converter"
	"thecrew/internal/service/llm"
	"thecrew/internal/service/llm/providers/scripted"
	"thecrew/internal/service/task"
	"thecrew/internal/service/workspace"
	"thecrew/internal/storage"
)

const testSecret = "test-secret-test-secret-test-secret!"

type testServer struct {
	t       *testing.T
	handler http.Handler
	repos   *memory.Repositories
	storage *storage.MemoryStorage
	model   *scripted.Provider
}

// newTestServer wires the full router over the in-memory backend
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repos := memory.NewRepositories()
	store := storage.NewMemoryStorage("https://media.test")
	authz := serviceauth.NewRoleAuthorizer(repos.Members)
	validator := docsystem.NewResourceValidator(repos.Folders)
	model := scripted.NewProvider()

	sessions, err := auth.NewSessionManager(testSecret, time.Hour)
	require.NoError(t, err)
	revocations := auth.NewMemoryRevocations()

	accounts, err := account.NewAccountService(repos.Users, bcrypt.MinCost, logger)
	require.NoError(t, err)

	catalog, err := briefing.Load()
	require.NoError(t, err)

	files := docsystem.NewFileService(repos.Files, validator, authz, store, logger)
	interrogatorSvc := interrogator.NewInterrogatorService(
		interrogator.Repositories{Interrogations: repos.Interrogations, Files: repos.Files, Tasks: repos.Tasks},
		repos.Tx,
		authz,
		catalog,
		llm.NewBreakerModel(model, llm.DefaultBreakerSettings(time.Second), logger),
		model,
		converter.NewConverterRegistry(),
		logger,
	)

	handlers := Handlers{
		Health: NewHealthHandler(nil, logger),
		Auth:   NewAuthHandler(accounts, sessions, revocations, false, logger),
		Workspaces: NewWorkspaceHandler(
			workspace.NewWorkspaceService(workspace.Repositories{
				Workspaces:     repos.Workspaces,
				Members:        repos.Members,
				Users:          repos.Users,
				Folders:        repos.Folders,
				Files:          repos.Files,
				Tasks:          repos.Tasks,
				Interrogations: repos.Interrogations,
			}, repos.Tx, authz, store, logger),
			workspace.NewMemberService(repos.Members, repos.Users, repos.Tx, authz, logger),
			interrogatorSvc,
			logger,
		),
		Folders: NewFolderHandler(
			docsystem.NewFolderService(repos.Folders, repos.Files, repos.Tx, validator, authz, store, logger),
			files,
			docsystem.NewTreeService(repos.Folders, repos.Files, authz, logger),
			logger,
		),
		Files:        NewFileHandler(files, docsystem.NewUploadService(store, 1<<20, 15*time.Minute, logger), logger),
		Tasks:        NewTaskHandler(task.NewTaskService(repos.Tasks, repos.Comments, repos.Members, repos.Files, authz, logger), logger),
		Interrogator: NewInterrogatorHandler(interrogatorSvc, logger),
	}

	authn := middleware.NewAuthenticator(sessions, revocations, nil, repos.Users, logger)
	router := NewRouter(handlers, authn.Require)

	return &testServer{
		t:       t,
		handler: middleware.Recovery(logger)(router),
		repos:   repos,
		storage: store,
		model:   model,
	}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			data, err := json.Marshal(body)
			require.NoError(s.t, err)
			raw = string(data)
		}
		reader = bytes.NewBufferString(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) upload(path, token, filename string, content []byte) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(s.t, err)
	_, err = part.Write(content)
	require.NoError(s.t, err)
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// register creates an account and returns its session token and user id
func (s *testServer) register(email string) (string, string) {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "correct horse",
		"name":     email,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decodeInto(s.t, rec, &resp)
	return resp.Token, resp.User.ID
}

// createWorkspace returns the id of a new workspace owned by the token holder
func (s *testServer) createWorkspace(token, name string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/workspaces", token, map[string]string{"name": name})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	var ws struct {
		ID string `json:"id"`
	}
	decodeInto(s.t, rec, &ws)
	return ws.ID
}

// addMember adds email to the workspace and returns the membership id
func (s *testServer) addMember(token, workspaceID, email, role string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/workspaces/"+workspaceID+"/members", token,
		map[string]string{"email": email, "role": role})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	var m struct {
		ID string `json:"id"`
	}
	decodeInto(s.t, rec, &m)
	return m.ID
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), rec.Body.String())
}

type problem struct {
	Status  int    `json:"status"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func problemOf(t *testing.T, rec *httptest.ResponseRecorder) problem {
	t.Helper()
	var p problem
	decodeInto(t, rec, &p)
	return p
}
