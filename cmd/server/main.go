package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"golang.org/x/crypto/bcrypt"

	"thecrew/internal/auth"
	"thecrew/internal/briefing"
	"thecrew/internal/cache"
	"thecrew/internal/config"
	"thecrew/internal/domain/services"
	"thecrew/internal/handler"
	"thecrew/internal/middleware"
	"thecrew/internal/service/account"
	serviceauth "thecrew/internal/service/auth"
	"thecrew/internal/service/docsystem"
	"thecrew/internal/service/interrogator"
	"thecrew/internal/service/interrogator/converter"
	"thecrew/internal/service/llm"
	"thecrew/internal/service/task"
	"thecrew/internal/service/workspace"
	"thecrew/internal/storage"
)

// maxLogFiles is how many timestamped log files LOG_DIR keeps
const maxLogFiles = 10

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging, mirrored to LOG_DIR when set
	var out io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, maxLogFiles)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		out = io.MultiWriter(os.Stdout, logFile)
	}
	logger := config.NewLogger(cfg.Environment, out)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"llm_provider", cfg.LLMProvider,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	secret := cfg.SessionSecret
	if secret == "" {
		if cfg.Environment == "prod" {
			log.Fatal("SESSION_SECRET is required in prod")
		}
		secret = randomSecret()
		logger.Warn("SESSION_SECRET not set, generated a random one (sessions end on restart)")
	}
	sessions, err := auth.NewSessionManager(secret, cfg.SessionTTL)
	if err != nil {
		log.Fatalf("Failed to create session manager: %v", err)
	}

	// Optional external identity provider
	var jwtVerifier auth.JWTVerifier
	if cfg.JWKSURL != "" {
		jwtVerifier, err = auth.NewJWTVerifier(ctx, cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer jwtVerifier.Close()
	}

	db, err := openBackend(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open backend: %v", err)
	}
	defer db.close()

	// Redis is optional: membership cache and revocation list
	redisClient, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		logger.Info("redis connected")
	}
	members := cache.NewMemberRepository(db.members, redisClient, cfg.TablePrefix, logger)
	revocations := auth.NewRevocations(redisClient, cfg.TablePrefix)

	objectStorage, err := newObjectStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to set up object storage: %v", err)
	}

	// Setup LLM providers
	providers := llm.NewProviderFactory(cfg, logger)
	chatModel, err := providers.ChatModel()
	if err != nil {
		log.Fatalf("Failed to setup LLM provider: %v", err)
	}
	catalog, err := briefing.Load()
	if err != nil {
		log.Fatalf("Failed to load briefing catalog: %v", err)
	}

	// Create services
	authorizer := serviceauth.NewRoleAuthorizer(members)
	validator := docsystem.NewResourceValidator(db.folders)

	accountService, err := account.NewAccountService(db.users, bcrypt.DefaultCost, logger)
	if err != nil {
		log.Fatalf("Failed to create account service: %v", err)
	}
	workspaceService := workspace.NewWorkspaceService(workspace.Repositories{
		Workspaces:     db.workspaces,
		Members:        members,
		Users:          db.users,
		Folders:        db.folders,
		Files:          db.files,
		Tasks:          db.tasks,
		Interrogations: db.interrogations,
	}, db.tx, authorizer, objectStorage, logger)
	memberService := workspace.NewMemberService(members, db.users, db.tx, authorizer, logger)
	folderService := docsystem.NewFolderService(db.folders, db.files, db.tx, validator, authorizer, objectStorage, logger)
	fileService := docsystem.NewFileService(db.files, validator, authorizer, objectStorage, logger)
	treeService := docsystem.NewTreeService(db.folders, db.files, authorizer, logger)
	uploadService := docsystem.NewUploadService(objectStorage, cfg.MaxUploadBytes, cfg.UploadURLTTL, logger)
	taskService := task.NewTaskService(db.tasks, db.comments, members, db.files, authorizer, logger)
	interrogatorService := interrogator.NewInterrogatorService(
		interrogator.Repositories{Interrogations: db.interrogations, Files: db.files, Tasks: db.tasks},
		db.tx,
		authorizer,
		catalog,
		chatModel,
		providers.Transcriber(),
		converter.NewConverterRegistry(),
		logger,
	)

	logger.Info("services initialized", "model", chatModel.Name())

	// Create handlers and routes
	mux := handler.NewRouter(handler.Handlers{
		Health:       handler.NewHealthHandler(db.db, logger),
		Auth:         handler.NewAuthHandler(accountService, sessions, revocations, cfg.CookieSecure, logger),
		Workspaces:   handler.NewWorkspaceHandler(workspaceService, memberService, interrogatorService, logger),
		Folders:      handler.NewFolderHandler(folderService, fileService, treeService, logger),
		Files:        handler.NewFileHandler(fileService, uploadService, logger),
		Tasks:        handler.NewTaskHandler(taskService, logger),
		Interrogator: handler.NewInterrogatorHandler(interrogatorService, logger),
	}, middleware.NewAuthenticator(sessions, revocations, jwtVerifier, db.users, logger).Require)

	// Build middleware chain
	// Order: CORS → Recovery → RequestLog → Routes (auth is applied per route)
	var h http.Handler = mux
	h = middleware.RequestLog(logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // Briefing calls wait on the LLM
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// newObjectStorage uses S3 when a bucket is configured, else an in-process stand-in
func newObjectStorage(ctx context.Context, cfg *config.Config) (services.ObjectStorage, error) {
	if cfg.S3Bucket == "" {
		if cfg.Environment == "prod" {
			return nil, errors.New("S3_BUCKET is required in prod")
		}
		return storage.NewMemoryStorage("http://localhost:" + cfg.Port + "/media"), nil
	}
	return storage.NewS3Storage(ctx, storage.S3Config{
		Region:           cfg.AWSRegion,
		Bucket:           cfg.S3Bucket,
		Endpoint:         cfg.S3Endpoint,
		AccessKeyID:      cfg.AWSAccessKeyID,
		SecretAccessKey:  cfg.AWSSecretAccessKey,
		CloudFrontDomain: cfg.CloudFrontDomain,
	})
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("Failed to generate session secret: %v", err)
	}
	return hex.EncodeToString(buf)
}
