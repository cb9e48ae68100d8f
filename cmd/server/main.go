package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auren-studio/internal/config"
	"auren-studio/internal/domain"
	"auren-studio/internal/handler"
	"auren-studio/internal/middleware"
	"auren-studio/internal/repository"
	"auren-studio/internal/service"
	"auren-studio/internal/websocket"
	"auren-studio/pkg/hash"
	"auren-studio/pkg/response"

	_ "github.com/go-kivik/kivik/v4/couchdb"

	"github.com/go-kivik/kivik/v4"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type repositories struct {
	components repository.ComponentRepository
	projects   repository.ProjectRepository
	records    repository.RecordRepository
	users      repository.UserRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	repos, err := buildRepositories(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	if cfg.Store.Backend == "memory" {
		if err := seedDevUser(repos.users, cfg.DevUser); err != nil {
			log.Fatalf("Failed to seed dev user: %v", err)
		}
		log.Printf("Seeded dev user %s (%s)", cfg.DevUser.Email, cfg.DevUser.Role)
	}

	wsManager := websocket.NewManager(
		cfg.WebSocket.WriteWait,
		cfg.WebSocket.PongWait,
		cfg.WebSocket.PingPeriod,
	)
	go wsManager.Run()

	authService := service.NewAuthService(repos.users, cfg.JWT.Secret, cfg.JWT.Expiration)
	projectService := service.NewProjectService(repos.projects)
	componentService := service.NewComponentService(repos.components, repos.projects, wsManager)
	recordService := service.NewRecordService(repos.records)

	authHandler := handler.NewAuthHandler(authService)
	projectHandler := handler.NewProjectHandler(projectService)
	componentHandler := handler.NewComponentHandler(componentService)
	recordHandler := handler.NewRecordHandler(recordService)
	wsHandler := handler.NewWebSocketHandler(wsManager, cfg.JWT.Secret)

	startedAt := time.Now()

	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowedHeaders,
	))

	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		var commitSHA interface{}
		if cfg.Server.CommitSHA != "" {
			commitSHA = cfg.Server.CommitSHA
		}
		response.Success(w, map[string]interface{}{
			"status":    "ok",
			"uptime":    time.Since(startedAt).Seconds(),
			"commitSha": commitSHA,
		})
	}).Methods("GET")

	protected := r.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret))

	protected.HandleFunc("/projects", projectHandler.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/projects", projectHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/projects/{id}", projectHandler.Get).Methods("GET", "OPTIONS")

	protected.HandleFunc("/projects/{projectId}/components", componentHandler.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/projects/{projectId}/components", componentHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/projects/{projectId}/components/{componentId}", componentHandler.Get).Methods("GET", "OPTIONS")
	protected.HandleFunc("/projects/{projectId}/components/{componentId}", componentHandler.Update).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/projects/{projectId}/components/{componentId}", componentHandler.Delete).Methods("DELETE", "OPTIONS")

	protected.HandleFunc("/records", recordHandler.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/records", recordHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/records/{id}", recordHandler.Get).Methods("GET", "OPTIONS")

	r.HandleFunc("/ws", wsHandler.HandleConnection)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting Studio API server on %s (env: %s, store: %s)", addr, cfg.Server.Env, cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}

func buildRepositories(cfg *config.Config) (*repositories, error) {
	switch cfg.Store.Backend {
	case "memory":
		return &repositories{
			components: repository.NewMemoryComponentRepository(),
			projects:   repository.NewMemoryProjectRepository(),
			records:    repository.NewMemoryRecordRepository(),
			users:      repository.NewMemoryUserRepository(),
		}, nil

	case "couch":
		couchURL := fmt.Sprintf("http://%s:%s@%s:%s",
			cfg.Couch.User,
			cfg.Couch.Password,
			cfg.Couch.Host,
			cfg.Couch.Port,
		)

		client, err := kivik.New("couch", couchURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to CouchDB: %w", err)
		}

		exists, err := client.DBExists(context.Background(), cfg.Couch.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to check database existence: %w", err)
		}
		if !exists {
			if err := client.CreateDB(context.Background(), cfg.Couch.Name); err != nil {
				return nil, fmt.Errorf("failed to create database: %w", err)
			}
			log.Printf("Created database: %s", cfg.Couch.Name)
		}

		return &repositories{
			components: repository.NewComponentRepository(client, cfg.Couch.Name),
			projects:   repository.NewProjectRepository(client, cfg.Couch.Name),
			records:    repository.NewRecordRepository(client, cfg.Couch.Name),
			users:      repository.NewUserRepository(client, cfg.Couch.Name),
		}, nil

	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q (want memory or couch)", cfg.Store.Backend)
	}
}

func seedDevUser(users repository.UserRepository, dev config.DevUserConfig) error {
	hashed, err := hash.Hash(dev.Password)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	return users.Create(&domain.User{
		ID:        uuid.New().String(),
		Email:     dev.Email,
		Password:  hashed,
		Role:      domain.Role(dev.Role),
		CreatedAt: now,
		UpdatedAt: now,
	})
}
