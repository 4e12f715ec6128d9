// Package web exposes the debate pipeline over HTTP.
//
// Runs are asynchronous: POST /api/debates starts a background run and
// returns a job id; status and result are polled over GET. When the
// DEBATE_API_TOKEN environment variable is set, all /api routes require it
// as a bearer token; an unset token leaves the API open, which is meant
// for local use only.
package web

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/strategyclub/debate/internal/checkpoint"
	"github.com/strategyclub/debate/internal/config"
	"github.com/strategyclub/debate/internal/debate"
	"github.com/strategyclub/debate/internal/event"
	"github.com/strategyclub/debate/internal/logging"
	"github.com/strategyclub/debate/internal/provider"
	"github.com/strategyclub/debate/internal/stage"
)

// EnvAPIToken names the environment variable holding the API bearer token.
const EnvAPIToken = "DEBATE_API_TOKEN"

// Server is the debate REST server.
type Server struct {
	cfg       *config.Config
	providers *provider.Set
	baseDir   string
	log       *logging.Logger
	router    *gin.Engine
	token     string

	mu   sync.Mutex
	jobs map[string]*job
}

// NewServer creates a server whose runs write below baseDir, one
// subdirectory per job.
func NewServer(cfg *config.Config, providers *provider.Set, baseDir string, log *logging.Logger) *Server {
	if log == nil {
		log = logging.NopLogger()
	}

	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		cfg:       cfg,
		providers: providers,
		baseDir:   baseDir,
		log:       log,
		router:    router,
		token:     os.Getenv(EnvAPIToken),
		jobs:      make(map[string]*job),
	}

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api", s.auth())
	{
		api.POST("/debates", s.handleStart)
		api.GET("/debates/:id", s.handleStatus)
		api.GET("/debates/:id/result", s.handleResult)
	}

	return s
}

// Router returns the underlying gin router, used by tests.
func (s *Server) Router() *gin.Engine { return s.router }

// Run serves until the context ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Server.Addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	s.log.Info("api server listening", "addr", s.cfg.Server.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout())
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// auth enforces the bearer token when one is configured.
func (s *Server) auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.token == "" {
			c.Next()
			return
		}
		if c.GetHeader("Authorization") != "Bearer "+s.token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API token"})
			return
		}
		c.Next()
	}
}

// job tracks one asynchronous debate run.
type job struct {
	id        string
	createdAt time.Time
	rounds    int

	mu      sync.Mutex
	session *debate.Session
	outcome *debate.Outcome
	err     error
}

func (j *job) snapshot() debate.Snapshot {
	j.mu.Lock()
	sess := j.session
	err := j.err
	rounds := j.rounds
	j.mu.Unlock()

	if sess != nil {
		return sess.Snapshot()
	}
	// The session never came up; report the construction failure.
	snap := debate.Snapshot{Status: debate.StatusInProgress, RoundsTotal: rounds}
	if err != nil {
		snap.Status = debate.StatusFailed
		snap.Error = err.Error()
	}
	return snap
}

func (j *job) result() (*debate.Outcome, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.outcome, j.err
}

// startJob registers a job and launches its run in the background.
func (s *Server) startJob(opts debate.Options) *job {
	id := uuid.NewString()
	opts.RunID = id
	opts.OutputDir = filepath.Join(s.baseDir, id)

	j := &job{id: id, createdAt: time.Now().UTC(), rounds: opts.Rounds}
	s.mu.Lock()
	s.jobs[id] = j
	s.mu.Unlock()

	go s.execute(j, opts)
	return j
}

func (s *Server) execute(j *job, opts debate.Options) {
	log := s.log.WithRun(j.id)
	store := checkpoint.NewStore(opts.OutputDir, log)
	exec := stage.NewExecutor(stage.Config{
		MaxAttempts:    s.cfg.Retry.MaxAttempts,
		InitialBackoff: s.cfg.Retry.InitialBackoff(),
		Timeout:        s.cfg.Debate.StageTimeout(),
		MaxTokens:      s.cfg.Debate.MaxTokens,
	}, log, event.NewBus())

	sess, err := debate.NewSession(opts, s.providers, store, exec, log, nil)
	if err != nil {
		j.mu.Lock()
		j.err = err
		j.mu.Unlock()
		log.Error("debate job rejected", "error", err)
		return
	}

	j.mu.Lock()
	j.session = sess
	j.mu.Unlock()

	outcome, err := sess.Run(context.Background())
	j.mu.Lock()
	j.outcome = outcome
	j.err = err
	j.mu.Unlock()
}

func (s *Server) lookup(id string) (*job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	return j, ok
}
