package web

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/strategyclub/debate/internal/checkpoint"
	"github.com/strategyclub/debate/internal/debate"
)

const maxDocumentSize = 1 << 20 // 1MB

type startRequest struct {
	Document string `json:"document"`
	Rounds   int    `json:"rounds"`
	// Supplementary is optional extra context appended to the document.
	Supplementary string `json:"supplementary,omitempty"`

	CritiqueModel  string `json:"critique_model,omitempty"`
	FactCheckModel string `json:"fact_check_model,omitempty"`
	SynthesisModel string `json:"synthesis_model,omitempty"`
}

type startResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type statusResponse struct {
	JobID       string    `json:"job_id"`
	Status      string    `json:"status"`
	RoundsTotal int       `json:"rounds_total"`
	LastRound   int       `json:"last_round"`
	LastStage   string    `json:"last_stage,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type resultResponse struct {
	JobID         string                 `json:"job_id"`
	FinalDocument string                 `json:"final_document"`
	Dissent       debate.DissentRegister `json:"dissent_register"`
	FinalPath     string                 `json:"final_path"`
	// Artifacts are the per-stage checkpoint paths in execution order.
	Artifacts []string `json:"artifacts"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "debate"})
}

func (s *Server) handleStart(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if strings.TrimSpace(req.Document) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document is required"})
		return
	}
	if len(req.Document) > maxDocumentSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "document exceeds 1MB"})
		return
	}
	if req.Rounds == 0 {
		req.Rounds = s.cfg.Debate.Rounds
	}
	if req.Rounds < 1 || req.Rounds > 20 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rounds must be between 1 and 20"})
		return
	}

	input := req.Document
	if extra := strings.TrimSpace(req.Supplementary); extra != "" {
		input += "\n\n---\n\n**Supplementary context:**\n" + extra
	}

	models := debate.Models{
		Critique:  s.cfg.Models.Critique,
		FactCheck: s.cfg.Models.FactCheck,
		Synthesis: s.cfg.Models.Synthesis,
	}
	if req.CritiqueModel != "" {
		models.Critique = req.CritiqueModel
	}
	if req.FactCheckModel != "" {
		models.FactCheck = req.FactCheckModel
	}
	if req.SynthesisModel != "" {
		models.Synthesis = req.SynthesisModel
	}

	j := s.startJob(debate.Options{
		Input:            input,
		Rounds:           req.Rounds,
		Models:           models,
		CritiqueLogLimit: s.cfg.Debate.CritiqueLogLimit,
	})

	c.JSON(http.StatusAccepted, startResponse{
		JobID:   j.id,
		Status:  string(debate.StatusInProgress),
		Message: "debate started, poll GET /api/debates/" + j.id,
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	j, ok := s.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	snap := j.snapshot()
	c.JSON(http.StatusOK, statusResponse{
		JobID:       j.id,
		Status:      string(snap.Status),
		RoundsTotal: snap.RoundsTotal,
		LastRound:   snap.LastRound,
		LastStage:   snap.LastStage,
		Error:       snap.Error,
		CreatedAt:   j.createdAt,
	})
}

func (s *Server) handleResult(c *gin.Context) {
	j, ok := s.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	outcome, err := j.result()
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "status": string(debate.StatusFailed)})
		return
	}
	if outcome == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "run still in progress", "status": string(debate.StatusInProgress)})
		return
	}

	store := checkpoint.NewStore(filepath.Join(s.baseDir, j.id), s.log)
	artifacts := make([]string, 0, len(outcome.History))
	for _, res := range outcome.History {
		artifacts = append(artifacts, store.Path(res.Round, res.Kind))
	}

	c.JSON(http.StatusOK, resultResponse{
		JobID:         j.id,
		FinalDocument: outcome.FinalDocument,
		Dissent:       outcome.Register,
		FinalPath:     outcome.FinalPath,
		Artifacts:     artifacts,
	})
}
