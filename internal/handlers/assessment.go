package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Asgar77/goodminds-app/internal/assessment"
	"github.com/Asgar77/goodminds-app/internal/repository"
)

type AssessmentHandler struct {
	log      *zap.Logger
	repo     *repository.Repository
	catalog  *assessment.Catalog
	attempts *assessment.Registry
}

func NewAssessmentHandler(log *zap.Logger, repo *repository.Repository, catalog *assessment.Catalog, attempts *assessment.Registry) *AssessmentHandler {
	return &AssessmentHandler{log: log, repo: repo, catalog: catalog, attempts: attempts}
}

// AttemptView is the client's view of an attempt in progress.
type AttemptView struct {
	AssessmentID  string           `json:"assessmentId"`
	State         assessment.State `json:"state"`
	Pointer       int              `json:"pointer"`
	QuestionCount int              `json:"questionCount"`
	Answers       []*int           `json:"answers"`
	Complete      bool             `json:"complete"`
}

func viewOf(a *assessment.Attempt) AttemptView {
	return AttemptView{
		AssessmentID:  a.Definition().ID,
		State:         a.State(),
		Pointer:       a.Pointer(),
		QuestionCount: a.Definition().QuestionCount(),
		Answers:       a.Answers(),
		Complete:      a.IsComplete(),
	}
}

func (h *AssessmentHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.All())
}

func (h *AssessmentHandler) definition(c *gin.Context) (*assessment.Definition, bool) {
	def, ok := h.catalog.Get(c.Param("id"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: "Unknown assessment."})
	}
	return def, ok
}

func (h *AssessmentHandler) Get(c *gin.Context) {
	def, ok := h.definition(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, def)
}

// Start begins a new attempt, replacing an unfinished one.
func (h *AssessmentHandler) Start(c *gin.Context) {
	def, ok := h.definition(c)
	if !ok {
		return
	}
	a := h.attempts.Start(currentUser(c).ID, def)
	c.JSON(http.StatusCreated, viewOf(a))
}

func (h *AssessmentHandler) attempt(c *gin.Context) (*assessment.Attempt, bool) {
	a, ok := h.attempts.Get(currentUser(c).ID, c.Param("id"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: "No assessment in progress. Start it first."})
	}
	return a, ok
}

func (h *AssessmentHandler) Attempt(c *gin.Context) {
	a, ok := h.attempt(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, viewOf(a))
}

type answerRequest struct {
	Index *int `json:"index"`
	Value *int `json:"value"`
}

func (h *AssessmentHandler) Answer(c *gin.Context) {
	a, ok := h.attempt(c)
	if !ok {
		return
	}
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Index == nil || req.Value == nil {
		badRequest(c, "Both index and value are required.")
		return
	}
	if err := a.SelectAnswer(*req.Index, *req.Value); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(a))
}

// Result previews the score of a complete attempt without saving it.
func (h *AssessmentHandler) Result(c *gin.Context) {
	a, ok := h.attempt(c)
	if !ok {
		return
	}
	result, err := a.ComputeResult()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Save scores the attempt and stores the result. A failed write keeps the
// attempt so the client can retry.
func (h *AssessmentHandler) Save(c *gin.Context) {
	a, ok := h.attempt(c)
	if !ok {
		return
	}
	result, err := a.ComputeResult()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	user := currentUser(c)
	if err := assessment.SaveResult(c.Request.Context(), h.repo.Store(), user.ID, a, result); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.log.Info("Assessment saved",
		zap.String("userID", user.ID),
		zap.String("assessmentID", a.Definition().ID),
		zap.Float64("score", result.Percentage))
	c.JSON(http.StatusCreated, gin.H{"result": result, "attempt": viewOf(a)})
}

func (h *AssessmentHandler) ListResults(c *gin.Context) {
	records, err := h.repo.ListAssessmentResults(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *AssessmentHandler) GetResult(c *gin.Context) {
	rec, err := h.repo.GetAssessmentResult(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *AssessmentHandler) Progress(c *gin.Context) {
	scores, err := h.repo.AssessmentScores(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, assessment.ComputeProgress(h.catalog, scores))
}
