package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/vitebski/odh-assistant/internal/assistant"
	"github.com/vitebski/odh-assistant/pkg/models"
)

type SessionHandler struct {
	registry *assistant.Registry
	logger   *logrus.Logger
}

func NewSessionHandler(registry *assistant.Registry, logger *logrus.Logger) *SessionHandler {
	return &SessionHandler{
		registry: registry,
		logger:   logger,
	}
}

type fieldRequest struct {
	Name  string `json:"name" binding:"required"`
	Alias string `json:"alias"`
}

type quotesRequest struct {
	Value *bool `json:"value" binding:"required"`
}

type queryRequest struct {
	Text string `json:"text"`
}

type assistantRequest struct {
	Confirm bool `json:"confirm"`
}

type submitRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type queryResponse struct {
	Text   string `json:"text"`
	Locked bool   `json:"locked"`
}

// session resolves the :id parameter; it writes the error response itself
func (h *SessionHandler) session(c *gin.Context) (*assistant.Session, bool) {
	s, err := h.registry.Get(c.Param("id"))
	if err != nil {
		Fail(c, http.StatusNotFound, err, "Session not found")
		return nil, false
	}
	return s, true
}

func (h *SessionHandler) CreateSession(c *gin.Context) {
	s := h.registry.Create()
	h.logger.Infof("Opened session %s", s.ID)
	Success(c, http.StatusCreated, s.View(), "Session created")
}

func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if err := h.registry.Delete(c.Param("id")); err != nil {
		Fail(c, statusFor(err), err, "Failed to close session")
		return
	}
	Success(c, http.StatusOK, nil, "Session closed")
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	Success(c, http.StatusOK, s.View(), "")
}

// ToggleTable selects the table if it is not selected and deselects it otherwise
func (h *SessionHandler) ToggleTable(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	if _, err := s.ToggleTable(c.Request.Context(), c.Param("table")); err != nil {
		Fail(c, statusFor(err), err, "Failed to toggle table")
		return
	}
	Success(c, http.StatusOK, s.View(), "Selection updated")
}

func (h *SessionHandler) ToggleField(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req fieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, err, "Invalid request body: name is required")
		return
	}
	if err := s.ToggleField(c.Param("table"), models.Field{Name: req.Name, Alias: req.Alias}); err != nil {
		Fail(c, statusFor(err), err, "Failed to toggle field")
		return
	}
	Success(c, http.StatusOK, s.View(), "Selection updated")
}

func (h *SessionHandler) SetRelationship(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req assistant.RelationshipInput
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	if err := s.SetRelationship(c.Param("table"), req); err != nil {
		Fail(c, statusFor(err), err, "Failed to set relationship")
		return
	}
	Success(c, http.StatusOK, s.View(), "Selection updated")
}

func (h *SessionHandler) SetQuotes(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req quotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, err, "Invalid request body: value is required")
		return
	}
	s.SetQuotes(*req.Value)
	Success(c, http.StatusOK, s.View(), "Selection updated")
}

func (h *SessionHandler) GetQuery(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	text, locked := s.Query()
	Success(c, http.StatusOK, queryResponse{Text: text, Locked: locked}, "")
}

// EditQuery stores a manual edit; the assistant stops updating the text
func (h *SessionHandler) EditQuery(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	s.EditQuery(req.Text)
	text, locked := s.Query()
	Success(c, http.StatusOK, queryResponse{Text: text, Locked: locked}, "Query updated")
}

// Reengage gives the query back to the assistant. Without confirm it fails
// with 409 while manual edits would be lost.
func (h *SessionHandler) Reengage(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req assistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	if err := s.Reengage(req.Confirm); err != nil {
		Fail(c, statusFor(err), err, "Manual edits would be discarded")
		return
	}
	text, locked := s.Query()
	Success(c, http.StatusOK, queryResponse{Text: text, Locked: locked}, "Assistant re-engaged")
}

func (h *SessionHandler) Diagnostics(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	Success(c, http.StatusOK, s.Diagnostics(), "")
}

func (h *SessionHandler) Preview(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	state, err := s.Preview(c.Param("table"))
	if err != nil {
		Fail(c, statusFor(err), err, "No preview")
		return
	}
	Success(c, http.StatusOK, state, "")
}

func (h *SessionHandler) Submit(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, err, "Invalid request body: name is required")
		return
	}

	tr, err := s.Submit(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		Fail(c, statusFor(err), err, "Failed to submit transformation")
		return
	}
	Success(c, http.StatusCreated, tr, "Transformation created")
}
