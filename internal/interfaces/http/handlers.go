package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alloycap/token-lifecycle/internal/application/service"
	"github.com/alloycap/token-lifecycle/internal/domain/token"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	tokenService    service.TokenService
	workflowService service.WorkflowService
	exportService   service.ExportService
	logger          Logger
}

// NewHandlers creates a new handlers instance
func NewHandlers(
	tokenService service.TokenService,
	workflowService service.WorkflowService,
	exportService service.ExportService,
	logger Logger,
) *Handlers {
	return &Handlers{
		tokenService:    tokenService,
		workflowService: workflowService,
		exportService:   exportService,
		logger:          logger,
	}
}

// Response is the standard API response envelope
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CreateTokenRequest is the token authoring payload
type CreateTokenRequest struct {
	Name              string `json:"name" binding:"required"`
	Standard          string `json:"standard" binding:"required"`
	Configuration     string `json:"configuration"`
	DeploymentAddress string `json:"deployment_address"`
}

// UpdateStatusRequest is the status transition payload
type UpdateStatusRequest struct {
	Status  string `json:"status" binding:"required"`
	ActorID string `json:"actor_id" binding:"required"`
	Notes   string `json:"notes"`
}

// statusInfoResponse is one catalog entry in the statuses listing
type statusInfoResponse struct {
	Status      string `json:"status"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Terminal    bool   `json:"terminal"`
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":  "healthy",
			"service": "token-lifecycle",
		},
	})
}

// ListStatuses returns the full status catalog with display metadata
func (h *Handlers) ListStatuses(c *gin.Context) {
	catalog := token.Catalog()

	statuses := make([]statusInfoResponse, 0, len(catalog))
	for _, s := range token.AllStatuses() {
		info := catalog[s]
		statuses = append(statuses, statusInfoResponse{
			Status:      s.String(),
			DisplayName: info.DisplayName,
			Description: info.Description,
			Terminal:    s.IsTerminal(),
		})
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: statuses})
}

// CreateToken handles token creation requests
func (h *Handlers) CreateToken(c *gin.Context) {
	var req CreateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   fmt.Sprintf("invalid request: %v", err),
		})
		return
	}

	tok, err := h.tokenService.CreateToken(c.Request.Context(), service.CreateTokenInput{
		Name:              req.Name,
		Standard:          token.Standard(req.Standard),
		Configuration:     req.Configuration,
		DeploymentAddress: req.DeploymentAddress,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: tok})
}

// GetToken handles single token retrieval
func (h *Handlers) GetToken(c *gin.Context) {
	id, ok := h.tokenID(c)
	if !ok {
		return
	}

	tok, err := h.tokenService.GetToken(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: tok})
}

// ListTokens handles paginated token listing
func (h *Handlers) ListTokens(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 50)
	offset := parseIntQuery(c, "offset", 0)
	if limit < 1 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	tokens, err := h.tokenService.ListTokens(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"tokens": tokens,
			"limit":  limit,
			"offset": offset,
		},
	})
}

// GetWorkflow returns the workflow projection for a token
func (h *Handlers) GetWorkflow(c *gin.Context) {
	id, ok := h.tokenID(c)
	if !ok {
		return
	}

	tok, err := h.tokenService.GetToken(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    h.workflowService.Describe(tok),
	})
}

// UpdateStatus executes one guarded status transition
func (h *Handlers) UpdateStatus(c *gin.Context) {
	id, ok := h.tokenID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   fmt.Sprintf("invalid request: %v", err),
		})
		return
	}

	target := token.Status(req.Status)
	if !target.IsValid() {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   fmt.Sprintf("unknown status: %s", req.Status),
		})
		return
	}

	change, err := h.workflowService.UpdateStatus(c.Request.Context(), id, target, req.ActorID, req.Notes)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: change})
}

// GetHistory returns the token's transition records ordered by occurrence
func (h *Handlers) GetHistory(c *gin.Context) {
	id, ok := h.tokenID(c)
	if !ok {
		return
	}

	// Resolve the token first so a missing id is a 404, not an empty list
	if _, err := h.tokenService.GetToken(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	records, err := h.workflowService.History(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: records})
}

// ExportAudit streams the token's audit trail as an xlsx workbook
func (h *Handlers) ExportAudit(c *gin.Context) {
	id, ok := h.tokenID(c)
	if !ok {
		return
	}

	// Buffer the workbook so failures still produce a JSON error response
	var buf bytes.Buffer
	if err := h.exportService.WriteAuditWorkbook(c.Request.Context(), id, &buf); err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="audit-%s.xlsx"`, id))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// tokenID parses the :id path parameter, writing a 400 on failure
func (h *Handlers) tokenID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   fmt.Sprintf("invalid token id: %s", c.Param("id")),
		})
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps domain errors to HTTP status codes
func (h *Handlers) respondError(c *gin.Context, err error) {
	var transitionErr *token.TransitionError

	switch {
	case errors.Is(err, token.ErrTokenNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "token not found"})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Error: transitionErr.Error()})
	case errors.Is(err, token.ErrConflict):
		c.JSON(http.StatusConflict, Response{Success: false, Error: "token was modified concurrently, retry with fresh state"})
	case errors.Is(err, token.ErrNameRequired), errors.Is(err, token.ErrStandardInvalid):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	default:
		h.logger.Error("Unhandled error", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal server error"})
	}
}

// parseIntQuery reads an integer query parameter with a default
func parseIntQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
