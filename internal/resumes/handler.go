package resumes

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"resume-manager/internal/shared/server/middleware"
	"resume-manager/internal/shared/server/respond"
)

const maxImportBytes = 5 << 20

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// ResumeResponse is the wire shape of a résumé.
type ResumeResponse struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	OwnerID   int64      `json:"owner_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type HistoryResponse struct {
	ID              int64     `json:"id"`
	ResumeID        int64     `json:"resume_id"`
	Content         string    `json:"content"`
	ImprovedContent *string   `json:"improved_content"`
	CreatedAt       time.Time `json:"created_at"`
}

type ResumeDetailResponse struct {
	ResumeResponse
	History []HistoryResponse `json:"history"`
}

type ImproveResponse struct {
	Resume  ResumeResponse  `json:"resume"`
	History HistoryResponse `json:"history"`
}

type createRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type updateRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type improveRequest struct {
	Content *string `json:"content"`
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.create)
	rg.POST("/import", h.importFile)
	rg.GET("", h.list)
	rg.GET("/:id", h.get)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.delete)
	rg.POST("/:id/improve", h.improve)
	rg.GET("/:id/history", h.history)
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	resume, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), CreateInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		h.fail(c, "resumes.create", err)
		return
	}
	c.Set(middleware.ResumeIDKey, resume.ID)
	respond.Created(c, toResumeResponse(resume))
}

func (h *Handler) importFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes+1<<20)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "file is required", nil)
		return
	}
	if fileHeader.Size > maxImportBytes {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "file too large", gin.H{"maxBytes": maxImportBytes})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Internal(c, "resumes.import.open", err)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxImportBytes))
	if err != nil {
		respond.Internal(c, "resumes.import.read", err)
		return
	}

	resume, err := h.Svc.Import(
		c.Request.Context(),
		middleware.UserIDFromContext(c),
		c.PostForm("title"),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		data,
	)
	if err != nil {
		h.fail(c, "resumes.import", err)
		return
	}
	c.Set(middleware.ResumeIDKey, resume.ID)
	respond.Created(c, toResumeResponse(resume))
}

func (h *Handler) list(c *gin.Context) {
	offset, limit, ok := pageParams(c)
	if !ok {
		return
	}
	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), offset, limit)
	if err != nil {
		h.fail(c, "resumes.list", err)
		return
	}
	out := make([]ResumeResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toResumeResponse(item))
	}
	respond.OK(c, out)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := resumeID(c)
	if !ok {
		return
	}
	detail, err := h.Svc.GetWithHistory(c.Request.Context(), middleware.UserIDFromContext(c), id, DefaultLimit)
	if err != nil {
		h.fail(c, "resumes.get", err)
		return
	}
	respond.OK(c, ResumeDetailResponse{
		ResumeResponse: toResumeResponse(detail.Resume),
		History:        toHistoryResponses(detail.History),
	})
}

func (h *Handler) update(c *gin.Context) {
	id, ok := resumeID(c)
	if !ok {
		return
	}
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	resume, err := h.Svc.Update(c.Request.Context(), middleware.UserIDFromContext(c), id, Patch{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		h.fail(c, "resumes.update", err)
		return
	}
	respond.OK(c, toResumeResponse(resume))
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := resumeID(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), id); err != nil {
		h.fail(c, "resumes.delete", err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) improve(c *gin.Context) {
	id, ok := resumeID(c)
	if !ok {
		return
	}
	var req improveRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	result, err := h.Svc.Improve(c.Request.Context(), middleware.UserIDFromContext(c), id, req.Content)
	if err != nil {
		h.fail(c, "resumes.improve", err)
		return
	}
	respond.OK(c, ImproveResponse{
		Resume:  toResumeResponse(result.Resume),
		History: toHistoryResponse(result.History),
	})
}

func (h *Handler) history(c *gin.Context) {
	id, ok := resumeID(c)
	if !ok {
		return
	}
	offset, limit, ok := pageParams(c)
	if !ok {
		return
	}
	entries, err := h.Svc.History(c.Request.Context(), middleware.UserIDFromContext(c), id, offset, limit)
	if err != nil {
		h.fail(c, "resumes.history", err)
		return
	}
	respond.OK(c, toHistoryResponses(entries))
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "resume not found", nil)
	case errors.Is(err, ErrContentChanged):
		respond.Error(c, http.StatusConflict, respond.CodeConflict, "resume changed while improving, retry", nil)
	default:
		respond.Internal(c, op, err)
	}
}

// resumeID parses the path id. Anything that cannot name a résumé is a 404.
func resumeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "resume not found", nil)
		return 0, false
	}
	c.Set(middleware.ResumeIDKey, id)
	return id, true
}

func pageParams(c *gin.Context) (int, int, bool) {
	offset, err := queryInt(c, "skip", 0)
	if err != nil || offset < 0 {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "skip must be a non-negative integer", nil)
		return 0, 0, false
	}
	limit, err := queryInt(c, "limit", DefaultLimit)
	if err != nil || limit < 1 {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "limit must be a positive integer", nil)
		return 0, 0, false
	}
	return offset, limit, true
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func toResumeResponse(r Resume) ResumeResponse {
	return ResumeResponse{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		OwnerID:   r.UserID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toHistoryResponse(h History) HistoryResponse {
	return HistoryResponse{
		ID:              h.ID,
		ResumeID:        h.ResumeID,
		Content:         h.Content,
		ImprovedContent: h.ImprovedContent,
		CreatedAt:       h.CreatedAt,
	}
}

func toHistoryResponses(entries []History) []HistoryResponse {
	out := make([]HistoryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toHistoryResponse(entry))
	}
	return out
}
