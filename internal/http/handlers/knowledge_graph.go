package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/md-ibu786/AURA-PROTO-sub001/internal/http/response"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/modules/kgcleanup"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/ctxutil"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/logger"
)

type KGDeleter interface {
	DeleteBatch(ctx context.Context, in kgcleanup.BatchDeleteInput) (kgcleanup.BatchDeleteResult, error)
	DeleteDocument(ctx context.Context, moduleID, noteID string) (kgcleanup.BatchDeleteResult, error)
}

type KnowledgeGraphHandler struct {
	log     *logger.Logger
	kg      KGDeleter
	timeout time.Duration
}

func NewKnowledgeGraphHandler(log *logger.Logger, kg KGDeleter, timeout time.Duration) *KnowledgeGraphHandler {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &KnowledgeGraphHandler{
		log:     log.With("handler", "KnowledgeGraphHandler"),
		kg:      kg,
		timeout: timeout,
	}
}

type deleteBatchRequest struct {
	FileIDs  []string `json:"file_ids"`
	ModuleID string   `json:"module_id"`
}

type deleteBatchResponse struct {
	DeletedCount int      `json:"deleted_count"`
	Failed       []string `json:"failed"`
	Message      string   `json:"message"`
}

func toDeleteBatchResponse(res kgcleanup.BatchDeleteResult) deleteBatchResponse {
	failed := res.Failed
	if failed == nil {
		failed = []string{}
	}
	return deleteBatchResponse{
		DeletedCount: res.DeletedCount,
		Failed:       failed,
		Message:      res.Message,
	}
}

// POST /api/v1/kg/delete-batch
func (h *KnowledgeGraphHandler) DeleteBatch(c *gin.Context) {
	var req deleteBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if strings.TrimSpace(req.ModuleID) == "" {
		response.RespondError(c, http.StatusBadRequest, "module_id_required", kgcleanup.ErrModuleIDRequired)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	res, err := h.kg.DeleteBatch(ctx, kgcleanup.BatchDeleteInput{
		ModuleID: req.ModuleID,
		FileIDs:  req.FileIDs,
	})
	if err != nil {
		h.log.Error("kg batch delete failed", append(ctxutil.LogFields(c.Request.Context()), "error", err)...)
		response.RespondAPIError(c, err, "kg_delete_failed")
		return
	}
	response.RespondOK(c, toDeleteBatchResponse(res))
}

// DELETE /api/v1/kg/documents/:id?module_id=
func (h *KnowledgeGraphHandler) DeleteDocument(c *gin.Context) {
	noteID := strings.TrimSpace(c.Param("id"))
	if noteID == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_note_id", nil)
		return
	}
	moduleID := strings.TrimSpace(c.Query("module_id"))
	if moduleID == "" {
		response.RespondError(c, http.StatusBadRequest, "module_id_required", kgcleanup.ErrModuleIDRequired)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	res, err := h.kg.DeleteDocument(ctx, moduleID, noteID)
	if err != nil {
		h.log.Error("kg document delete failed", append(ctxutil.LogFields(c.Request.Context()), "note_id", noteID, "error", err)...)
		response.RespondAPIError(c, err, "kg_delete_failed")
		return
	}
	response.RespondOK(c, toDeleteBatchResponse(res))
}
