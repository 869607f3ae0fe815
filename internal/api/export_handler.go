package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"cvstudio/internal/api/middleware"
	"cvstudio/internal/database"
	"cvstudio/internal/storage"
	"cvstudio/internal/tasks"
)

// ExportHandler 负责 PDF 导出任务的入队与下载链接。
type ExportHandler struct {
	db          *gorm.DB
	asynqClient *asynq.Client
	storage     *storage.Client
	studio      *Studio
}

// NewExportHandler 构造 ExportHandler。
func NewExportHandler(db *gorm.DB, asynqClient *asynq.Client, storageClient *storage.Client, studio *Studio) *ExportHandler {
	return &ExportHandler{
		db:          db,
		asynqClient: asynqClient,
		storage:     storageClient,
		studio:      studio,
	}
}

type createExportRequest struct {
	Lang string `json:"lang"`
}

// CreateExport 将导出任务入队并立即返回 202。
// 不指定语言时导出当前活动语言。
func (h *ExportHandler) CreateExport(c *gin.Context) {
	var req createExportRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		BadRequest(c, err.Error())
		return
	}

	ctrl, err := h.studio.Controller()
	if err != nil {
		NotFound(c, "no document uploaded")
		return
	}
	docID, err := h.studio.DocumentID()
	if err != nil {
		NotFound(c, "no document uploaded")
		return
	}

	lang := req.Lang
	if lang == "" {
		lang, _ = ctrl.Active()
	} else {
		known := false
		for _, opt := range ctrl.Languages() {
			if opt.Code == lang {
				known = true
				break
			}
		}
		if !known {
			BadRequest(c, "unknown language")
			return
		}
	}

	ctx := c.Request.Context()
	export := database.Export{
		DocumentID: docID,
		Lang:       lang,
		Status:     "pending",
	}
	if err := h.db.WithContext(ctx).Create(&export).Error; err != nil {
		Internal(c, "failed to create export")
		return
	}

	correlationID := middleware.GetCorrelationID(c)
	task, err := tasks.NewPDFExportTask(export.ID, docID, lang, correlationID)
	if err != nil {
		Internal(c, "failed to create task")
		return
	}

	info, err := h.asynqClient.Enqueue(task, asynq.MaxRetry(5))
	if err != nil {
		Internal(c, "failed to enqueue pdf export")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":   "PDF export request accepted",
		"export_id": export.ID,
		"task_id":   info.ID,
	})
}

// GetExport 返回导出状态。
func (h *ExportHandler) GetExport(c *gin.Context) {
	export, ok := h.findExport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"export_id": export.ID,
		"lang":      export.Lang,
		"status":    export.Status,
		"error":     export.Error,
	})
}

// GetDownloadLink 生成导出 PDF 的预签名下载链接。
func (h *ExportHandler) GetDownloadLink(c *gin.Context) {
	export, ok := h.findExport(c)
	if !ok {
		return
	}
	if export.Status != "completed" || export.ObjectKey == "" {
		Conflict(c, "pdf not ready")
		return
	}

	signedURL, err := h.storage.GeneratePresignedURL(c.Request.Context(), export.ObjectKey, 5*time.Minute)
	if err != nil {
		Internal(c, "failed to generate download link")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": signedURL})
}

func (h *ExportHandler) findExport(c *gin.Context) (*database.Export, bool) {
	exportID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "invalid export id")
		return nil, false
	}

	var export database.Export
	if err := h.db.WithContext(c.Request.Context()).First(&export, uint(exportID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "export not found")
			return nil, false
		}
		Internal(c, "failed to query export")
		return nil, false
	}
	return &export, true
}
