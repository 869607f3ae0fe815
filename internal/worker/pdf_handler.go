package worker

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"cvstudio/internal/cv"
	"cvstudio/internal/database"
	"cvstudio/internal/errcode"
	"cvstudio/internal/pdf"
	"cvstudio/internal/prefs"
	"cvstudio/internal/render"
	"cvstudio/internal/storage"
	"cvstudio/internal/tasks"
)

// PDFTaskHandler 负责消费 PDF 导出任务：读取文档、按当前偏好渲染页面、
// 交给无头浏览器生成 PDF、上传并通知。
type PDFTaskHandler struct {
	db          *gorm.DB
	storage     *storage.Client
	redisClient *redis.Client
	store       prefs.Store
	renderer    *render.Renderer
	logger      *slog.Logger
}

// NewPDFTaskHandler 创建任务处理器。
func NewPDFTaskHandler(
	db *gorm.DB,
	storageClient *storage.Client,
	redisClient *redis.Client,
	store prefs.Store,
	renderer *render.Renderer,
	logger *slog.Logger,
) *PDFTaskHandler {
	return &PDFTaskHandler{
		db:          db,
		storage:     storageClient,
		redisClient: redisClient,
		store:       store,
		renderer:    renderer,
		logger:      logger,
	}
}

// ProcessTask 实现 asynq.Handler。
func (h *PDFTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	log := h.logger

	var payload tasks.PDFExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		return err
	}

	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Int("export_id", int(payload.ExportID)),
		slog.Int("document_id", int(payload.DocumentID)),
		slog.String("lang", payload.Lang),
	)
	log.Info("starting pdf export task")

	var export database.Export
	if err := h.db.WithContext(ctx).First(&export, payload.ExportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("export not found, skipping task")
			return nil
		}
		log.Error("query export failed", slog.Any("error", err))
		return err
	}

	var doc database.Document
	if err := h.db.WithContext(ctx).First(&doc, payload.DocumentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("document not found, skipping task")
			return nil
		}
		log.Error("query document failed", slog.Any("error", err))
		return err
	}

	defer func() {
		if retErr == nil {
			return
		}
		if !isFinalAsynqAttempt(ctx) {
			return
		}

		failUpdate := map[string]any{
			"status": "failed",
			"error":  strings.TrimSpace(retErr.Error()),
		}
		if err := h.db.WithContext(ctx).Model(&export).Updates(failUpdate).Error; err != nil {
			log.Error("mark export failed", slog.Any("error", err))
		}

		notify := ExportNotifyMessage{
			Status:        "error",
			ExportID:      export.ID,
			DocumentID:    doc.ID,
			Lang:          payload.Lang,
			CorrelationID: payload.CorrelationID,
			ErrorCode:     errcode.SystemError,
			ErrorMessage:  strings.TrimSpace(retErr.Error()),
		}
		if err := h.publishNotify(ctx, notify); err != nil {
			log.Error("publish export error notification failed", slog.Any("error", err))
		}
	}()

	pdfBytes, warnCode, err := h.renderAndExport(ctx, &doc, payload.Lang, log)
	if err != nil {
		log.Error("render and export pdf failed", slog.Any("error", err))
		return err
	}

	objectName := fmt.Sprintf("exports/%d/%s.pdf", doc.ID, uuid.NewString())
	pdfReader := bytes.NewReader(pdfBytes)
	if _, err := h.storage.UploadFile(ctx, objectName, pdfReader, int64(len(pdfBytes)), "application/pdf"); err != nil {
		log.Error("upload pdf to minio failed", slog.Any("error", err))
		return err
	}

	update := map[string]any{
		"object_key": objectName,
		"status":     "completed",
	}
	if err := h.db.WithContext(ctx).Model(&export).Updates(update).Error; err != nil {
		log.Error("update export failed", slog.Any("error", err))
		return err
	}

	notify := ExportNotifyMessage{
		Status:        "completed",
		ExportID:      export.ID,
		DocumentID:    doc.ID,
		Lang:          payload.Lang,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     warnCode,
	}
	if warnCode == errcode.ResourceMissing {
		notify.ErrorMessage = "人像资源缺失，已跳过并继续导出"
	}
	if err := h.publishNotify(ctx, notify); err != nil {
		log.Error("publish redis notification failed", slog.Any("error", err))
		return err
	}

	log.Info("pdf export task completed")
	return nil
}

// renderAndExport builds the page for one language and prints it. A missing
// portrait downgrades to a warning code instead of failing the export.
func (h *PDFTaskHandler) renderAndExport(ctx context.Context, doc *database.Document, lang string, log *slog.Logger) ([]byte, int, error) {
	var parsed cv.Document
	if err := json.Unmarshal(doc.Content, &parsed); err != nil {
		return nil, errcode.OK, fmt.Errorf("decode document content: %w", err)
	}

	rec, ok := parsed.Record(lang)
	if !ok {
		return nil, errcode.OK, fmt.Errorf("document has no language %q", lang)
	}

	snapshot, err := h.store.All(ctx)
	if err != nil {
		return nil, errcode.OK, fmt.Errorf("read preferences: %w", err)
	}

	warnCode := errcode.OK
	photoSrc := ""
	if doc.PhotoKey != "" {
		photoSrc, err = h.inlinePhoto(ctx, doc.PhotoKey)
		if err != nil {
			if storage.IsNoSuchKey(err) {
				log.Warn("portrait missing, exporting without it", slog.String("object_key", doc.PhotoKey))
				warnCode = errcode.ResourceMissing
			} else {
				return nil, errcode.OK, err
			}
		}
	}

	input := buildPageInput(rec, lang, snapshot, photoSrc, h.logger)
	html, err := h.renderer.Page(input)
	if err != nil {
		return nil, errcode.OK, err
	}

	pdfBytes, err := pdf.FromHTML(ctx, html)
	if err != nil {
		return nil, errcode.OK, err
	}
	return pdfBytes, warnCode, nil
}

// inlinePhoto fetches the portrait and embeds it as a data URI so the
// printed page needs no credentials.
func (h *PDFTaskHandler) inlinePhoto(ctx context.Context, objectKey string) (string, error) {
	obj, err := h.storage.GetObject(ctx, objectKey)
	if err != nil {
		return "", err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return "", fmt.Errorf("read portrait %q: %w", objectKey, err)
	}

	stat, err := obj.Stat()
	contentType := "image/png"
	if err == nil && stat.ContentType != "" {
		contentType = stat.ContentType
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func (h *PDFTaskHandler) publishNotify(ctx context.Context, notify ExportNotifyMessage) error {
	data, err := json.Marshal(notify)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	if err := h.redisClient.Publish(ctx, NotifyChannel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", NotifyChannel, err)
	}
	return nil
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}

// RetryDelay spaces retries out; the browser launch is the flaky part.
func RetryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	return time.Duration(n) * 15 * time.Second
}
