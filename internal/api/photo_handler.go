package api

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"cvstudio/internal/database"
	"cvstudio/internal/phototransform"
	"cvstudio/internal/storage"
)

// 每分钟允许的人像上传次数。
const photoUploadPerMinute = 10

// PhotoHandler 负责人像上传、访问与拖拽/缩放变换。
type PhotoHandler struct {
	db          *gorm.DB
	storage     *storage.Client
	redisClient *redis.Client
	engine      *phototransform.Engine
	studio      *Studio
	logger      *slog.Logger
	clamdAddr   string
}

// NewPhotoHandler 构造 PhotoHandler。
func NewPhotoHandler(
	db *gorm.DB,
	storageClient *storage.Client,
	redisClient *redis.Client,
	engine *phototransform.Engine,
	studio *Studio,
	logger *slog.Logger,
	clamdAddr string,
) *PhotoHandler {
	return &PhotoHandler{
		db:          db,
		storage:     storageClient,
		redisClient: redisClient,
		engine:      engine,
		studio:      studio,
		logger:      logger,
		clamdAddr:   clamdAddr,
	}
}

// UploadPhoto 上传人像：限流、类型检查、病毒扫描，通过后写入对象存储
// 并重置变换引擎的几何信息。
func (h *PhotoHandler) UploadPhoto(c *gin.Context) {
	docID, err := h.studio.DocumentID()
	if err != nil {
		NotFound(c, "no document uploaded")
		return
	}

	ctx := c.Request.Context()
	rateKey := fmt.Sprintf("rate:photo_upload:%s", c.ClientIP())
	count, err := incrWithTTL(ctx, h.redisClient, rateKey, time.Minute)
	if err != nil {
		h.logger.Warn("rate counter unavailable", slog.String("error", err.Error()))
	} else if count > photoUploadPerMinute {
		Error(c, http.StatusTooManyRequests, "too many uploads")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		BadRequest(c, "file must be an image")
		return
	}

	fileReader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}

	clamdClient := clamd.NewClamd(h.clamdAddr)
	abortChan := make(chan bool)
	scanChan, err := clamdClient.ScanStream(fileReader, abortChan)
	fileReader.Close()
	if err != nil {
		h.logger.Error("scan file", slog.String("error", err.Error()))
		Internal(c, "failed to scan file")
		return
	}
	defer close(abortChan)

	for result := range scanChan {
		if result.Status != clamd.RES_OK {
			BadRequest(c, "malicious file detected")
			return
		}
	}

	fileReader, err = file.Open()
	if err != nil {
		Internal(c, "failed to reopen file")
		return
	}
	cfg, _, err := image.DecodeConfig(fileReader)
	fileReader.Close()
	if err != nil {
		BadRequest(c, "unreadable image")
		return
	}

	fileReader, err = file.Open()
	if err != nil {
		Internal(c, "failed to reopen file")
		return
	}
	defer fileReader.Close()

	objectKey := fmt.Sprintf("photos/%d/%s", docID, uuid.NewString())
	if _, err := h.storage.UploadFile(ctx, objectKey, fileReader, file.Size, contentType); err != nil {
		h.logger.Error("upload photo", slog.String("error", err.Error()))
		Internal(c, "failed to upload photo")
		return
	}

	var doc database.Document
	if err := h.db.WithContext(ctx).First(&doc, docID).Error; err != nil {
		Internal(c, "failed to query document")
		return
	}
	if err := h.db.WithContext(ctx).Model(&doc).Update("photo_key", objectKey).Error; err != nil {
		Internal(c, "failed to store photo reference")
		return
	}
	// Sweep the replaced portrait and any strays from failed uploads.
	photoPrefix := fmt.Sprintf("photos/%d/", docID)
	if err := h.storage.DeletePrefix(ctx, photoPrefix, objectKey); err != nil {
		h.logger.Warn("delete old photos", slog.String("prefix", photoPrefix), slog.String("error", err.Error()))
	}

	state, err := h.engine.Load(ctx, float64(cfg.Width), float64(cfg.Height))
	if err != nil {
		Internal(c, "failed to register photo geometry")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"objectKey": objectKey,
		"width":     cfg.Width,
		"height":    cfg.Height,
		"transform": state,
	})
}

// GetPhotoURL 返回人像的限时预签名链接。
func (h *PhotoHandler) GetPhotoURL(c *gin.Context) {
	doc, ok := h.activeDocument(c)
	if !ok {
		return
	}
	if doc.PhotoKey == "" {
		NotFound(c, "no photo uploaded")
		return
	}

	signedURL, err := h.storage.GeneratePresignedURL(c.Request.Context(), doc.PhotoKey, 15*time.Minute)
	if err != nil {
		h.logger.Error("generate presigned url", slog.String("error", err.Error()))
		Internal(c, "failed to generate url")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": signedURL})
}

type pointerRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type wheelRequest struct {
	DeltaY float64 `json:"deltaY"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// GetTransform 返回当前变换状态。
func (h *PhotoHandler) GetTransform(c *gin.Context) {
	state, err := h.engine.State()
	if err != nil {
		h.transformError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// PointerDown 开始一次拖拽。
func (h *PhotoHandler) PointerDown(c *gin.Context) {
	var req pointerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if err := h.engine.PointerDown(req.X, req.Y); err != nil {
		h.transformError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PointerMove 按指针位移平移人像。
func (h *PhotoHandler) PointerMove(c *gin.Context) {
	var req pointerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	state, err := h.engine.PointerMove(c.Request.Context(), req.X, req.Y)
	if err != nil {
		h.transformError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// PointerUp 结束拖拽。
func (h *PhotoHandler) PointerUp(c *gin.Context) {
	h.engine.PointerUp()
	c.Status(http.StatusNoContent)
}

// Wheel 以指针为锚点缩放。
func (h *PhotoHandler) Wheel(c *gin.Context) {
	var req wheelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	state, err := h.engine.Wheel(c.Request.Context(), req.DeltaY, req.X, req.Y)
	if err != nil {
		h.transformError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// ResetTransform 将人像恢复到居中原始比例。
func (h *PhotoHandler) ResetTransform(c *gin.Context) {
	state, err := h.engine.Reset(c.Request.Context())
	if err != nil {
		h.transformError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// CenterOnFace 对人像做人脸检测并将检出的人脸对准视口中心。
// 已有一次检测在途时直接返回当前状态。
func (h *PhotoHandler) CenterOnFace(c *gin.Context) {
	doc, ok := h.activeDocument(c)
	if !ok {
		return
	}
	if doc.PhotoKey == "" {
		NotFound(c, "no photo uploaded")
		return
	}

	ctx := c.Request.Context()
	obj, err := h.storage.GetObject(ctx, doc.PhotoKey)
	if err != nil {
		if storage.IsNoSuchKey(err) {
			NotFound(c, "photo not found")
			return
		}
		Internal(c, "failed to read photo")
		return
	}
	defer obj.Close()

	state, found, err := h.engine.CenterOnFace(ctx, obj)
	if err != nil {
		h.transformError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"found": found, "transform": state})
}

func (h *PhotoHandler) transformError(c *gin.Context, err error) {
	if errors.Is(err, phototransform.ErrNotLoaded) {
		Conflict(c, "no photo loaded")
		return
	}
	Internal(c, "photo transform failed")
}

func (h *PhotoHandler) activeDocument(c *gin.Context) (*database.Document, bool) {
	docID, err := h.studio.DocumentID()
	if err != nil {
		NotFound(c, "no document uploaded")
		return nil, false
	}

	var doc database.Document
	if err := h.db.WithContext(c.Request.Context()).First(&doc, docID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "document not found")
			return nil, false
		}
		Internal(c, "failed to query document")
		return nil, false
	}
	return &doc, true
}
