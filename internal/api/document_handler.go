package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"cvstudio/internal/cv"
	"cvstudio/internal/database"
)

// 上传文档的大小上限。
const maxDocumentBytes = 2 << 20

// DocumentHandler 负责文档的上传与读取。
type DocumentHandler struct {
	db     *gorm.DB
	studio *Studio
}

// NewDocumentHandler 构造 DocumentHandler。
func NewDocumentHandler(db *gorm.DB, studio *Studio) *DocumentHandler {
	return &DocumentHandler{db: db, studio: studio}
}

type documentResponse struct {
	ID        uint           `json:"id"`
	Title     string         `json:"title"`
	Content   datatypes.JSON `json:"content"`
	Languages []string       `json:"languages"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// UploadDocument 校验整份 JSON 文档并替换当前活动文档。
// 校验失败时不写入任何内容。
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxDocumentBytes+1))
	if err != nil {
		BadRequest(c, "failed to read body")
		return
	}
	if len(body) > maxDocumentBytes {
		BadRequest(c, "document too large")
		return
	}

	parsed, err := cv.ParseDocument(body)
	if err != nil {
		if errors.Is(err, cv.ErrInvalidDocument) {
			BadRequest(c, err.Error())
			return
		}
		Internal(c, "failed to parse document")
		return
	}

	ctx := c.Request.Context()
	title := c.DefaultQuery("title", parsed.Records[parsed.DefaultCode()].Nombre)

	doc := database.Document{
		Title:   title,
		Content: datatypes.JSON(body),
		Active:  true,
	}

	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&database.Document{}).
			Where("active = ?", true).
			Update("active", false).Error; err != nil {
			return err
		}
		return tx.Create(&doc).Error
	})
	if err != nil {
		Internal(c, "failed to store document")
		return
	}

	if err := h.studio.Activate(ctx, &doc); err != nil {
		Internal(c, "failed to activate document")
		return
	}

	c.JSON(http.StatusCreated, documentResponse{
		ID:        doc.ID,
		Title:     doc.Title,
		Content:   doc.Content,
		Languages: parsed.Codes,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	})
}

// GetDocument 返回当前活动文档。
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	docID, err := h.studio.DocumentID()
	if err != nil {
		NotFound(c, "no document uploaded")
		return
	}

	var doc database.Document
	if err := h.db.WithContext(c.Request.Context()).First(&doc, docID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "document not found")
			return
		}
		Internal(c, "failed to query document")
		return
	}

	var parsed cv.Document
	languages := []string(nil)
	if err := parsed.UnmarshalJSON(doc.Content); err == nil {
		languages = parsed.Codes
	}

	c.JSON(http.StatusOK, documentResponse{
		ID:        doc.ID,
		Title:     doc.Title,
		Content:   doc.Content,
		Languages: languages,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	})
}
