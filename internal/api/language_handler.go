package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cvstudio/internal/language"
	"cvstudio/internal/metrics"
)

// LanguageHandler 负责语言切换与内容读取。
type LanguageHandler struct {
	studio *Studio
}

// NewLanguageHandler 构造 LanguageHandler。
func NewLanguageHandler(studio *Studio) *LanguageHandler {
	return &LanguageHandler{studio: studio}
}

type selectLanguageRequest struct {
	Code string `json:"code" binding:"required"`
}

// ListLanguages 列出文档的语言选项。
func (h *LanguageHandler) ListLanguages(c *gin.Context) {
	ctrl, err := h.studio.Controller()
	if err != nil {
		NotFound(c, "no document uploaded")
		return
	}
	c.JSON(http.StatusOK, gin.H{"languages": ctrl.Languages()})
}

// SelectLanguage 切换活动语言并返回重新渲染的内容。
// 重复选择当前语言直接返回缓存内容。
func (h *LanguageHandler) SelectLanguage(c *gin.Context) {
	var req selectLanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctrl, err := h.studio.Controller()
	if err != nil {
		NotFound(c, "no document uploaded")
		return
	}

	content, err := ctrl.SelectLanguage(c.Request.Context(), req.Code)
	if err != nil {
		if errors.Is(err, language.ErrUnknownLanguage) {
			BadRequest(c, "unknown language")
			return
		}
		Internal(c, "failed to switch language")
		return
	}

	metrics.ObserveLanguageSwitch(req.Code)
	c.JSON(http.StatusOK, content)
}

// GetContent 返回当前语言的完整渲染内容（按当前偏好重新渲染）。
func (h *LanguageHandler) GetContent(c *gin.Context) {
	ctrl, err := h.studio.Controller()
	if err != nil {
		NotFound(c, "no document uploaded")
		return
	}

	content, err := ctrl.Content(c.Request.Context())
	if err != nil {
		Internal(c, "failed to render content")
		return
	}
	c.JSON(http.StatusOK, content)
}
