package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"cvstudio/internal/cv"
	"cvstudio/internal/prefs"
	"cvstudio/internal/render"
)

// 导入的偏好快照大小上限。
const maxPrefsBytes = 64 << 10

// PrefsHandler 负责样式设置与偏好快照的读写。
type PrefsHandler struct {
	personalizer *prefs.Personalizer
	store        prefs.Store
}

// NewPrefsHandler 构造 PrefsHandler。
func NewPrefsHandler(personalizer *prefs.Personalizer, store prefs.Store) *PrefsHandler {
	return &PrefsHandler{personalizer: personalizer, store: store}
}

type applySettingRequest struct {
	Value string `json:"value" binding:"required"`
}

// GetStyle 返回当前样式状态（含派生的对比色变量）。
func (h *PrefsHandler) GetStyle(c *gin.Context) {
	state, err := h.personalizer.Snapshot(c.Request.Context())
	if err != nil {
		Internal(c, "failed to read style state")
		return
	}
	c.JSON(http.StatusOK, state)
}

// ApplySetting 应用一项样式设置并返回新的样式状态。
func (h *PrefsHandler) ApplySetting(c *gin.Context) {
	var req applySettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	state, err := h.personalizer.Apply(c.Request.Context(), c.Param("id"), req.Value)
	if err != nil {
		if errors.Is(err, prefs.ErrUnknownSetting) {
			NotFound(c, "unknown setting")
			return
		}
		Internal(c, "failed to apply setting")
		return
	}
	c.JSON(http.StatusOK, state)
}

type setGlyphRequest struct {
	Key string `json:"key" binding:"required"`
}

// SetGlyph 设置全局的等级字形。所有带等级的分节共用同一字形。
func (h *PrefsHandler) SetGlyph(c *gin.Context) {
	var req setGlyphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if !render.ValidGlyph(req.Key) {
		BadRequest(c, "unknown glyph")
		return
	}

	if err := h.store.Set(c.Request.Context(), prefs.KeyGlyph, req.Key); err != nil {
		Internal(c, "failed to store glyph")
		return
	}
	c.JSON(http.StatusOK, gin.H{"glyph": req.Key})
}

type setSectionViewRequest struct {
	View string `json:"view" binding:"required"`
}

// SetSectionView 设置某个侧栏分节的布局。
func (h *PrefsHandler) SetSectionView(c *gin.Context) {
	var req setSectionViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	section := c.Param("section")
	if _, ok := cv.SidebarSectionByName(section); ok {
		if !cv.ValidView(cv.View(req.View)) {
			BadRequest(c, "unknown view")
			return
		}
	} else if _, ok := cv.MainSectionByName(section); ok {
		if !cv.ValidMainFormat(cv.MainFormat(req.View)) {
			BadRequest(c, "unknown format")
			return
		}
	} else {
		NotFound(c, "unknown section")
		return
	}

	if err := h.store.Set(c.Request.Context(), prefs.SectionFormatKey(section), req.View); err != nil {
		Internal(c, "failed to store view")
		return
	}
	c.JSON(http.StatusOK, gin.H{"section": section, "view": req.View})
}

type setMainFormatRequest struct {
	Format string `json:"format" binding:"required"`
}

// SetMainFormat 切换主栏的列表/表格布局：记录全局格式，同时给三个主栏
// 分节写入各自的格式标记。
func (h *PrefsHandler) SetMainFormat(c *gin.Context) {
	var req setMainFormatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if !cv.ValidMainFormat(cv.MainFormat(req.Format)) {
		BadRequest(c, "unknown format")
		return
	}

	ctx := c.Request.Context()
	if err := h.store.Set(ctx, prefs.KeyMainFormat, req.Format); err != nil {
		Internal(c, "failed to store format")
		return
	}
	for _, sec := range cv.MainSections {
		if err := h.store.Set(ctx, prefs.SectionFormatKey(sec.Name), req.Format); err != nil {
			Internal(c, "failed to store format")
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"format": req.Format})
}

type setLayoutRequest struct {
	Value string `json:"value" binding:"required"`
}

// SetLayoutPref 设置一项页面布局偏好：主题、展开/隐藏的分节、侧栏宽度
// 或打印分页开关。
func (h *PrefsHandler) SetLayoutPref(c *gin.Context) {
	var req setLayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	key := c.Param("key")
	if !prefs.LayoutKey(key) {
		NotFound(c, "unknown preference")
		return
	}

	if err := h.store.Set(c.Request.Context(), key, req.Value); err != nil {
		Internal(c, "failed to store preference")
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": req.Value})
}

// ExportPrefs 导出完整偏好快照。
func (h *PrefsHandler) ExportPrefs(c *gin.Context) {
	data, err := h.personalizer.Export(c.Request.Context())
	if err != nil {
		Internal(c, "failed to export preferences")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="cv-preferences.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

// ImportPrefs 导入偏好快照。任何未知键都会整体拒绝，不写入任何值。
func (h *PrefsHandler) ImportPrefs(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPrefsBytes+1))
	if err != nil {
		BadRequest(c, "failed to read body")
		return
	}
	if len(body) > maxPrefsBytes {
		BadRequest(c, "snapshot too large")
		return
	}

	if err := h.personalizer.Import(c.Request.Context(), body); err != nil {
		if errors.Is(err, prefs.ErrUnknownKey) {
			BadRequest(c, err.Error())
			return
		}
		BadRequest(c, "invalid snapshot")
		return
	}

	state, err := h.personalizer.Snapshot(c.Request.Context())
	if err != nil {
		Internal(c, "failed to read style state")
		return
	}
	c.JSON(http.StatusOK, state)
}

type resetRequest struct {
	Scope string `json:"scope" binding:"required"`
}

// ResetPrefs 按显式范围清除偏好："style"、"photo" 或 "everything"。
func (h *PrefsHandler) ResetPrefs(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	var scope prefs.ResetScope
	switch req.Scope {
	case "style":
		scope = prefs.ScopeStyle
	case "photo":
		scope = prefs.ScopePhoto
	case "everything":
		scope = prefs.ScopeEverything
	default:
		BadRequest(c, "unknown scope")
		return
	}

	if err := h.personalizer.Reset(c.Request.Context(), scope); err != nil {
		Internal(c, "failed to reset preferences")
		return
	}
	c.Status(http.StatusNoContent)
}
