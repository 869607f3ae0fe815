package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cvstudio/internal/api/middleware"
	"cvstudio/internal/cv"
	"cvstudio/internal/metrics"
	"cvstudio/internal/prefs"
	"cvstudio/internal/render"
)

// RenderHandler 按需渲染单个分节。偏好面板切换布局或字形时，页面只
// 需要刷新受影响的分节。
type RenderHandler struct {
	studio   *Studio
	renderer *render.Renderer
	store    prefs.Store
}

// NewRenderHandler 构造 RenderHandler。
func NewRenderHandler(studio *Studio, renderer *render.Renderer, store prefs.Store) *RenderHandler {
	return &RenderHandler{studio: studio, renderer: renderer, store: store}
}

// RenderSection 渲染活动语言下的指定分节。布局与字形跟随已保存的偏好，
// 查询参数可以临时覆盖。未知分节返回 404，页面保持原状。
func (h *RenderHandler) RenderSection(c *gin.Context) {
	ctrl, err := h.studio.Controller()
	if err != nil {
		NotFound(c, "no document uploaded")
		return
	}

	ctx := c.Request.Context()
	name := c.Param("name")

	view := cv.View(c.Query("view"))
	if view == "" {
		if stored, ok, _ := h.store.Get(ctx, prefs.SectionFormatKey(name)); ok {
			view = cv.View(stored)
		} else if _, sidebar := cv.SidebarSectionByName(name); sidebar {
			if stored, ok, _ := h.store.Get(ctx, prefs.KeySidebarView); ok {
				view = cv.View(stored)
			}
		} else if stored, ok, _ := h.store.Get(ctx, prefs.KeyMainFormat); ok {
			view = cv.View(stored)
		}
	}

	glyph := c.Query("glyph")
	if glyph == "" {
		if stored, ok, _ := h.store.Get(ctx, prefs.KeyGlyph); ok {
			glyph = stored
		} else {
			glyph = render.GlyphDefault
		}
	}

	lang, rec := ctrl.Active()
	html, err := h.renderer.Section(name, rec, view, glyph)
	metrics.ObserveSectionRender(name, err)
	if err != nil {
		if errors.Is(err, render.ErrUnknownSection) {
			middleware.LoggerFromContext(c).Warn("unknown section requested")
			NotFound(c, "unknown section")
			return
		}
		Internal(c, "failed to render section")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lang":    lang,
		"section": name,
		"html":    html,
	})
}
