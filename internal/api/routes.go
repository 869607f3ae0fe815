package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"cvstudio/internal/phototransform"
	"cvstudio/internal/prefs"
	"cvstudio/internal/render"
	"cvstudio/internal/storage"
)

// RegisterRoutes 注册 API 路由，不包含 /api 前缀。
func RegisterRoutes(
	router *gin.Engine,
	db *gorm.DB,
	asynqClient *asynq.Client,
	redisClient *redis.Client,
	logger *slog.Logger,
	storageClient *storage.Client,
	studio *Studio,
	renderer *render.Renderer,
	personalizer *prefs.Personalizer,
	store prefs.Store,
	engine *phototransform.Engine,
	clamdAddr string,
) {
	documentHandler := NewDocumentHandler(db, studio)
	languageHandler := NewLanguageHandler(studio)
	renderHandler := NewRenderHandler(studio, renderer, store)
	prefsHandler := NewPrefsHandler(personalizer, store)
	photoHandler := NewPhotoHandler(db, storageClient, redisClient, engine, studio, logger, clamdAddr)
	exportHandler := NewExportHandler(db, asynqClient, storageClient, studio)
	wsHandler := NewWsHandler(redisClient, logger, nil)

	v1 := router.Group("/v1")
	{
		v1.GET("/ws", wsHandler.HandleConnection)

		documentGroup := v1.Group("/document")
		{
			documentGroup.POST("", documentHandler.UploadDocument)
			documentGroup.GET("", documentHandler.GetDocument)
		}

		languageGroup := v1.Group("/languages")
		{
			languageGroup.GET("", languageHandler.ListLanguages)
			languageGroup.POST("/select", languageHandler.SelectLanguage)
		}
		v1.GET("/content", languageHandler.GetContent)
		v1.GET("/render/section/:name", renderHandler.RenderSection)

		prefsGroup := v1.Group("/preferences")
		{
			prefsGroup.GET("/style", prefsHandler.GetStyle)
			prefsGroup.PUT("/style/:id", prefsHandler.ApplySetting)
			prefsGroup.PUT("/glyph", prefsHandler.SetGlyph)
			prefsGroup.PUT("/sections/:section/view", prefsHandler.SetSectionView)
			prefsGroup.PUT("/main-format", prefsHandler.SetMainFormat)
			prefsGroup.PUT("/layout/:key", prefsHandler.SetLayoutPref)
			prefsGroup.GET("/export", prefsHandler.ExportPrefs)
			prefsGroup.POST("/import", prefsHandler.ImportPrefs)
			prefsGroup.POST("/reset", prefsHandler.ResetPrefs)
		}

		photoGroup := v1.Group("/photo")
		{
			photoGroup.POST("/upload", photoHandler.UploadPhoto)
			photoGroup.GET("/url", photoHandler.GetPhotoURL)
			photoGroup.GET("/transform", photoHandler.GetTransform)
			photoGroup.POST("/transform/pointer-down", photoHandler.PointerDown)
			photoGroup.POST("/transform/pointer-move", photoHandler.PointerMove)
			photoGroup.POST("/transform/pointer-up", photoHandler.PointerUp)
			photoGroup.POST("/transform/wheel", photoHandler.Wheel)
			photoGroup.POST("/transform/reset", photoHandler.ResetTransform)
			photoGroup.POST("/transform/center-face", photoHandler.CenterOnFace)
		}

		exportGroup := v1.Group("/export")
		{
			exportGroup.POST("", exportHandler.CreateExport)
			exportGroup.GET("/:id", exportHandler.GetExport)
			exportGroup.GET("/:id/download-link", exportHandler.GetDownloadLink)
		}
	}
}
