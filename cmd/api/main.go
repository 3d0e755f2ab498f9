// main.go - The entry point and router setup.

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ninjaforhire/mighty-gobbla/configs"
	"github.com/ninjaforhire/mighty-gobbla/internal/api"
	"github.com/ninjaforhire/mighty-gobbla/internal/logger"
	"github.com/ninjaforhire/mighty-gobbla/internal/notion"
	"github.com/ninjaforhire/mighty-gobbla/internal/ocr"
	"github.com/ninjaforhire/mighty-gobbla/internal/processor"
	"github.com/ninjaforhire/mighty-gobbla/internal/storage"
)

func main() {
	// Step 0: Load configuration from environment variables
	configs.LoadConfig()

	log := logger.New()

	// Step 0.5: Set production mode
	if ginMode := os.Getenv("GIN_MODE"); ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Step 1: Create the UPLOAD_DIR folder if it doesn't exist
	if err := os.MkdirAll(configs.UPLOAD_DIR, 0755); err != nil {
		log.Fatal().Err(err).Msg("failed to create upload directory")
	}

	// Step 1.5: Connect to MongoDB for history and settings
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, mongoClient, err := storage.Connect(ctx, configs.MONGO_URI, configs.MONGO_DB_NAME)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(ctx)
	}()

	// Step 2: Assemble the extraction pipeline
	var segmenter *processor.Segmenter
	if configs.ENABLE_SEGMENTATION {
		segmenter = processor.NewSegmenter(processor.SegmenterConfig{
			WorkHeight:  configs.SEGMENT_WORK_HEIGHT,
			MinAreaFrac: configs.SEGMENT_MIN_AREA,
		})
	}
	recognizer := ocr.NewTesseract(ocr.TesseractConfig{
		Binary:   configs.TESSERACT_BIN,
		Language: configs.OCR_LANGUAGE,
	})
	extractor := processor.NewTextExtractor(segmenter, recognizer, configs.MIN_PDF_TEXT_LEN, log)
	parser := processor.NewFieldParser(nil)
	pipeline := processor.NewPipeline(extractor, parser, log)

	handler := api.NewHandler(pipeline, store, api.Options{
		UploadDir: configs.UPLOAD_DIR,
		DetectorConfig: processor.DetectorConfig{
			ExactTolerance:    configs.DUP_EXACT_TOLERANCE,
			RelativeTolerance: configs.DUP_RELATIVE_TOLERANCE,
		},
		NotionEnabled: configs.NOTION_ENABLED,
		NotionConfig: notion.Config{
			Token:      configs.NOTION_TOKEN,
			DatabaseID: configs.NOTION_DB_ID,
		},
	}, log)

	// Step 3: Initialize the Gin router
	router := gin.Default()

	// Add CORS middleware - configure allowed origins for production
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", configs.ALLOWED_ORIGINS)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "mighty-gobbla",
		})
	})

	// Step 4: Define the API routes
	handler.Register(router)

	// Step 5: Setup HTTP server with timeouts
	srv := &http.Server{
		Addr:           ":" + configs.PORT,
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   5 * time.Minute, // folder scans can OCR many documents
		MaxHeaderBytes: 1 << 20,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", configs.PORT).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
