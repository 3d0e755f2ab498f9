// handlers.go - HTTP handlers for document processing

package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ninjaforhire/mighty-gobbla/internal/notion"
	"github.com/ninjaforhire/mighty-gobbla/internal/processor"
	"github.com/ninjaforhire/mighty-gobbla/internal/storage"
)

// Options configures the HTTP layer.
type Options struct {
	UploadDir      string
	DetectorConfig processor.DetectorConfig
	// Default Notion wiring from the environment; per-request settings from
	// the store override it.
	NotionEnabled bool
	NotionConfig  notion.Config
}

// Handler holds the wired components behind the HTTP endpoints.
type Handler struct {
	pipeline *processor.Pipeline
	store    *storage.Store
	opts     Options
	log      zerolog.Logger
}

// NewHandler wires the HTTP layer.
func NewHandler(pipeline *processor.Pipeline, store *storage.Store, opts Options, log zerolog.Logger) *Handler {
	return &Handler{pipeline: pipeline, store: store, opts: opts, log: log}
}

// Register attaches all routes.
func (h *Handler) Register(r *gin.Engine) {
	r.POST("/upload_files", h.UploadFiles)
	r.POST("/process_file", h.ProcessFile)
	r.POST("/process_folder", h.ProcessFolder)
	r.POST("/notion/force_add", h.ForceAdd)

	r.GET("/history", h.GetHistory)
	r.DELETE("/history/:id", h.DeleteHistoryEntry)
	r.DELETE("/history", h.ClearHistory)

	r.GET("/settings", h.GetSettings)
	r.POST("/settings", h.UpdateSettings)
}

// ProcessResult mirrors the per-document response entry.
type ProcessResult struct {
	Original     string                   `json:"original"`
	New          string                   `json:"new,omitempty"`
	Status       string                   `json:"status"` // "gobbled" or "error"
	Message      string                   `json:"message,omitempty"`
	Data         *processor.ExpenseRecord `json:"data,omitempty"`
	NotionStatus *NotionStatus            `json:"notion_status,omitempty"`
	HistoryAdded bool                     `json:"history_added"`
}

// NotionStatus reports the record-store outcome for one document.
type NotionStatus struct {
	Status      string `json:"status"` // "success", "duplicate_suspected" or "error"
	Message     string `json:"message,omitempty"`
	URL         string `json:"url,omitempty"`
	ExistingURL string `json:"existing_url,omitempty"`
	Details     string `json:"details,omitempty"`
}

// notionBinding is the per-request resolution of the record-store settings,
// looked up once so the pipeline never re-reads shared state mid-flight.
type notionBinding struct {
	enabled  bool
	client   *notion.Client
	detector *processor.DuplicateDetector
}

// resolveNotion merges stored settings over the environment defaults.
func (h *Handler) resolveNotion(ctx context.Context) notionBinding {
	enabled := h.opts.NotionEnabled
	cfg := h.opts.NotionConfig

	settings, found, err := h.store.GetSettings(ctx)
	if err != nil {
		h.log.Warn().Err(err).Msg("loading settings failed, using environment defaults")
	} else if found {
		enabled = settings.NotionEnabled
		if settings.NotionToken != "" {
			cfg.Token = settings.NotionToken
		}
		if settings.NotionDBID != "" {
			cfg.DatabaseID = settings.NotionDBID
		}
	}

	if !enabled || cfg.Token == "" || cfg.DatabaseID == "" {
		return notionBinding{}
	}

	client := notion.NewClient(cfg, h.log)
	detector := processor.NewDuplicateDetector(client, h.opts.DetectorConfig, h.log)
	return notionBinding{enabled: true, client: client, detector: detector}
}

// submit runs the duplicate check and creates the record when none is found.
func (h *Handler) submit(ctx context.Context, nb notionBinding, record processor.ExpenseRecord, filename string) *NotionStatus {
	match := nb.detector.Check(ctx, record, filename)
	if match.IsDuplicate() {
		return &NotionStatus{
			Status:      "duplicate_suspected",
			Message:     fmt.Sprintf("Potential Duplicate: %s.", match.ReasonText()),
			ExistingURL: match.Record.URL,
			Details: fmt.Sprintf("Found entry on %s:\nTitle: %s\nSubtotal: $%.2f (+$%.2f Tax)\n(Your file: %s | $%.2f)",
				record.ISODate(), match.Record.Title, match.Record.Subtotal, match.Record.Tax, record.Store, record.Amount),
		}
	}

	url, err := nb.client.CreateRecord(ctx, record, filename)
	if err != nil {
		h.log.Error().Err(err).Str("filename", filename).Msg("notion create failed")
		return &NotionStatus{Status: "error", Message: err.Error()}
	}
	return &NotionStatus{Status: "success", URL: url}
}

// finish applies the notion submission and history bookkeeping shared by the
// processing endpoints.
func (h *Handler) finish(ctx context.Context, nb notionBinding, record processor.ExpenseRecord, newName, directory string) (*NotionStatus, bool) {
	if !nb.enabled {
		h.addHistory(ctx, newName, directory, record)
		return nil, true
	}

	status := h.submit(ctx, nb, record, newName)
	if status.Status == "success" {
		h.addHistory(ctx, newName, directory, record)
		return status, true
	}
	return status, false
}

func (h *Handler) addHistory(ctx context.Context, filename, directory string, record processor.ExpenseRecord) {
	if err := h.store.AddHistoryEntry(ctx, filename, directory, record); err != nil {
		h.log.Warn().Err(err).Str("filename", filename).Msg("recording history failed")
	}
}

// UploadFiles processes a batch of uploaded documents. Failures are isolated
// per document: one broken upload never sinks the batch.
func (h *Handler) UploadFiles(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}

	ctx := c.Request.Context()
	nb := h.resolveNotion(ctx)

	results := make([]ProcessResult, 0, len(files))
	for _, fh := range files {
		results = append(results, h.processUpload(ctx, nb, fh.Filename, func() ([]byte, error) {
			f, err := fh.Open()
			if err != nil {
				return nil, err
			}
			defer f.Close()
			return io.ReadAll(f)
		}))
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *Handler) processUpload(ctx context.Context, nb notionBinding, filename string, read func() ([]byte, error)) ProcessResult {
	data, err := read()
	if err != nil {
		return ProcessResult{Original: filename, Status: "error", Message: err.Error()}
	}

	record := h.pipeline.ProcessDocument(ctx, filename, data)
	newName := buildFilename(record, filename)

	// Uploads land in the upload directory under their canonical name.
	if h.opts.UploadDir != "" {
		dst := resolveCollision(h.opts.UploadDir, newName, "")
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			h.log.Warn().Err(err).Str("filename", filename).Msg("saving upload failed")
		} else {
			newName = filepath.Base(dst)
		}
	}

	status, added := h.finish(ctx, nb, record, newName, "Mobile Upload")
	return ProcessResult{
		Original:     filename,
		New:          newName,
		Status:       "gobbled",
		Data:         &record,
		NotionStatus: status,
		HistoryAdded: added,
	}
}

// ProcessFile processes a single local file in place.
func (h *Handler) ProcessFile(c *gin.Context) {
	path := strings.Trim(strings.TrimSpace(c.PostForm("file_path")), `"'`)
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_path is required"})
		return
	}
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusOK, gin.H{"results": []ProcessResult{
			{Original: path, Status: "error", Message: "File not found"},
		}})
		return
	}

	ctx := c.Request.Context()
	nb := h.resolveNotion(ctx)
	c.JSON(http.StatusOK, gin.H{"results": []ProcessResult{h.processLocal(ctx, nb, path)}})
}

// ProcessFolder walks a directory and processes every supported document.
func (h *Handler) ProcessFolder(c *gin.Context) {
	folder := strings.Trim(strings.TrimSpace(c.PostForm("folder_path")), `"'`)
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Directory not found"})
		return
	}

	ctx := c.Request.Context()
	nb := h.resolveNotion(ctx)

	var results []ProcessResult
	walkErr := filepath.WalkDir(folder, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".png", ".jpg", ".jpeg", ".pdf":
			results = append(results, h.processLocal(ctx, nb, path))
		}
		return nil
	})
	if walkErr != nil {
		h.log.Warn().Err(walkErr).Str("folder", folder).Msg("folder walk ended early")
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// processLocal extracts, renames in place and submits one local file.
func (h *Handler) processLocal(ctx context.Context, nb notionBinding, path string) ProcessResult {
	filename := filepath.Base(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return ProcessResult{Original: filename, Status: "error", Message: err.Error()}
	}

	record := h.pipeline.ProcessDocument(ctx, filename, data)
	newName := buildFilename(record, filename)
	newPath := resolveCollision(filepath.Dir(path), newName, path)
	newName = filepath.Base(newPath)

	if newPath != path {
		if err := os.Rename(path, newPath); err != nil {
			return ProcessResult{Original: filename, Status: "error", Message: err.Error()}
		}
		h.log.Info().Str("from", path).Str("to", newPath).Msg("renamed")
	}

	status, added := h.finish(ctx, nb, record, newName, filepath.Dir(path))
	return ProcessResult{
		Original:     filename,
		New:          newName,
		Status:       "gobbled",
		Data:         &record,
		NotionStatus: status,
		HistoryAdded: added,
	}
}

// ForceAdd creates a record store entry directly, bypassing the duplicate
// check. Used after a human has reviewed a duplicate_suspected verdict.
func (h *Handler) ForceAdd(c *gin.Context) {
	var form struct {
		Filename string  `form:"filename" binding:"required"`
		Date     string  `form:"date" binding:"required"`
		Store    string  `form:"store" binding:"required"`
		Payment  string  `form:"payment" binding:"required"`
		Amount   float64 `form:"amount"`
	}
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	nb := h.resolveNotion(ctx)
	if !nb.enabled {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Notion is not configured"})
		return
	}

	record := processor.ExpenseRecord{
		Date:    form.Date,
		Store:   form.Store,
		Payment: form.Payment,
		Amount:  form.Amount,
	}

	url, err := nb.client.CreateRecord(ctx, record, form.Filename)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"status": "error", "message": err.Error()})
		return
	}

	h.addHistory(ctx, form.Filename, "Force Add", record)
	c.JSON(http.StatusOK, gin.H{"status": "success", "url": url})
}
