// history.go - Processing history and settings endpoints

package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ninjaforhire/mighty-gobbla/internal/storage"
)

// GetHistory returns a page of processing history, newest first.
func (h *Handler) GetHistory(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.store.GetHistory(c.Request.Context(), page, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("history query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteHistoryEntry removes one entry by its id.
func (h *Handler) DeleteHistoryEntry(c *gin.Context) {
	id := c.Param("id")
	deleted, err := h.store.DeleteHistoryEntry(c.Request.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Str("entry_id", id).Msg("history delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete entry"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "entry_id": id})
}

// ClearHistory wipes the whole history collection.
func (h *Handler) ClearHistory(c *gin.Context) {
	removed, err := h.store.ClearHistory(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("history clear failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared", "removed": removed})
}

// GetSettings reports the effective settings. The token is masked; only its
// presence is exposed.
func (h *Handler) GetSettings(c *gin.Context) {
	enabled := h.opts.NotionEnabled
	token := h.opts.NotionConfig.Token
	dbID := h.opts.NotionConfig.DatabaseID

	settings, found, err := h.store.GetSettings(c.Request.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("loading settings failed, reporting environment defaults")
	} else if found {
		enabled = settings.NotionEnabled
		if settings.NotionToken != "" {
			token = settings.NotionToken
		}
		if settings.NotionDBID != "" {
			dbID = settings.NotionDBID
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"notion_enabled":   enabled,
		"notion_token_set": token != "",
		"notion_db_id":     dbID,
	})
}

// UpdateSettings persists the record-store settings. Empty credential fields
// leave the stored values untouched so the UI never has to echo the token
// back.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var form struct {
		NotionEnabled bool   `json:"notion_enabled" form:"notion_enabled"`
		NotionToken   string `json:"notion_token" form:"notion_token"`
		NotionDBID    string `json:"notion_db_id" form:"notion_db_id"`
	}
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	current, found, err := h.store.GetSettings(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("loading settings failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}
	if !found {
		current = storage.Settings{
			NotionToken: h.opts.NotionConfig.Token,
			NotionDBID:  h.opts.NotionConfig.DatabaseID,
		}
	}

	current.NotionEnabled = form.NotionEnabled
	if form.NotionToken != "" {
		current.NotionToken = form.NotionToken
	}
	if form.NotionDBID != "" {
		current.NotionDBID = form.NotionDBID
	}

	if err := h.store.SaveSettings(ctx, current); err != nil {
		h.log.Error().Err(err).Msg("saving settings failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}
