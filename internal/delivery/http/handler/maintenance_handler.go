package handler

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"goldshop/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MaintenanceHandler serves the housekeeping endpoints: CSV export, ZIP
// backup/restore, the rolling purge of old sold items and the full wipe.
type MaintenanceHandler struct {
	exportService *service.ExportService
	backupService *service.BackupService
	saleService   *service.SaleService
	purgeMonths   int
}

func NewMaintenanceHandler(exportService *service.ExportService, backupService *service.BackupService, saleService *service.SaleService, purgeMonths int) *MaintenanceHandler {
	return &MaintenanceHandler{
		exportService: exportService,
		backupService: backupService,
		saleService:   saleService,
		purgeMonths:   purgeMonths,
	}
}

func (h *MaintenanceHandler) ExportCSV(c *gin.Context) {
	path, err := h.exportService.ExportCSV()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

func (h *MaintenanceHandler) Backup(c *gin.Context) {
	path, err := h.backupService.Backup()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

// Restore takes an uploaded ZIP archive and replaces the database and
// media directories with its contents.
func (h *MaintenanceHandler) Restore(c *gin.Context) {
	file, err := c.FormFile("archive")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "archive file is required"})
		return
	}

	tmp := filepath.Join(os.TempDir(), "goldshop_restore_"+uuid.New().String()+".zip")
	if err := c.SaveUploadedFile(file, tmp); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer os.Remove(tmp)

	if err := h.backupService.Restore(tmp); err != nil {
		if errors.Is(err, service.ErrUnsafeArchive) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "backup restored"})
}

// Purge deletes sold products older than the configured rolling window.
func (h *MaintenanceHandler) Purge(c *gin.Context) {
	n, err := h.saleService.PurgeOldSold(h.purgeMonths)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"purged": n})
}

// Wipe deletes every row and media file. The request body must carry
// {"confirm": "WIPE"} to go through.
func (h *MaintenanceHandler) Wipe(c *gin.Context) {
	var req struct {
		Confirm string `json:"confirm"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Confirm != "WIPE" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "confirmation required"})
		return
	}

	if err := h.backupService.WipeAll(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "all data wiped"})
}
