package handler

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/quizbank-api/internal/logger"
	"github.com/yourusername/quizbank-api/internal/service"
)

const (
	exportBaseName = "questions_export"
	xlsxMIME       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// TransferHandler serves CSV export, import and delete.
type TransferHandler struct {
	transferService *service.TransferService
}

// NewTransferHandler creates a TransferHandler.
func NewTransferHandler(transferService *service.TransferService) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

// Export streams every question as CSV, or as XLSX with ?format=xlsx.
// The body is rendered into memory first so a store failure still yields
// a clean 500 instead of a truncated download.
func (h *TransferHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if strings.EqualFold(c.Query("format"), "xlsx") {
		if err := h.transferService.ExportXLSX(c.Request.Context(), &buf); err != nil {
			handleError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", exportBaseName))
		c.Data(http.StatusOK, xlsxMIME, buf.Bytes())
		return
	}

	if err := h.transferService.ExportCSV(c.Request.Context(), &buf); err != nil {
		handleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", exportBaseName))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// openUpload returns the uploaded CSV or writes the 400 response itself.
func openUpload(c *gin.Context) (multipart.File, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "no CSV file was uploaded")
		return nil, false
	}
	if !strings.HasSuffix(header.Filename, ".csv") {
		badRequest(c, "please select a CSV file")
		return nil, false
	}
	f, err := header.Open()
	if err != nil {
		csvFailed(c, err)
		return nil, false
	}
	return f, true
}

func csvFailed(c *gin.Context, err error) {
	logger.Get().Warn("csv processing failed", zap.String("path", c.FullPath()), zap.Error(err))
	badRequest(c, "CSV processing failed: "+err.Error())
}

// Import upserts every row of the uploaded CSV.
func (h *TransferHandler) Import(c *gin.Context) {
	f, ok := openUpload(c)
	if !ok {
		return
	}
	defer f.Close()

	summary, err := h.transferService.Import(c.Request.Context(), f)
	if err != nil {
		csvFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "CSV import completed", "summary": summary})
}

// Delete removes every question listed in the uploaded CSV.
func (h *TransferHandler) Delete(c *gin.Context) {
	f, ok := openUpload(c)
	if !ok {
		return
	}
	defer f.Close()

	summary, err := h.transferService.DeleteFromCSV(c.Request.Context(), f)
	if err != nil {
		csvFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "CSV delete completed", "summary": summary})
}
