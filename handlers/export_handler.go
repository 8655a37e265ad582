package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"writium/export"
	"writium/helper"
	"writium/models"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

type ExportHandler struct {
	httpHelper *helper.HTTPHelper
}

func NewExportHandler(httpHelper *helper.HTTPHelper) *ExportHandler {
	return &ExportHandler{httpHelper: httpHelper}
}

// ExportDocx renders client-supplied HTML into a Word document and streams
// it back as an attachment.
func (h *ExportHandler) ExportDocx(c *gin.Context) {
	var req models.ExportDocxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.httpHelper.SendBadRequest(c, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.HTML) == "" {
		h.httpHelper.SendBadRequest(c, "Missing HTML content")
		return
	}

	data, err := export.HTMLToDocx(req.HTML)
	if err != nil {
		h.httpHelper.SendError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="document.docx"`)
	c.Data(http.StatusOK, docxContentType, data)
}
