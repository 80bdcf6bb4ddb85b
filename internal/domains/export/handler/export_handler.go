package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"library-api/internal/domains/export"
	"library-api/internal/shared/response"
)

type ExportHandler struct {
	service *export.Service
}

func NewExportHandler(service *export.Service) *ExportHandler {
	return &ExportHandler{service: service}
}

// ExportXLSX - GET /v1/export/xlsx
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	wb, err := h.service.Generate(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("export workbook failed")
		response.InternalServerError(c, "Could not generate export")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+wb.FileName+`"`)
	c.Data(http.StatusOK, export.ContentType, wb.Content)
}
