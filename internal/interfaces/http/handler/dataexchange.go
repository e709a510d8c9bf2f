package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	dataexchangeapp "github.com/monartisan/backend/internal/application/dataexchange"
	"github.com/monartisan/backend/internal/domain/dataexchange"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/internal/interfaces/http/dto"
)

const (
	// Maximum file size for imports (10MB)
	maxImportFileSize = 10 * 1024 * 1024
)

// DataExchangeService imports and exports spreadsheets
type DataExchangeService interface {
	ImportClients(ctx context.Context, tenantID, userID uuid.UUID, req dataexchangeapp.ImportRequest) (*dataexchangeapp.ImportResponse, error)
	ListImportRuns(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[dataexchangeapp.ImportRunResponse], error)
	ExportClients(ctx context.Context, tenantID uuid.UUID, format string) (*dataexchangeapp.Export, error)
	ExportInvoices(ctx context.Context, tenantID uuid.UUID, format string, from, to *time.Time) (*dataexchangeapp.Export, error)
}

// DataExchangeHandler handles spreadsheet import and export
type DataExchangeHandler struct {
	BaseHandler
	service DataExchangeService
}

// NewDataExchangeHandler creates a new DataExchangeHandler
func NewDataExchangeHandler(service DataExchangeService) *DataExchangeHandler {
	return &DataExchangeHandler{service: service}
}

// ExportQuery selects the export format and period
type ExportQuery struct {
	Format string     `form:"format" binding:"omitempty,oneof=csv xlsx CSV XLSX"`
	From   *time.Time `form:"from" time_format:"2006-01-02"`
	To     *time.Time `form:"to" time_format:"2006-01-02"`
}

func (q ExportQuery) format() string {
	if q.Format == "" {
		return "xlsx"
	}
	return strings.ToLower(q.Format)
}

// ImportClients godoc
//
//	@Summary		Import clients from a spreadsheet
//	@Description	Reads a CSV or XLSX file. In VALIDATE mode nothing is written; COMMIT creates new clients and updates those matched by email. Invalid rows are skipped and reported.
//	@Tags			import
//	@ID				importClients
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"CSV or XLSX file"
//	@Param			mode	formData	string	false	"VALIDATE or COMMIT"	Enums(VALIDATE, COMMIT)	default(VALIDATE)
//	@Param			format	formData	string	false	"Overrides the format derived from the file name"	Enums(csv, xlsx)
//	@Success		200		{object}	APIResponse[dataexchangeapp.ImportResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		413		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/import/clients [post]
func (h *DataExchangeHandler) ImportClients(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	mode := dataexchange.Mode(strings.ToUpper(c.DefaultPostForm("mode", string(dataexchange.ModeValidate))))
	if !mode.IsValid() {
		h.BadRequest(c, "mode must be VALIDATE or COMMIT")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	if header.Size > maxImportFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum size of 10MB")
		return
	}
	if header.Size == 0 {
		h.Error(c, http.StatusBadRequest, "EMPTY_FILE", "file is empty")
		return
	}

	result, err := h.service.ImportClients(c.Request.Context(), tenantID, userID, dataexchangeapp.ImportRequest{
		FileName: header.Filename,
		Format:   c.PostForm("format"),
		Mode:     mode,
		Data:     file,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListImportRuns godoc
//
//	@Summary		Import history
//	@Tags			import
//	@ID				listImportRuns
//	@Produce		json
//	@Param			page		query		int	false	"Page number"	default(1)
//	@Param			page_size	query		int	false	"Page size"		default(20)	maximum(100)
//	@Success		200			{object}	APIResponse[[]dataexchangeapp.ImportRunResponse]
//	@Security		BearerAuth
//	@Router			/import/runs [get]
func (h *DataExchangeHandler) ListImportRuns(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var q ListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.service.ListImportRuns(c.Request.Context(), tenantID, q.Filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, &page)
}

// ExportClients godoc
//
//	@Summary		Export clients
//	@Tags			export
//	@ID				exportClients
//	@Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,text/csv
//	@Param			format	query		string	false	"csv or xlsx"	default(xlsx)
//	@Success		200		{file}		file
//	@Failure		400		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/export/clients [get]
func (h *DataExchangeHandler) ExportClients(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var q ExportQuery
	if !h.bindQuery(c, &q) {
		return
	}
	export, err := h.service.ExportClients(c.Request.Context(), tenantID, q.format())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.sendFile(c, export)
}

// ExportInvoices godoc
//
//	@Summary		Export the invoice ledger
//	@Description	Issued invoices of the period with their totals per VAT rate
//	@Tags			export
//	@ID				exportInvoices
//	@Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,text/csv
//	@Param			format	query		string	false	"csv or xlsx"	default(xlsx)
//	@Param			from	query		string	false	"Issued on or after (YYYY-MM-DD)"
//	@Param			to		query		string	false	"Issued on or before (YYYY-MM-DD)"
//	@Success		200		{file}		file
//	@Failure		400		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/export/invoices [get]
func (h *DataExchangeHandler) ExportInvoices(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var q ExportQuery
	if !h.bindQuery(c, &q) {
		return
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, "to must not be before from")
		return
	}
	export, err := h.service.ExportInvoices(c.Request.Context(), tenantID, q.format(), q.From, q.To)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.sendFile(c, export)
}

func (h *DataExchangeHandler) sendFile(c *gin.Context, export *dataexchangeapp.Export) {
	c.Header("Content-Disposition", `attachment; filename="`+export.FileName+`"`)
	c.Data(http.StatusOK, export.ContentType, export.Data)
}
