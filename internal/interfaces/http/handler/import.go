package handler

import (
	"io"
	"net/http"

	importapp "github.com/fpm2805/ayuda-penco/internal/application/import"
	"github.com/fpm2805/ayuda-penco/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// DefaultMaxImportFileSize bounds uploaded import files (10MB)
const DefaultMaxImportFileSize = 10 * 1024 * 1024

// ImportHandler handles bulk import uploads
type ImportHandler struct {
	BaseHandler
	people      *importapp.PeopleImportService
	deliveries  *importapp.DeliveryImportService
	maxFileSize int64
}

// NewImportHandler creates a new ImportHandler. A non-positive maxFileSize
// uses DefaultMaxImportFileSize.
func NewImportHandler(people *importapp.PeopleImportService, deliveries *importapp.DeliveryImportService, maxFileSize int64) *ImportHandler {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxImportFileSize
	}
	return &ImportHandler{
		people:      people,
		deliveries:  deliveries,
		maxFileSize: maxFileSize,
	}
}

// upload is a read import file
type upload struct {
	name string
	data []byte
}

// readFile reads the multipart "file" field, answering the request itself
// when it is missing or too large.
func (h *ImportHandler) readFile(c *gin.Context) (*upload, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return nil, false
	}
	defer file.Close()

	if header.Size > h.maxFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "file exceeds the maximum import size")
		return nil, false
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		h.BadRequest(c, "failed to read file")
		return nil, false
	}
	if int64(len(data)) > h.maxFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "file exceeds the maximum import size")
		return nil, false
	}
	return &upload{name: header.Filename, data: data}, true
}

// readRequest reads the file and the mapping form fields
func (h *ImportHandler) readRequest(c *gin.Context) (importapp.ImportRequest, dto.ImportForm, bool) {
	var form dto.ImportForm
	if err := c.ShouldBind(&form); err != nil {
		h.BindError(c, err)
		return importapp.ImportRequest{}, form, false
	}
	mapping, err := form.ColumnMapping()
	if err != nil {
		h.HandleError(c, err)
		return importapp.ImportRequest{}, form, false
	}
	up, ok := h.readFile(c)
	if !ok {
		return importapp.ImportRequest{}, form, false
	}
	return importapp.ImportRequest{FileName: up.name, Data: up.data, Mapping: mapping}, form, true
}

// Preview handles POST /imports/preview. It returns the headers and the
// first rows so the operator can choose the column mapping.
func (h *ImportHandler) Preview(c *gin.Context) {
	up, ok := h.readFile(c)
	if !ok {
		return
	}

	preview, err := importapp.Preview(up.data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// ImportPeople handles POST /imports/people
func (h *ImportHandler) ImportPeople(c *gin.Context) {
	req, _, ok := h.readRequest(c)
	if !ok {
		return
	}

	result, err := h.people.Import(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ImportDeliveries handles POST /imports/deliveries. fixed_date and
// fixed_center apply to every row when the file has no such column.
func (h *ImportHandler) ImportDeliveries(c *gin.Context) {
	req, form, ok := h.readRequest(c)
	if !ok {
		return
	}

	result, err := h.deliveries.Import(c.Request.Context(), importapp.DeliveryImportRequest{
		ImportRequest: req,
		FixedDate:     form.FixedDate,
		FixedCenter:   form.FixedCenter,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
