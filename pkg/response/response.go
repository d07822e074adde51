package response

import (
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-logistics-api/internal/models"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
)

// Envelope represents the common response contract.
type Envelope struct {
	Data       interface{}            `json:"data,omitempty"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Pagination *models.Pagination     `json:"pagination,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success envelope. Empty meta maps are omitted.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination, meta ...map[string]interface{}) {
	noStore(c)
	envelope := Envelope{Data: data, Pagination: pagination}
	if len(meta) > 0 && len(meta[0]) > 0 {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// Accepted responds with HTTP 202 for work that finishes in the background.
func Accepted(c *gin.Context, data interface{}) {
	JSON(c, http.StatusAccepted, data, nil)
}

// Error sends an error envelope. Server-side failures are also recorded on the
// gin context so the request logger reports the underlying cause.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	noStore(c)
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// Attachment sends an in-memory document as a download.
func Attachment(c *gin.Context, filename, contentType string, data []byte) {
	disposition(c, filename)
	noStore(c)
	c.Data(http.StatusOK, contentType, data)
}

// Stream sends size bytes from r as a download.
func Stream(c *gin.Context, filename, contentType string, size int64, r io.Reader) {
	disposition(c, filename)
	noStore(c)
	c.DataFromReader(http.StatusOK, size, contentType, r, nil)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}

func disposition(c *gin.Context, filename string) {
	value := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	if value == "" {
		value = fmt.Sprintf("attachment; filename=%q", "download")
	}
	c.Header("Content-Disposition", value)
}
