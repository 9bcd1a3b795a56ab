package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success writes {success: true, data: ...}.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

// SuccessFields writes {success: true} merged with fields, for endpoints
// whose payload lives at the top level of the envelope.
func SuccessFields(c *gin.Context, statusCode int, fields gin.H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(statusCode, body)
}

func Error(c *gin.Context, statusCode int, errMsg string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error":   errMsg,
	})
}

// ErrorWithMessage also carries the underlying failure text.
func ErrorWithMessage(c *gin.Context, statusCode int, errMsg string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error":   errMsg,
		"message": message,
	})
}

// CSV sends body as a downloadable attachment.
func CSV(c *gin.Context, filename string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
}
