package contact

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterContactRoutes mounts POST /api/send-message.
func RegisterContactRoutes(r gin.IRoutes, n *Notifier) {
	r.POST("/api/send-message", func(c *gin.Context) {
		var m Message
		if err := c.ShouldBindJSON(&m); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
			return
		}
		err := n.Send(c.Request.Context(), m)
		var mf *MissingFieldError
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message sent successfully"})
		case errors.As(err, &mf):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": mf.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to send message"})
		}
	})
}
