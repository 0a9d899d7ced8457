package rest

import "github.com/gin-gonic/gin"

// message 所有錯誤回應的格式 {"message": "..."}
type message struct {
	Message string `json:"message"`
}

func respondMessage(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, message{Message: msg})
}
