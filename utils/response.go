package utils

import "github.com/gin-gonic/gin"

// ErrorBody is the "error" member of every failed response.
type ErrorBody struct {
	Code     string      `json:"code"`
	Message  string      `json:"message"`
	Conflict interface{} `json:"conflict,omitempty"`
}

func JSONSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

func JSONError(c *gin.Context, code int, body ErrorBody) {
	c.AbortWithStatusJSON(code, gin.H{"success": false, "error": body})
}
