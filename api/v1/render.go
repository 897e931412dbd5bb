package v1

import (
	"net/http"

	"github.com/Ahnabu/evo-tech-sub001/pkg/e"
	"github.com/Ahnabu/evo-tech-sub001/pkg/logger"
	"github.com/gin-gonic/gin"
)

// OK renders the success envelope
func OK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"code":    e.SUCCESS,
		"message": e.GetMsg(e.SUCCESS),
		"data":    data,
	})
}

// Fail renders an error. Business errors carry their own code and map to a
// 4xx status; anything else is logged and rendered as a plain 500.
func Fail(c *gin.Context, err error) {
	if biz, ok := e.AsBizError(err); ok {
		c.JSON(e.GetHTTPStatus(biz.Code), gin.H{
			"code":    biz.Code,
			"message": biz.Msg,
		})
		return
	}
	logger.Error("request failed", "path", c.FullPath(), "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    e.ERROR,
		"message": e.GetMsg(e.ERROR),
	})
}

// FailCode renders an error from a bare business code
func FailCode(c *gin.Context, code int) {
	c.JSON(e.GetHTTPStatus(code), gin.H{
		"code":    code,
		"message": e.GetMsg(code),
	})
}
