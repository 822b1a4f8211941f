package response

import (
	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/webapi/proxyutil"
)

// CodeErr carries an errcode value through the proxyutil envelope.
type CodeErr struct {
	code uint32
	msg  string
}

func (e CodeErr) Error() string {
	return e.msg
}

func (e CodeErr) Code() uint32 {
	return e.code
}

func NewCodeErr(code int, msg string) error {
	return CodeErr{code: uint32(code), msg: msg}
}

func Success(c *gin.Context, data interface{}) {
	proxyutil.SuccessJson(c, data)
}

// Error replies with HTTP 200 and a non zero code, the envelope every
// client of this API switches on.
func Error(c *gin.Context, code int, message string) {
	proxyutil.FailJson(c, 200, NewCodeErr(code, message))
}
