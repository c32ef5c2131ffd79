package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/julianstephens/habitlens/internal/errors"
)

// Response is the envelope of every API reply
type Response struct {
	Code  int         `json:"code"`
	Data  interface{} `json:"data,omitempty"`
	Msg   string      `json:"msg"`
	Error string      `json:"error,omitempty"`
}

func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Code: 0, Data: data, Msg: "ok"})
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case apperrors.IsNotFound(err):
		return http.StatusNotFound
	case apperrors.IsConflict(err):
		return http.StatusConflict
	case apperrors.IsInvalidInput(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	status := statusFor(err)
	res := Response{Code: status, Msg: http.StatusText(status)}
	// internal details stay in the log outside debug mode
	if status != http.StatusInternalServerError || gin.Mode() != gin.ReleaseMode {
		res.Error = err.Error()
	}
	c.AbortWithStatusJSON(status, res)
}

func paramErr(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{
		Code:  http.StatusBadRequest,
		Msg:   "parameter error",
		Error: err.Error(),
	})
}
