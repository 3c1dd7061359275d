package admin

import (
	handlershared "github.com/storefront-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

var adminErrorRules = handlershared.ConcatErrorRules(
	handlershared.CommonErrorRules,
	handlershared.BackendErrorRules,
)

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func respondServiceError(c *gin.Context, err error, fallbackMsg string) {
	handlershared.RespondServiceError(c, err, adminErrorRules, fallbackMsg)
}
