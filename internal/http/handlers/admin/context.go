package admin

import (
	handlershared "github.com/seller-settlement/internal/http/handlers/shared"
	"github.com/seller-settlement/internal/http/response"

	"github.com/gin-gonic/gin"
)

func parsePathUint64(c *gin.Context, name string) (uint64, bool) {
	return handlershared.ParsePathUint64(c, name)
}

func parseQueryUint64(c *gin.Context, name string) (uint64, bool) {
	return handlershared.ParseQueryUint64(c, name)
}

func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := handlershared.BindJSONStrict(c, obj); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return false
	}
	return true
}

func successWithPage(c *gin.Context, rows interface{}, page, pageSize int, total int64) {
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}
