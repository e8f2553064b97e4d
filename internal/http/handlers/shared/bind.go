package shared

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// BindJSONStrict 解析请求体并拒绝未知字段，空请求体视为 {}。
func BindJSONStrict(c *gin.Context, obj interface{}) error {
	if c.Request != nil && c.Request.Body != nil {
		decoder := json.NewDecoder(c.Request.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(obj); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
	}
	if binding.Validator == nil {
		return nil
	}
	return binding.Validator.ValidateStruct(obj)
}
