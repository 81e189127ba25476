package server

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/kbukum/faultline/validation"
)

// BindJSON decodes the request body into obj and checks its `binding` and
// `validate` tags. A body that is empty or does not parse is returned
// unchanged and classified as malformed input; a body over the size limit
// as too large; a body that parses but fails either set of tags as
// ERR_VALIDATION.
func BindJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindWith(obj, binding.JSON); err != nil {
		return validation.FromError(err)
	}
	return validation.Validate(obj)
}
