package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/filerelay/pkg/context"
	"github.com/yeisme/filerelay/pkg/internal/types"
)

// ServeStored 按存储名返回本地保存的文件.
func ServeStored(c *gin.Context) {
	store := ctxPkg.GetStagingStore(c.Request.Context())
	if store == nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Message: "Storage unavailable."})

		return
	}

	p, err := store.Resolve(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Message: "File not found."})

		return
	}

	c.File(p)
}
