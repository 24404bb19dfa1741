package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filerelay/pkg/internal/service"
	"github.com/yeisme/filerelay/pkg/internal/types"
	"github.com/yeisme/filerelay/pkg/log"
)

// ListUploads 返回上传审计记录，支持 provider 过滤与分页.
func ListUploads(c *gin.Context) {
	var q types.ListUploadsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Message: "Invalid query parameters."})

		return
	}

	svc := service.NewUploadService(c.Request.Context())

	records, err := svc.ListRecords(c.Request.Context(), q)
	if err != nil {
		log.Logger().Error().Err(err).Msg("审计记录查询失败")
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Message: "Failed to list uploads."})

		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}
