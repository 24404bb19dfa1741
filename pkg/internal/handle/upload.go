package handle

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filerelay/pkg/configs"
	ctxPkg "github.com/yeisme/filerelay/pkg/context"
	"github.com/yeisme/filerelay/pkg/internal/service"
	"github.com/yeisme/filerelay/pkg/internal/types"
	"github.com/yeisme/filerelay/pkg/log"
)

const bytesPerMB = 1 << 20

// Upload 处理 multipart 上传请求并派发到指定 provider.
// provider 校验先于任何文件落盘：未知或未配置时不产生磁盘写入.
func Upload(c *gin.Context) {
	logger := log.Logger()
	svc := service.NewUploadService(c.Request.Context())

	providerID := c.PostForm("provider")

	entry, err := svc.Resolve(providerID)
	if err != nil {
		var notCfg *service.NotConfiguredError

		switch {
		case errors.Is(err, service.ErrUnknownProvider):
			logger.Warn().Str("provider", providerID).Msg("未知 provider")
			c.JSON(http.StatusBadRequest, types.ErrorResponse{Message: "Unknown provider."})
		case errors.As(err, &notCfg):
			logger.Warn().Str("provider", providerID).Msg("provider 未配置")
			c.JSON(http.StatusInternalServerError, types.ErrorResponse{
				Message: fmt.Sprintf("%s not configured.", notCfg.Provider),
			})
		default:
			c.JSON(http.StatusInternalServerError, types.ErrorResponse{Message: "Upload failed"})
		}

		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		logger.Warn().Err(err).Msg("multipart 解析失败")
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Message: "Invalid multipart request."})

		return
	}

	// files 字段允许为空，零个文件返回空 links
	fhs := form.File["files"]

	store := ctxPkg.GetStagingStore(c.Request.Context())
	if store == nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Message: "Upload failed"})

		return
	}

	maxBytes := int64(configs.GetConfig().Upload.MaxFileSizeMB) * bytesPerMB

	// 本地文件直接落入持久目录；远端文件进暂存目录，派发后删除
	results := make([]types.UploadResult, len(fhs))
	staged := make([]*types.StagedFile, 0, len(fhs))
	stagedIdx := make([]int, 0, len(fhs))

	for i, fh := range fhs {
		if maxBytes > 0 && fh.Size > maxBytes {
			results[i] = types.UploadResult{Name: fh.Filename, Error: "File too large."}

			continue
		}

		f, err := store.Stage(fh, !entry.IsLocal())
		if err != nil {
			logger.Error().Err(err).Str("file", fh.Filename).Msg("文件落盘失败")

			results[i] = types.UploadResult{Name: fh.Filename, Error: "Upload failed"}

			continue
		}

		staged = append(staged, f)
		stagedIdx = append(stagedIdx, i)
	}

	for j, r := range svc.Dispatch(c.Request.Context(), entry, staged) {
		results[stagedIdx[j]] = r
	}

	c.JSON(http.StatusOK, types.UploadResponse{
		Message: "Upload processed.",
		Links:   results,
	})
}
