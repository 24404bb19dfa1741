package service

import (
	"context"

	"github.com/yeisme/filerelay/pkg/internal/model"
	"github.com/yeisme/filerelay/pkg/internal/types"
	"github.com/yeisme/filerelay/pkg/log"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// recordResults 把逐文件结果写入审计库. 审计是尽力而为的：
// 写库失败只记日志，不影响上传响应.
func (s *UploadService) recordResults(ctx context.Context, providerName string, files []*types.StagedFile, results []types.UploadResult) {
	if s.dbClient == nil || len(results) == 0 {
		return
	}

	records := make([]model.UploadRecord, 0, len(results))

	for i, r := range results {
		records = append(records, model.UploadRecord{
			Provider: providerName,
			FileName: r.Name,
			Size:     files[i].Size,
			Digest:   files[i].Digest,
			Success:  r.Error == "",
			URL:      r.URL,
			Error:    r.Error,
		})
	}

	if err := s.dbClient.WithContext(ctx).Create(&records).Error; err != nil {
		log.Logger().Warn().Err(err).Msg("审计记录写入失败")
	}
}

// ListRecords 分页查询审计记录，按时间倒序.
func (s *UploadService) ListRecords(ctx context.Context, q types.ListUploadsQuery) ([]types.UploadRecordView, error) {
	if s.dbClient == nil {
		return []types.UploadRecordView{}, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	if limit > maxListLimit {
		limit = maxListLimit
	}

	tx := s.dbClient.WithContext(ctx).Model(&model.UploadRecord{})
	if q.Provider != "" {
		tx = tx.Where("provider = ?", q.Provider)
	}

	var records []model.UploadRecord
	if err := tx.Order("id DESC").Limit(limit).Offset(q.Offset).Find(&records).Error; err != nil {
		return nil, err
	}

	views := make([]types.UploadRecordView, 0, len(records))
	for _, r := range records {
		views = append(views, types.UploadRecordView{
			ID:        r.ID,
			Provider:  r.Provider,
			FileName:  r.FileName,
			Size:      r.Size,
			Digest:    r.Digest,
			Success:   r.Success,
			URL:       r.URL,
			Error:     r.Error,
			CreatedAt: r.CreatedAt,
		})
	}

	return views, nil
}
