package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"atelier-go/internal/model"
	"atelier-go/pkg/logger"

	"go.uber.org/zap"
)

// ESAssetDoc ES 资源文档结构
type ESAssetDoc struct {
	ID           int64   `json:"id"`
	AuthorID     int64   `json:"author_id"`
	AuthorName   string  `json:"author_name"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Kind         string  `json:"kind"`
	Status       string  `json:"status"`
	PublishTime  int64   `json:"publish_time"`
	ViewCount    int64   `json:"view_count"`
	LikeCount    int64   `json:"like_count"`
	CommentCount int64   `json:"comment_count"`
	HotScore     float64 `json:"hot_score"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func hotScore(view, like, comment int64) float64 {
	return (float64(view)*0.5 + float64(like)*2.0 + float64(comment)*1.5) / 1000
}

func assetToESDoc(a *model.Asset, authorName string) *ESAssetDoc {
	pubTime := int64(0)
	if a.PublishTime != nil {
		pubTime = *a.PublishTime
	}
	return &ESAssetDoc{
		ID:           a.ID,
		AuthorID:     a.AuthorID,
		AuthorName:   authorName,
		Title:        a.Title,
		Description:  a.Description,
		Kind:         a.Kind,
		Status:       a.Status,
		PublishTime:  pubTime,
		ViewCount:    a.ViewCount,
		LikeCount:    a.LikeCount,
		CommentCount: a.CommentCount,
		HotScore:     hotScore(a.ViewCount, a.LikeCount, a.CommentCount),
		CreatedAt:    a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    a.UpdatedAt.Format(time.RFC3339),
	}
}

// SyncAsset 同步单个资源到 ES
func SyncAsset(ctx context.Context, a *model.Asset, authorName string) error {
	doc := assetToESDoc(a, authorName)
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	resp, err := Index(ctx, assetsIndexName(), fmt.Sprintf("%d", a.ID), bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return fmt.Errorf("index document failed: %s", resp.String())
	}

	logger.Debug("Asset synced to ES", zap.Int64("asset_id", a.ID))
	return nil
}

// DeleteAsset 从 ES 删除资源文档
func DeleteAsset(ctx context.Context, assetID int64) error {
	resp, err := Delete(ctx, assetsIndexName(), fmt.Sprintf("%d", assetID))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// 文档不存在视为删除成功
	if resp.IsError() && resp.StatusCode != 404 {
		return fmt.Errorf("delete document failed: %s", resp.String())
	}

	logger.Debug("Asset removed from ES", zap.Int64("asset_id", assetID))
	return nil
}
