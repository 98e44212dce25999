package elasticsearch

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"atelier-go/internal/config"
	"atelier-go/pkg/logger"

	"go.uber.org/zap"
)

// GetAssetsIndexMapping 返回 assets 索引的 mapping
func GetAssetsIndexMapping() string {
	return `{
		"settings": {
			"number_of_shards": 1,
			"number_of_replicas": 0
		},
		"mappings": {
			"properties": {
				"id": {"type": "long"},
				"author_id": {"type": "long"},
				"author_name": {"type": "keyword"},
				"title": {
					"type": "text",
					"fields": {"keyword": {"type": "keyword", "ignore_above": 200}}
				},
				"description": {"type": "text"},
				"kind": {"type": "keyword"},
				"status": {"type": "keyword"},
				"publish_time": {"type": "long"},
				"view_count": {"type": "long"},
				"like_count": {"type": "long"},
				"comment_count": {"type": "long"},
				"hot_score": {"type": "float"},
				"created_at": {"type": "date", "format": "strict_date_optional_time||epoch_millis"},
				"updated_at": {"type": "date", "format": "strict_date_optional_time||epoch_millis"}
			}
		}
	}`
}

// assetsIndexName 取配置的索引名，缺省为 assets
func assetsIndexName() string {
	cfg := config.GetElasticsearch()
	if name := cfg.Index["assets"]; name != "" {
		return name
	}
	return "assets"
}

// EnsureAssetsIndex 确保 assets 索引存在，不存在则创建
func EnsureAssetsIndex(ctx context.Context) error {
	indexName := assetsIndexName()

	exists, err := IndicesExists(ctx, indexName)
	if err != nil {
		return fmt.Errorf("check index %s: %w", indexName, err)
	}
	if exists {
		return nil
	}

	resp, err := IndicesCreate(ctx, indexName, bytes.NewReader([]byte(GetAssetsIndexMapping())))
	if err != nil {
		return fmt.Errorf("create index %s: %w", indexName, err)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return fmt.Errorf("create index %s failed: %s", indexName, resp.String())
	}

	logger.Info("Elasticsearch index created", zap.String("index", indexName))
	return nil
}

// InitIndexes 初始化全部索引
func InitIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return EnsureAssetsIndex(ctx)
}
