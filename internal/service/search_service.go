package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"atelier-go/internal/api/dto"
	"atelier-go/internal/config"
	infraES "atelier-go/internal/infra/elasticsearch"
	"atelier-go/internal/model"
	"atelier-go/internal/repository"
	"atelier-go/pkg/logger"

	"go.uber.org/zap"
)

type SearchService struct {
	assetRepo *repository.AssetRepository
}

func NewSearchService(assetRepo *repository.AssetRepository) *SearchService {
	return &SearchService{assetRepo: assetRepo}
}

// SearchAssets 搜索资源（ES 优先，失败则降级到 DB）
func (s *SearchService) SearchAssets(ctx context.Context, req *dto.SearchAssetRequest) (*dto.SearchAssetData, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	data, err := s.searchFromES(ctx, req)
	if err != nil {
		logger.Warn("ES search failed, fallback to DB", zap.Error(err))
		return s.searchFromDB(ctx, req)
	}
	return data, nil
}

func (s *SearchService) searchFromES(ctx context.Context, req *dto.SearchAssetRequest) (*dto.SearchAssetData, error) {
	cfg := config.GetElasticsearch()
	indexName := cfg.Index["assets"]
	if indexName == "" {
		indexName = "assets"
	}

	query := s.buildESQuery(req)
	queryJSON, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	searchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := infraES.Search(searchCtx, indexName, bytes.NewReader(queryJSON))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return nil, fmt.Errorf("ES search error: %s", resp.String())
	}

	var esResp struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source struct {
					ID int64 `json:"id"`
				} `json:"_source"`
				Highlight map[string][]string `json:"highlight"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&esResp); err != nil {
		return nil, err
	}

	assetIDs := make([]int64, 0, len(esResp.Hits.Hits))
	highlights := make(map[int64]map[string][]string)
	for _, h := range esResp.Hits.Hits {
		assetIDs = append(assetIDs, h.Source.ID)
		if len(h.Highlight) > 0 {
			highlights[h.Source.ID] = h.Highlight
		}
	}

	total := esResp.Hits.Total.Value
	if len(assetIDs) == 0 {
		return s.buildSearchData(ctx, nil, highlights, total, req.Page, req.PageSize), nil
	}

	assets, err := s.assetRepo.GetByIDsWithAuthor(assetIDs)
	if err != nil {
		return nil, err
	}

	assetMap := make(map[int64]*model.Asset)
	for i := range assets {
		assetMap[assets[i].ID] = &assets[i]
	}

	// 保持 ES 的相关度排序
	ordered := make([]model.Asset, 0, len(assetIDs))
	for _, id := range assetIDs {
		if a, ok := assetMap[id]; ok {
			ordered = append(ordered, *a)
		}
	}

	return s.buildSearchData(ctx, ordered, highlights, total, req.Page, req.PageSize), nil
}

func (s *SearchService) buildESQuery(req *dto.SearchAssetRequest) map[string]interface{} {
	boolQ := map[string]interface{}{
		"filter": []interface{}{
			map[string]interface{}{"term": map[string]interface{}{"status": model.AssetStatusPublished}},
		},
		"must": []interface{}{},
	}

	if strings.TrimSpace(req.Q) != "" {
		q := strings.TrimSpace(req.Q)
		boolQ["must"] = append(boolQ["must"].([]interface{}),
			map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":                q,
					"fields":               []string{"title^3", "description^1", "author_name^2"},
					"type":                 "best_fields",
					"operator":             "or",
					"minimum_should_match": "50%",
				},
			},
		)
	}

	if req.AuthorID != nil {
		boolQ["filter"] = append(boolQ["filter"].([]interface{}),
			map[string]interface{}{"term": map[string]interface{}{"author_id": *req.AuthorID}})
	}
	if req.Kind != nil {
		boolQ["filter"] = append(boolQ["filter"].([]interface{}),
			map[string]interface{}{"term": map[string]interface{}{"kind": *req.Kind}})
	}
	if req.StartTime != nil || req.EndTime != nil {
		rangeQ := map[string]interface{}{}
		if req.StartTime != nil {
			rangeQ["gte"] = *req.StartTime
		}
		if req.EndTime != nil {
			rangeQ["lte"] = *req.EndTime
		}
		boolQ["filter"] = append(boolQ["filter"].([]interface{}),
			map[string]interface{}{"range": map[string]interface{}{"publish_time": rangeQ}})
	}

	sortConfig := []interface{}{}
	switch req.Sort {
	case "time":
		sortConfig = append(sortConfig, map[string]interface{}{"publish_time": map[string]string{"order": "desc"}})
	case "hot":
		sortConfig = append(sortConfig, map[string]interface{}{"hot_score": map[string]string{"order": "desc"}})
	default:
		sortConfig = append(sortConfig, map[string]interface{}{"_score": map[string]string{"order": "desc"}})
		sortConfig = append(sortConfig, map[string]interface{}{"publish_time": map[string]string{"order": "desc"}})
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQ,
		},
		"_source": []string{"id"},
		"from":    (req.Page - 1) * req.PageSize,
		"size":    req.PageSize,
		"sort":    sortConfig,
	}

	if strings.TrimSpace(req.Q) != "" {
		query["highlight"] = map[string]interface{}{
			"fields": map[string]interface{}{
				"title":       map[string]interface{}{},
				"description": map[string]interface{}{},
			},
			"pre_tags":  []string{"<em>"},
			"post_tags": []string{"</em>"},
		}
	}

	return query
}

func (s *SearchService) searchFromDB(ctx context.Context, req *dto.SearchAssetRequest) (*dto.SearchAssetData, error) {
	skip := (req.Page - 1) * req.PageSize

	q := strings.TrimSpace(req.Q)
	assets, total, err := s.assetRepo.SearchByKeyword(q, skip, req.PageSize)
	if err != nil {
		return nil, err
	}

	if req.AuthorID != nil || req.Kind != nil {
		filtered := make([]model.Asset, 0, len(assets))
		for i := range assets {
			if req.AuthorID != nil && assets[i].AuthorID != *req.AuthorID {
				continue
			}
			if req.Kind != nil && assets[i].Kind != *req.Kind {
				continue
			}
			filtered = append(filtered, assets[i])
		}
		assets = filtered
		total = int64(len(filtered))
	}

	return s.buildSearchData(ctx, assets, nil, total, req.Page, req.PageSize), nil
}

func (s *SearchService) buildSearchData(ctx context.Context, assets []model.Asset, highlights map[int64]map[string][]string, total int64, page, pageSize int) *dto.SearchAssetData {
	items := make([]dto.SearchAssetInfo, 0, len(assets))
	for i := range assets {
		a := &assets[i]
		authorName := ""
		if a.Author.ID != 0 {
			authorName = a.Author.UserName
		}
		items = append(items, dto.SearchAssetInfo{
			ID:           a.ID,
			AuthorID:     a.AuthorID,
			AuthorName:   authorName,
			Title:        a.Title,
			Description:  a.Description,
			Kind:         a.Kind,
			FileURL:      resolveObjectURL(ctx, a.ObjectName),
			CoverURL:     resolveObjectURL(ctx, a.CoverObject),
			ViewCount:    a.ViewCount,
			LikeCount:    a.LikeCount,
			CommentCount: a.CommentCount,
			PublishTime:  a.PublishTime,
			Highlight:    highlights[a.ID],
		})
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)
	return &dto.SearchAssetData{
		Assets:     items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
