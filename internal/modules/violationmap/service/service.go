package violationmap

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	complaintRepo "github.com/rightsvoice/backend/internal/modules/complaint/repository"
	mapDto "github.com/rightsvoice/backend/internal/modules/violationmap/dto"
)

const (
	mapCacheKey = "violation_map"
	mapCacheTTL = 5 * time.Minute
)

// ViolationMapService exposes resolved, geotagged reports as map data.
// The map only ever reflects complaints moderators have verified.
type ViolationMapService interface {
	GetMap(ctx context.Context, category string) (*mapDto.MapResponse, error)
}

type violationMapService struct {
	complaintRepo complaintRepo.ComplaintRepository
	redisClient   *redis.Client
}

func NewViolationMapService(complaintRepo complaintRepo.ComplaintRepository, redisClient *redis.Client) ViolationMapService {
	return &violationMapService{
		complaintRepo: complaintRepo,
		redisClient:   redisClient,
	}
}

func (s *violationMapService) GetMap(ctx context.Context, category string) (*mapDto.MapResponse, error) {
	// The unfiltered map is hot and changes rarely, cache it briefly
	if category == "" && s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, mapCacheKey).Bytes(); err == nil {
			var resp mapDto.MapResponse
			if err := json.Unmarshal(cached, &resp); err == nil {
				return &resp, nil
			}
		}
	}

	complaints, err := s.complaintRepo.FindResolvedWithLocation(ctx)
	if err != nil {
		return nil, err
	}

	resp := &mapDto.MapResponse{
		Points:     make([]mapDto.MapPoint, 0, len(complaints)),
		ByCategory: make(map[string]int64),
	}

	for _, c := range complaints {
		if category != "" && c.Category != category {
			continue
		}
		resp.Points = append(resp.Points, mapDto.MapPoint{
			ID:           c.ID,
			Title:        c.Title,
			Category:     c.Category,
			Latitude:     *c.Latitude,
			Longitude:    *c.Longitude,
			LocationName: c.LocationName,
			ReportedAt:   c.CreatedAt,
		})
		resp.ByCategory[c.Category]++
		resp.Total++
	}

	if category == "" && s.redisClient != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := s.redisClient.Set(ctx, mapCacheKey, data, mapCacheTTL).Err(); err != nil {
				log.Printf("failed to cache violation map: %v", err)
			}
		}
	}

	return resp, nil
}
