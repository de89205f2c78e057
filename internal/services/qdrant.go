package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"
	"github.com/rs/zerolog/log"

	"ai-recruiter/internal/models"
)

// snippetLimit caps the resume text stored in the point payload.
const snippetLimit = 500

// ResumeIndexService keeps evaluated resumes searchable by semantic
// similarity. Points are keyed by interview id, so re-indexing a resume
// overwrites its previous point.
type ResumeIndexService interface {
	InitCollection(ctx context.Context) error
	IndexResume(ctx context.Context, interviewID, vacancyID uint, candidateName, resumeText string, embedding []float32) error
	SearchCandidates(ctx context.Context, queryEmbedding []float32, vacancyID uint, limit int) ([]models.CandidateSearchResult, error)
	DeleteResume(ctx context.Context, interviewID uint) error
}

type resumeIndexService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewResumeIndexService(urlStr, apiKey, collectionName string) (ResumeIndexService, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port, not the REST one.
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &resumeIndexService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004 dimension
	}, nil
}

// InitCollection implements ResumeIndexService.
func (s *resumeIndexService) InitCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Info().Str("collection", s.collectionName).Msg("qdrant collection created")
	return nil
}

// IndexResume implements ResumeIndexService.
func (s *resumeIndexService) IndexResume(ctx context.Context, interviewID, vacancyID uint, candidateName, resumeText string, embedding []float32) error {
	snippet := resumeText
	if len(snippet) > snippetLimit {
		snippet = snippet[:snippetLimit]
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDNum(uint64(interviewID)),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"interview_id":   int64(interviewID),
			"vacancy_id":     int64(vacancyID),
			"candidate_name": candidateName,
			"snippet":        snippet,
		}),
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to index resume: %w", err)
	}
	return nil
}

// SearchCandidates implements ResumeIndexService. A zero vacancyID searches
// across all vacancies.
func (s *resumeIndexService) SearchCandidates(ctx context.Context, queryEmbedding []float32, vacancyID uint, limit int) ([]models.CandidateSearchResult, error) {
	var filter *qdrant.Filter
	if vacancyID != 0 {
		filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatchInt("vacancy_id", int64(vacancyID)),
			},
		}
	}

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search candidates: %w", err)
	}

	results := make([]models.CandidateSearchResult, 0, len(points))
	for _, point := range points {
		payload := point.Payload

		result := models.CandidateSearchResult{Score: point.Score}
		if v, ok := payload["interview_id"]; ok {
			result.InterviewID = uint(v.GetIntegerValue())
		}
		if v, ok := payload["vacancy_id"]; ok {
			result.VacancyID = uint(v.GetIntegerValue())
		}
		if v, ok := payload["candidate_name"]; ok {
			result.CandidateName = v.GetStringValue()
		}
		if v, ok := payload["snippet"]; ok {
			result.Snippet = v.GetStringValue()
		}
		results = append(results, result)
	}
	return results, nil
}

// DeleteResume implements ResumeIndexService.
func (s *resumeIndexService) DeleteResume(ctx context.Context, interviewID uint) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collectionName,
		Points:         qdrant.NewPointsSelector(qdrant.NewIDNum(uint64(interviewID))),
	})
	if err != nil {
		return fmt.Errorf("failed to delete resume point: %w", err)
	}
	return nil
}
