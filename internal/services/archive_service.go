package services

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"designgen-backend/internal/models"
	"designgen-backend/internal/supabase"
)

// maxArtifactBytes caps how much of a generated artifact is archived.
const maxArtifactBytes = 8 << 20

// ArchiveService mirrors completed generation artifacts into Supabase Storage
// and publishes realtime events on terminal transitions. Everything here is
// best-effort: archival failures never surface to the workflow caller.
type ArchiveService struct {
	storageClient  *supabase.StorageClient
	realtimeClient *supabase.RealtimeClient
	httpClient     *http.Client
}

func NewArchiveService(storageClient *supabase.StorageClient, realtimeClient *supabase.RealtimeClient) *ArchiveService {
	return &ArchiveService{
		storageClient:  storageClient,
		realtimeClient: realtimeClient,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (s *ArchiveService) GenerationCompleted(rec models.GenerationRecord) {
	archiveURL := ""
	if s.storageClient != nil && rec.ResultURL != "" {
		data, contentType, err := s.fetchArtifact(rec.ResultURL)
		if err == nil {
			filename := fmt.Sprintf("snapshot_%s_%s.html", time.Now().Format("20060102_150405"), uuid.New().String()[:8])
			_, publicURL, err := s.storageClient.UploadArtifact(rec.SubjectID, filename, contentType, data)
			if err == nil {
				archiveURL = publicURL
			}
			// Upload errors are ignored - the provider-hosted result URL is
			// still served to the caller.
		}
	}

	if s.realtimeClient != nil {
		_ = s.realtimeClient.PublishSubjectEvent(rec.SubjectID, "generation_completed",
			supabase.GenerationCompletedPayload(rec.SubjectID, rec.ResultURL, archiveURL))
	}
}

func (s *ArchiveService) GenerationFailed(rec models.GenerationRecord) {
	if s.realtimeClient != nil {
		_ = s.realtimeClient.PublishSubjectEvent(rec.SubjectID, "generation_failed",
			supabase.GenerationFailedPayload(rec.SubjectID))
	}
}

func (s *ArchiveService) fetchArtifact(resultURL string) ([]byte, string, error) {
	resp, err := s.httpClient.Get(resultURL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch artifact: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to fetch artifact: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArtifactBytes))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read artifact: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/html"
	}

	return data, contentType, nil
}
