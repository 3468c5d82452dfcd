package supabase

import (
	"fmt"

	"github.com/supabase-community/supabase-go"
)

type RealtimeClient struct {
	client *supabase.Client
}

func NewRealtimeClient(client *supabase.Client) *RealtimeClient {
	return &RealtimeClient{
		client: client,
	}
}

func (r *RealtimeClient) PublishEvent(channel string, event string, payload map[string]interface{}) error {
	// The Supabase Go client has no direct Realtime publish; row updates on
	// generation_records already trigger Realtime for subscribed callers.
	// This hook exists for explicit event publishing via the REST API later.
	return nil
}

func (r *RealtimeClient) PublishSubjectEvent(subjectID string, event string, payload map[string]interface{}) error {
	channel := fmt.Sprintf("subject:%s", subjectID)
	return r.PublishEvent(channel, event, payload)
}

// Event payloads
func GenerationCompletedPayload(subjectID, resultURL, archiveURL string) map[string]interface{} {
	payload := map[string]interface{}{
		"subject_id": subjectID,
		"status":     "completed",
		"result_url": resultURL,
	}
	if archiveURL != "" {
		payload["archive_url"] = archiveURL
	}
	return payload
}

func GenerationFailedPayload(subjectID string) map[string]interface{} {
	return map[string]interface{}{
		"subject_id": subjectID,
		"status":     "failed",
	}
}
