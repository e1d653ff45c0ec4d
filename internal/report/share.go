package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const shareKeyPrefix = "report:share:"

// DefaultShareTTL is used when no positive TTL is configured.
const DefaultShareTTL = 7 * 24 * time.Hour

// ShareLink identifies a frozen, shareable report artifact.
type ShareLink struct {
	Token     string    `json:"token"`
	ProjectID string    `json:"project_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type sharedArtifact struct {
	ProjectID   string `json:"project_id"`
	Format      Format `json:"format"`
	ContentType string `json:"content_type"`
	Filename    string `json:"filename"`
	Body        []byte `json:"body"`
}

// ShareStore keeps rendered artifacts in Redis under random tokens.
type ShareStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewShareStore constructs a ShareStore instance.
func NewShareStore(client *redis.Client, ttl time.Duration) *ShareStore {
	if ttl <= 0 {
		ttl = DefaultShareTTL
	}
	return &ShareStore{client: client, ttl: ttl, now: time.Now}
}

// Save stores the artifact and returns its link.
func (s *ShareStore) Save(ctx context.Context, projectID string, artifact Artifact) (ShareLink, error) {
	if s == nil || s.client == nil {
		return ShareLink{}, fmt.Errorf("report share: redis client not configured")
	}
	payload, err := json.Marshal(sharedArtifact{
		ProjectID:   projectID,
		Format:      artifact.Format,
		ContentType: artifact.ContentType,
		Filename:    artifact.Filename,
		Body:        artifact.Body,
	})
	if err != nil {
		return ShareLink{}, fmt.Errorf("report share: encode: %w", err)
	}
	token := uuid.NewString()
	if err := s.client.Set(ctx, shareKeyPrefix+token, payload, s.ttl).Err(); err != nil {
		return ShareLink{}, fmt.Errorf("report share: save: %w", err)
	}
	return ShareLink{Token: token, ProjectID: projectID, ExpiresAt: s.now().Add(s.ttl)}, nil
}

// Load returns a previously shared artifact. Unknown, malformed and expired
// tokens all yield ErrShareNotFound.
func (s *ShareStore) Load(ctx context.Context, token string) (Artifact, error) {
	if s == nil || s.client == nil {
		return Artifact{}, fmt.Errorf("report share: redis client not configured")
	}
	if _, err := uuid.Parse(token); err != nil {
		return Artifact{}, ErrShareNotFound
	}
	raw, err := s.client.Get(ctx, shareKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return Artifact{}, ErrShareNotFound
	}
	if err != nil {
		return Artifact{}, fmt.Errorf("report share: load: %w", err)
	}
	var stored sharedArtifact
	if err := json.Unmarshal(raw, &stored); err != nil {
		return Artifact{}, fmt.Errorf("report share: decode: %w", err)
	}
	return Artifact{
		Format:      stored.Format,
		ContentType: stored.ContentType,
		Filename:    stored.Filename,
		Body:        stored.Body,
	}, nil
}
