package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"alfredoptarigan/cv-reader/internal/models"
)

// SessionRepository holds the files each browser session has staged.
// Files only accumulate; nothing in the service removes a single file.
type SessionRepository interface {
	AddFiles(ctx context.Context, sessionID string, files []models.UploadedFile) ([]models.UploadedFile, error)
	ListFiles(ctx context.Context, sessionID string) ([]models.UploadedFile, error)
	PruneIdle(ctx context.Context, idleSince time.Time) (int, error)
}

type memorySession struct {
	files    []models.UploadedFile
	lastSeen time.Time
}

type memorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession
	now      func() time.Time
}

func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{
		sessions: make(map[string]*memorySession),
		now:      time.Now,
	}
}

// AddFiles implements SessionRepository.
func (r *memorySessionRepository) AddFiles(ctx context.Context, sessionID string, files []models.UploadedFile) ([]models.UploadedFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		s = &memorySession{}
		r.sessions[sessionID] = s
	}
	s.files = append(s.files, files...)
	s.lastSeen = r.now()

	return cloneFiles(s.files), nil
}

// ListFiles implements SessionRepository.
func (r *memorySessionRepository) ListFiles(ctx context.Context, sessionID string) ([]models.UploadedFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	s.lastSeen = r.now()

	return cloneFiles(s.files), nil
}

// PruneIdle implements SessionRepository.
func (r *memorySessionRepository) PruneIdle(ctx context.Context, idleSince time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pruned := 0
	for id, s := range r.sessions {
		if s.lastSeen.Before(idleSince) {
			delete(r.sessions, id)
			pruned++
		}
	}

	return pruned, nil
}

func cloneFiles(files []models.UploadedFile) []models.UploadedFile {
	out := make([]models.UploadedFile, len(files))
	copy(out, files)
	return out
}

type redisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionRepository stores each session as a Redis list of JSON
// encoded files. Keys expire after ttl without activity.
func NewRedisSessionRepository(client *redis.Client, ttl time.Duration) SessionRepository {
	return &redisSessionRepository{
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(sessionID string) string {
	return "cv-reader:session:" + sessionID + ":files"
}

// AddFiles implements SessionRepository.
func (r *redisSessionRepository) AddFiles(ctx context.Context, sessionID string, files []models.UploadedFile) ([]models.UploadedFile, error) {
	key := sessionKey(sessionID)

	values := make([]interface{}, 0, len(files))
	for _, f := range files {
		data, err := json.Marshal(f)
		if err != nil {
			return nil, fmt.Errorf("failed to encode file %s: %w", f.Filename, err)
		}
		values = append(values, data)
	}

	pipe := r.client.TxPipeline()
	if len(values) > 0 {
		pipe.RPush(ctx, key, values...)
	}
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to stage files: %w", err)
	}

	return r.ListFiles(ctx, sessionID)
}

// ListFiles implements SessionRepository.
func (r *redisSessionRepository) ListFiles(ctx context.Context, sessionID string) ([]models.UploadedFile, error) {
	key := sessionKey(sessionID)

	raw, err := r.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	if err := r.client.Expire(ctx, key, r.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}

	files := make([]models.UploadedFile, 0, len(raw))
	for _, item := range raw {
		var f models.UploadedFile
		if err := json.Unmarshal([]byte(item), &f); err != nil {
			return nil, fmt.Errorf("failed to decode staged file: %w", err)
		}
		files = append(files, f)
	}

	return files, nil
}

// PruneIdle implements SessionRepository. Redis expires idle sessions on
// its own.
func (r *redisSessionRepository) PruneIdle(ctx context.Context, idleSince time.Time) (int, error) {
	return 0, nil
}
