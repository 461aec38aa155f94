package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mp2tech/service-center/internal/config"
	apperrors "github.com/mp2tech/service-center/pkg/util/errorutil"
)

const (
	chatHistoryKeyPrefix = "chat:history:"
	chatHistoryMaxTurns  = 40
	geminiBaseURL        = "https://generativelanguage.googleapis.com/v1beta/models"
)

// ChatMessage is one turn of the assistant conversation.
type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ChatService fronts the Gemini API with per-user conversation history kept
// in Redis. History expires after the configured TTL so stale context never
// leaks into a new support session.
type ChatService struct {
	cfg    config.ChatConfig
	redis  *redis.Client
	client *http.Client
	logger *zap.Logger
}

// NewChatService builds the service.
func NewChatService(cfg config.ChatConfig, redisClient *redis.Client, logger *zap.Logger) *ChatService {
	return &ChatService{
		cfg:    cfg,
		redis:  redisClient,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// Enabled reports whether the assistant is configured.
func (s *ChatService) Enabled() bool {
	return s.cfg.GeminiAPIKey != ""
}

// Send forwards a user message with accumulated history and returns the
// model's reply. Both turns are appended to the history afterwards.
func (s *ChatService) Send(ctx context.Context, userID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", apperrors.NewValidationError("message is required", nil)
	}
	if !s.Enabled() {
		return "", apperrors.NewValidationError("chat assistant is not configured", nil)
	}

	history, err := s.History(ctx, userID)
	if err != nil {
		s.logger.Warn("chat history read failed", zap.String("user_id", userID), zap.Error(err))
		history = nil
	}

	reply, err := s.generate(ctx, history, message)
	if err != nil {
		return "", err
	}

	s.appendHistory(ctx, userID,
		ChatMessage{Role: "user", Text: message},
		ChatMessage{Role: "model", Text: reply})
	return reply, nil
}

// History returns the stored conversation for a user, oldest first.
func (s *ChatService) History(ctx context.Context, userID string) ([]ChatMessage, error) {
	raw, err := s.redis.LRange(ctx, chatHistoryKeyPrefix+userID, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	messages := make([]ChatMessage, 0, len(raw))
	for _, entry := range raw {
		var msg ChatMessage
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Reset clears a user's conversation.
func (s *ChatService) Reset(ctx context.Context, userID string) error {
	return s.redis.Del(ctx, chatHistoryKeyPrefix+userID).Err()
}

func (s *ChatService) appendHistory(ctx context.Context, userID string, messages ...ChatMessage) {
	key := chatHistoryKeyPrefix + userID
	for _, msg := range messages {
		encoded, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		if err := s.redis.RPush(ctx, key, encoded).Err(); err != nil {
			s.logger.Warn("chat history write failed", zap.String("user_id", userID), zap.Error(err))
			return
		}
	}
	s.redis.LTrim(ctx, key, -chatHistoryMaxTurns, -1)
	ttl := time.Duration(s.cfg.HistoryTTLHours) * time.Hour
	if ttl > 0 {
		s.redis.Expire(ctx, key, ttl)
	}
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (s *ChatService) generate(ctx context.Context, history []ChatMessage, message string) (string, error) {
	contents := make([]geminiContent, 0, len(history)+1)
	for _, msg := range history {
		contents = append(contents, geminiContent{
			Role:  msg.Role,
			Parts: []geminiPart{{Text: msg.Text}},
		})
	}
	contents = append(contents, geminiContent{
		Role:  "user",
		Parts: []geminiPart{{Text: message}},
	})

	body, err := json.Marshal(geminiRequest{Contents: contents})
	if err != nil {
		return "", apperrors.MapError(err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", geminiBaseURL, s.cfg.Model, s.cfg.GeminiAPIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", apperrors.MapError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", apperrors.MapError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", apperrors.NewInternalError(fmt.Errorf("gemini responded %d: %s", resp.StatusCode, payload))
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", apperrors.MapError(err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", apperrors.NewInternalError(fmt.Errorf("gemini returned no candidates"))
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
