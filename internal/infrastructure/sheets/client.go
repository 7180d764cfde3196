package sheets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/survey-reachability/internal/config"
	"github.com/survey-reachability/internal/domain"
	"github.com/survey-reachability/internal/domain/repository"
	"go.uber.org/zap"
)

type client struct {
	httpClient *http.Client
	webhookURL string
	logger     *zap.Logger
}

// NewClient создает клиент вебхука таблицы анкет
func NewClient(cfg *config.SubmissionConfig, logger *zap.Logger) repository.SubmissionSink {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		webhookURL: cfg.WebhookURL,
		logger:     logger,
	}
}

// Submit отправляет анкету как multipart/form-data.
// Ответ вебхука непрозрачен: любой полученный ответ считается доставкой,
// ошибка возвращается только при сетевом сбое. Повторов нет.
func (c *client) Submit(ctx context.Context, payload domain.Payload) error {
	if c.webhookURL == "" {
		return fmt.Errorf("submission webhook url is not configured")
	}

	body, contentType, err := EncodeMultipart(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	c.logger.Debug("Posting survey submission",
		zap.Int("fields", len(payload)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Survey submission failed", zap.Error(err))
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	c.logger.Debug("Survey submission delivered",
		zap.Int("status_code", resp.StatusCode))

	return nil
}

// EncodeMultipart кодирует анкету в порядке полей
func EncodeMultipart(payload domain.Payload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, e := range payload {
		if err := w.WriteField(e.Name, e.Value); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}
