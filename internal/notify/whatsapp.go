package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mp2tech/service-center/internal/config"
)

// Gateway sends a templated message to a phone number. Variable order must
// match the template's declared placeholder order exactly.
type Gateway interface {
	Send(ctx context.Context, recipientPhone, templateKey string, variables []string) error
}

// WhatsAppGateway talks to the Meta Graph API template-message endpoint.
type WhatsAppGateway struct {
	baseURL     string
	accessToken string
	client      *http.Client
}

// NewWhatsAppGateway builds a gateway from config.
func NewWhatsAppGateway(cfg config.WhatsAppConfig) *WhatsAppGateway {
	return &WhatsAppGateway{
		baseURL:     fmt.Sprintf("https://graph.facebook.com/%s/%s", cfg.APIVersion, cfg.PhoneNumberID),
		accessToken: cfg.AccessToken,
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

type templateParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type templateComponent struct {
	Type       string              `json:"type"`
	Parameters []templateParameter `json:"parameters"`
}

type templateMessage struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Template         struct {
		Name     string `json:"name"`
		Language struct {
			Code string `json:"code"`
		} `json:"language"`
		Components []templateComponent `json:"components"`
	} `json:"template"`
}

// Send posts one template message. The returned error wraps the API response
// body on non-2xx so callers can log the gateway's reason.
func (g *WhatsAppGateway) Send(ctx context.Context, recipientPhone, templateKey string, variables []string) error {
	msg := templateMessage{
		MessagingProduct: "whatsapp",
		To:               recipientPhone,
		Type:             "template",
	}
	msg.Template.Name = templateKey
	msg.Template.Language.Code = "en"

	params := make([]templateParameter, 0, len(variables))
	for _, v := range variables {
		params = append(params, templateParameter{Type: "text", Text: v})
	}
	msg.Template.Components = []templateComponent{{Type: "body", Parameters: params}}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("whatsapp send %s: status %d: %s", templateKey, resp.StatusCode, detail)
	}
	return nil
}
