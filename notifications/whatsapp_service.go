package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// WhatsAppSender delivers one text notification to a phone number.
type WhatsAppSender interface {
	Send(ctx context.Context, phone, text string) error
}

// WatiClient talks to the WATI business API using a pre-approved template with
// a single "message" parameter.
type WatiClient struct {
	endpoint string
	token    string
	template string
	client   *http.Client
}

type watiParameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type watiTemplatePayload struct {
	TemplateName  string          `json:"template_name"`
	BroadcastName string          `json:"broadcast_name"`
	Parameters    []watiParameter `json:"parameters"`
}

type watiResponse struct {
	Result bool   `json:"result"`
	Info   string `json:"info"`
}

func NewWatiClient(endpoint, token, template string) *WatiClient {
	if endpoint == "" || token == "" {
		log.Println("⚠️ WhatsApp service not configured. Missing WATI endpoint or token.")
		return nil
	}
	return &WatiClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		token:    strings.TrimPrefix(token, "Bearer "),
		template: template,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WatiClient) Send(ctx context.Context, phone, text string) error {
	number := normalizePhone(phone)
	if number == "" {
		return fmt.Errorf("invalid recipient phone: %q", phone)
	}

	payload := watiTemplatePayload{
		TemplateName:  w.template,
		BroadcastName: w.template,
		Parameters:    []watiParameter{{Name: "message", Value: text}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal wati payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/v1/sendTemplateMessage?whatsappNumber=%s", w.endpoint, url.QueryEscape(number))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create wati request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send wati request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wati returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed watiResponse
	if err := json.Unmarshal(respBody, &parsed); err == nil && !parsed.Result {
		return fmt.Errorf("wati rejected message: %s", parsed.Info)
	}
	return nil
}

// normalizePhone keeps the digits of an E.164-ish number, which is the form
// WATI expects (country code, no plus sign).
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() < 8 {
		return ""
	}
	return b.String()
}
