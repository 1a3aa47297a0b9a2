package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/smtp"
	"time"

	"go.uber.org/zap"
)

// Sender delivers one formatted message to one address. Implementations
// report success or failure independently; the dispatcher never falls back
// across channels.
type Sender interface {
	Send(ctx context.Context, address string, msg Message) error
}

// ---------------------------------------------------------------------------
// Email (SMTP)
// ---------------------------------------------------------------------------

type EmailSender struct {
	host     string
	port     int
	username string
	password string
}

func NewEmailSender(host string, port int, username, password string) *EmailSender {
	return &EmailSender{host: host, port: port, username: username, password: password}
}

func (e *EmailSender) Send(ctx context.Context, address string, msg Message) error {
	var body bytes.Buffer
	fmt.Fprintf(&body, "From: %s\r\n", e.username)
	fmt.Fprintf(&body, "To: %s\r\n", address)
	fmt.Fprintf(&body, "Subject: %s\r\n", msg.Title)
	body.WriteString("MIME-Version: 1.0\r\n")
	body.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	fmt.Fprintf(&body, `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>%s</h2>
  <div style="background-color: #f8fafc; padding: 20px; border-radius: 8px;">
    <p style="white-space: pre-line;">%s</p>
  </div>
</div>`, msg.Title, msg.Body)

	auth := smtp.PlainAuth("", e.username, e.password, e.host)
	addr := fmt.Sprintf("%s:%d", e.host, e.port)

	if err := smtp.SendMail(addr, auth, e.username, []string{address}, body.Bytes()); err != nil {
		return fmt.Errorf("smtp send to %s: %w", address, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Telegram bot API
// ---------------------------------------------------------------------------

// telegramMaxLen is the bot API's message size ceiling, minus headroom.
const telegramMaxLen = 4000

type TelegramSender struct {
	token      string
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger

	// Pause between chunks so a long plan arrives at a readable cadence.
	chunkDelay time.Duration
}

func NewTelegramSender(token string, log *zap.Logger) *TelegramSender {
	return &TelegramSender{
		token:      token,
		baseURL:    "https://api.telegram.org",
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log,
		chunkDelay: 500 * time.Millisecond,
	}
}

func (t *TelegramSender) Send(ctx context.Context, address string, msg Message) error {
	full := msg.Title + "\n\n" + msg.Body
	chunks := SplitMessage(full, telegramMaxLen)

	for i, chunk := range chunks {
		if i > 0 {
			select {
			case <-time.After(t.chunkDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := t.sendChunk(ctx, address, chunk); err != nil {
			return fmt.Errorf("telegram chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}

	if len(chunks) > 1 {
		t.log.Debug("telegram message chunked",
			zap.String("chat_id", address),
			zap.Int("chunks", len(chunks)))
	}
	return nil
}

func (t *TelegramSender) sendChunk(ctx context.Context, chatID, text string) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}
	if !result.OK {
		return fmt.Errorf("telegram API: %s", result.Description)
	}
	return nil
}

// ---------------------------------------------------------------------------
// WhatsApp
// ---------------------------------------------------------------------------

type WhatsAppSender struct {
	apiURL     string
	token      string
	httpClient *http.Client
}

func NewWhatsAppSender(apiURL, token string) *WhatsAppSender {
	return &WhatsAppSender{
		apiURL:     apiURL,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (w *WhatsAppSender) Send(ctx context.Context, address string, msg Message) error {
	payload, err := json.Marshal(map[string]string{
		"to":   address,
		"body": msg.Title + "\n\n" + msg.Body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", w.apiURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+w.token)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp send to %s: %w", address, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("whatsapp API status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
