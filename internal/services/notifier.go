package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/smtp"
	"time"

	"ai-recruiter/internal/config"
)

type NotificationChannel string

const (
	ChannelEmail    NotificationChannel = "email"
	ChannelTelegram NotificationChannel = "telegram"
)

// Notification is one outbound message to a candidate. Recipient is an
// email address or a Telegram chat id depending on the channel.
type Notification struct {
	Channel   NotificationChannel
	Recipient string
	Subject   string
	Body      string
}

type NotifierService interface {
	Send(ctx context.Context, n Notification) error
}

type notifierService struct {
	smtp       config.SMTPConfig
	telegram   config.TelegramConfig
	httpClient *http.Client
}

func NewNotifierService(smtpCfg config.SMTPConfig, telegramCfg config.TelegramConfig) NotifierService {
	return &notifierService{
		smtp:     smtpCfg,
		telegram: telegramCfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Send implements NotifierService.
func (s *notifierService) Send(ctx context.Context, n Notification) error {
	switch n.Channel {
	case ChannelEmail:
		return s.sendEmail(n)
	case ChannelTelegram:
		return s.sendTelegram(ctx, n)
	default:
		return fmt.Errorf("unknown notification channel: %q", n.Channel)
	}
}

func (s *notifierService) sendEmail(n Notification) error {
	if s.smtp.User == "" {
		return fmt.Errorf("smtp is not configured")
	}

	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		s.smtp.From, n.Recipient, n.Subject, n.Body,
	)

	addr := s.smtp.Host + ":" + s.smtp.Port
	auth := smtp.PlainAuth("", s.smtp.User, s.smtp.Password, s.smtp.Host)
	if err := smtp.SendMail(addr, auth, s.smtp.From, []string{n.Recipient}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", n.Recipient, err)
	}
	return nil
}

func (s *notifierService) sendTelegram(ctx context.Context, n Notification) error {
	if s.telegram.BotToken == "" {
		return fmt.Errorf("telegram bot is not configured")
	}

	payload, err := json.Marshal(map[string]string{
		"chat_id": n.Recipient,
		"text":    n.Body,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.telegram.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call telegram api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("telegram api returned %d: %s", resp.StatusCode, body)
	}
	return nil
}
