package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type webhookPayload struct {
	UserUUID  string `json:"user_uuid"`
	NewIP     string `json:"new_ip"`
	KnownIP   string `json:"known_ip"`
	Timestamp string `json:"timestamp"`
}

// NotifyWebhook отправляет POST-уведомление о попытке обновления токенов
// с нового IP адреса. Операция refresh при этом не блокируется.
func NotifyWebhook(url string, userUUID string, newIP string, knownIP string) error {
	if url == "" {
		return nil
	}

	payload := webhookPayload{
		UserUUID:  userUUID,
		NewIP:     newIP,
		KnownIP:   knownIP,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ошибка сериализации webhook: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ошибка отправки webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook вернул статус %d", resp.StatusCode)
	}

	return nil
}
