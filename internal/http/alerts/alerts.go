package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/EzekielMisgae/alis-app/internal/redissvc"
)

var (
	alertFrom        = os.Getenv("ALERT_FROM")  // sender email
	alertTo          = os.Getenv("ALERT_TO")    // receiver email
	smtpServer       = os.Getenv("SMTP_SERVER") // smtp.example.com
	smtpPort         = os.Getenv("SMTP_PORT")   // e.g., 587
	smtpUser         = os.Getenv("SMTP_USER")
	smtpPassword     = os.Getenv("SMTP_PASS")
	smtpAuthDisabled = os.Getenv("SMTP_AUTH_DISABLED")

	rdb *redis.Client
	ctx context.Context
)

func SetRedisService(rs *redissvc.RedisService) {
	rdb = rs.Rdb()
	ctx = rs.Ctx()
}

// LowStockEntry is one occurrence of an item dropping below the threshold.
type LowStockEntry struct {
	ItemID    int       `json:"item_id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Threshold int       `json:"threshold"`
	Time      time.Time `json:"time"`
}

const DailyLowStockKey = "inventory:lowstock:daily"

// LogLowStock appends an event to the daily log. Best effort: a missing or
// unreachable Redis never fails the operation that triggered the alert.
func LogLowStock(itemID int, name string, quantity, threshold int) {
	if rdb == nil {
		return
	}
	entry := LowStockEntry{
		ItemID:    itemID,
		Name:      name,
		Quantity:  quantity,
		Threshold: threshold,
		Time:      time.Now(),
	}
	data, _ := json.Marshal(entry)
	_ = rdb.RPush(ctx, DailyLowStockKey, data).Err()
}

// StartDailyLowStockSummary emails the accumulated low-stock events at the
// end of each day.
func StartDailyLowStockSummary(interval time.Duration) {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 0, 0, now.Location())
		if now.After(next) {
			next = next.Add(interval)
		}
		time.Sleep(time.Until(next))
		SendDailyLowStockSummary()
	}
}

func SendDailyLowStockSummary() {
	entries, err := rdb.LRange(ctx, DailyLowStockKey, 0, -1).Result()
	if err != nil || len(entries) == 0 {
		return
	}
	_ = rdb.Del(ctx, DailyLowStockKey).Err() // clear after reading

	var logs []LowStockEntry
	lowest := make(map[string]int)
	for _, item := range entries {
		var entry LowStockEntry
		if err := json.Unmarshal([]byte(item), &entry); err == nil {
			logs = append(logs, entry)
			if q, seen := lowest[entry.Name]; !seen || entry.Quantity < q {
				lowest[entry.Name] = entry.Quantity
			}
		}
	}

	var sb strings.Builder
	sb.WriteString("<h2>Daily Low Stock Summary</h2>")
	sb.WriteString(fmt.Sprintf("<p>Low stock events: <strong>%d</strong></p>", len(logs)))

	sb.WriteString("<h3>Items below threshold</h3><ul>")
	for name, qty := range lowest {
		sb.WriteString(fmt.Sprintf("<li><code>%s</code>: down to %d</li>", name, qty))
	}
	sb.WriteString("</ul>")

	sb.WriteString("<h3>Full Log</h3><ul>")
	for _, entry := range logs {
		sb.WriteString(fmt.Sprintf("<li><b>%s</b> at quantity %d (threshold %d) at %s</li>",
			entry.Name, entry.Quantity, entry.Threshold, entry.Time.Format(time.RFC822)))
	}
	sb.WriteString("</ul>")

	subject := "Daily Low Stock Report"
	msg := strings.Join([]string{
		"From: " + alertFrom,
		"To: " + alertTo,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		sb.String(),
	}, "\r\n")

	addr := fmt.Sprintf("%s:%s", smtpServer, smtpPort)
	auth := smtp.PlainAuth("", smtpUser, smtpPassword, smtpServer)

	if smtpAuthDisabled != "" {
		auth = nil
	}

	go func() {
		if err := smtp.SendMail(addr, auth, alertFrom, []string{alertTo}, []byte(msg)); err != nil {
			log.Printf("Failed to send low stock summary: %v\n", err)
		}
	}()
}
