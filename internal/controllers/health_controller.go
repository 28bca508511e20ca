package controllers

import (
	"fmt"
	"net/http"
	"replyguy/internal/services"
	"time"

	"github.com/bwmarrin/discordgo"
	json "github.com/goccy/go-json"
)

type HealthController struct {
	session   *discordgo.Session
	reports   services.ReportServiceInterface
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	GatewayMs     int64   `json:"gateway_latency_ms"`
	TrackedUsers  int     `json:"tracked_users"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		GatewayMs:     hc.session.HeartbeatLatency().Milliseconds(),
		TrackedUsers:  hc.reports.TrackedUsers(),
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(session *discordgo.Session, reports services.ReportServiceInterface) *HealthController {
	return &HealthController{
		session:   session,
		reports:   reports,
		startTime: time.Now(),
	}
}
