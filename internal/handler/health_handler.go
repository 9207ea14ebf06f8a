package handler

import (
	"encoding/json"
	"net/http"

	"accounts-web-server/config"
	"accounts-web-server/internal/model/requestresponse"
)

type HealthHandler struct {
	db    *config.Database
	redis *config.RedisClient
}

func NewHealthHandler(db *config.Database, redis *config.RedisClient) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Health godoc
// @Summary Liveness-проверка
// @Description Проверяет доступность процесса, БД и Redis
// @Tags Health
// @Produce json
// @Success 200 {object} requestresponse.HealthResponse
// @Failure 503 {object} requestresponse.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	resp := requestresponse.HealthResponse{
		Status: "healthy",
		Checks: map[string]string{},
	}

	if err := h.db.PingContext(r.Context()); err != nil {
		resp.Checks["database"] = "error: " + err.Error()
		resp.Status = "unhealthy"
	} else {
		resp.Checks["database"] = "ok"
	}

	if err := h.redis.Client.Ping(r.Context()).Err(); err != nil {
		resp.Checks["redis"] = "error: " + err.Error()
		resp.Status = "unhealthy"
	} else {
		resp.Checks["redis"] = "ok"
	}

	if resp.Status == "healthy" {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	json.NewEncoder(w).Encode(resp)
}
