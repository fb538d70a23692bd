package handlers

import "net/http"

// HealthHandler godoc
// @Summary Liveness check
// @Tags system
// @Produce plain
// @Success 200 {string} string "ok"
// @Router /healthz [get]
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
