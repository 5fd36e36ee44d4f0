package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gymkeyapp/gymkey-server/internal/models"
)

// StreamKeys streams balance updates to the client as server-sent events.
// The current balance is sent immediately; afterwards every delivery is the
// most recent value, not a queue of deltas. The subscription is torn down
// when the client disconnects.
func (h *Handler) StreamKeys(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		errorJSON(c, http.StatusInternalServerError, "STREAM_UNSUPPORTED", "streaming unsupported")
		return
	}

	updates, cancel := h.svc.WatchKeys(c.GetString("userId"))
	defer cancel()

	for {
		select {
		case balance, ok := <-updates:
			if !ok {
				return
			}

			data, _ := json.Marshal(models.BalanceResponse{
				Status: "success",
				Keys:   balance,
			})
			c.Writer.Write([]byte("data: "))
			c.Writer.Write(data)
			c.Writer.Write([]byte("\n\n"))

			flusher.Flush()

		case <-c.Request.Context().Done():
			return
		}
	}
}
