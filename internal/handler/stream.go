package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bitconnect/vault-api/internal/service"
	"github.com/bitconnect/vault-api/pkg/pubsub"
)

type eventSubscriber interface {
	Subscribe(topics ...string) *pubsub.Subscription
}

// streamEvents pipes hub events for topics to the client as server-sent
// events until the client goes away. Comment frames keep proxies from idling
// the connection out.
func streamEvents(c *gin.Context, hub eventSubscriber, metrics *service.MetricsService, heartbeat time.Duration, topics ...string) {
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	sub := hub.Subscribe(topics...)
	defer sub.Close()
	metrics.StreamConnected(1)
	defer metrics.StreamConnected(-1)

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case evt, ok := <-sub.C():
			if !ok {
				return false
			}
			c.SSEvent(evt.Topic, evt)
			return true
		case <-ticker.C:
			_, err := io.WriteString(w, ": ping\n\n")
			return err == nil
		}
	})
}
