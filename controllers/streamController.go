package controllers

import (
	"io"

	"seva-be/events"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
)

// StreamController serves the dashboard's live event feed as
// server-sent events. Clients subscribe implicitly by connecting and
// are unsubscribed when the connection drops; they receive only events
// published while connected.
type StreamController struct {
	broadcaster *events.Broadcaster
}

func NewStreamController(b *events.Broadcaster) *StreamController {
	return &StreamController{broadcaster: b}
}

// StreamIssueEvents pushes newIssue and statusUpdate events until the
// client disconnects. The stream is read-only push; clients send
// nothing.
func (sc *StreamController) StreamIssueEvents(c *gin.Context) {
	sub := sc.broadcaster.Subscribe()
	defer sub.Close()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-sub.C:
			if !ok {
				return false
			}
			c.Render(-1, sse.Event{Event: ev.Name, Data: ev.Payload})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
