package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs attaches one websocket connection to the progress feed for a job.
func ServeWs(hub *Hub, c *websocket.Conn, jobID string) {
	client := &Client{Hub: hub, Conn: c, JobID: jobID, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}
