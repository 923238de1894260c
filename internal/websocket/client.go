package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client is one open page listening for auth-state pushes.
type Client struct {
	Conn *websocket.Conn

	// Email of the session the page was rendered for.
	Email string

	send chan []byte
	done chan struct{}
	once sync.Once
}

func NewClient(conn *websocket.Conn, email string) *Client {
	return &Client{
		Conn:  conn,
		Email: email,
		send:  make(chan []byte, 16),
		done:  make(chan struct{}),
	}
}

// Push queues a message for the page. It reports false once the connection
// is gone or the queue is full.
func (c *Client) Push(message []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// Serve blocks until the page goes away.
func (c *Client) Serve() {
	go c.writePump()
	c.readPump()
}

func (c *Client) stop() {
	c.once.Do(func() { close(c.done) })
}

// readPump only watches for the close; pages never send anything.
func (c *Client) readPump() {
	defer func() {
		c.stop()
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WARN] auth socket for %s closed: %v", c.Email, err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
