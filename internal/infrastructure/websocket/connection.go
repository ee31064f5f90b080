package websocket

import (
	"github.com/gorilla/websocket"
)

// Connection wraps one gorilla websocket connection and satisfies
// domain.WebSocketConnection.
type Connection struct {
	conn      *websocket.Conn
	userID    string
	auctionID string
}

func NewConnection(conn *websocket.Conn, userID, auctionID string) *Connection {
	return &Connection{
		conn:      conn,
		userID:    userID,
		auctionID: auctionID,
	}
}

func (c *Connection) Send(message interface{}) error {
	return c.conn.WriteJSON(message)
}

func (c *Connection) ReadJSON(v interface{}) error {
	return c.conn.ReadJSON(v)
}

func (c *Connection) Close() error {
	return c.conn.Close()
}

func (c *Connection) UserID() string {
	return c.userID
}

func (c *Connection) AuctionID() string {
	return c.auctionID
}
