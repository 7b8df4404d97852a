package cache

import (
	"encoding/json"
	"net"
	"time"
)

const dialTimeout = 500 * time.Millisecond

// Client implements KV over a Unix or TCP socket. Each call dials its own
// connection, so a Client is safe for concurrent use.
type Client struct {
	network string
	address string
}

var _ KV = (*Client)(nil)

// NewClient returns a client for a Unix socket at socketPath.
func NewClient(socketPath string) *Client {
	return NewNetworkClient("unix", socketPath)
}

// NewNetworkClient returns a client for an arbitrary network ("unix", "tcp").
func NewNetworkClient(network, address string) *Client {
	return &Client{network: network, address: address}
}

func (c *Client) withConn(fn func(conn net.Conn) error) error {
	conn, err := net.DialTimeout(c.network, c.address, dialTimeout)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(conn)
}

// roundTrip sends a single request and decodes its response.
func (c *Client) roundTrip(req Request) (Response, error) {
	var resp Response
	err := c.withConn(func(conn net.Conn) error {
		if err := json.NewEncoder(conn).Encode(&req); err != nil {
			return err
		}
		if err := json.NewDecoder(conn).Decode(&resp); err != nil {
			return err
		}
		if !resp.OK {
			return ErrorFromWire(resp.Error)
		}
		return nil
	})
	return resp, err
}

func (c *Client) Get(key string) ([]byte, error) {
	resp, err := c.roundTrip(Request{Op: OpGet, Key: key})
	if err != nil {
		return nil, err
	}
	if resp.Value == nil {
		return []byte{}, nil
	}
	return resp.Value, nil
}

func (c *Client) Put(key string, value []byte) error {
	_, err := c.roundTrip(Request{Op: OpPut, Key: key, Value: value})
	return err
}

func (c *Client) PutIfAbsent(key string, value []byte) error {
	_, err := c.roundTrip(Request{Op: OpPutIfAbsent, Key: key, Value: value})
	return err
}

func (c *Client) Set(key string, value []byte) error {
	_, err := c.roundTrip(Request{Op: OpSet, Key: key, Value: value})
	return err
}

func (c *Client) Delete(key string) error {
	_, err := c.roundTrip(Request{Op: OpDelete, Key: key})
	return err
}
