package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) call(method string, req, resp any) error {
	return c.client.Call(ServiceName+"."+method, req, resp)
}

// Enqueue queues a job and returns its id.
func (c *Client) Enqueue(req EnqueueRequest) (*EnqueueResponse, error) {
	var resp EnqueueResponse
	if err := c.call("Enqueue", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Cancel cancels one job.
func (c *Client) Cancel(id string) (*CancelResponse, error) {
	var resp CancelResponse
	if err := c.call("Cancel", CancelRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CancelAll cancels every queued and running job.
func (c *Client) CancelAll() (*CancelAllResponse, error) {
	var resp CancelAllResponse
	if err := c.call("CancelAll", CancelAllRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// List returns the queue and recent history.
func (c *Client) List() (*ListResponse, error) {
	var resp ListResponse
	if err := c.call("List", ListRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Describe returns details for a single job.
func (c *Client) Describe(id string) (*DescribeResponse, error) {
	var resp DescribeResponse
	if err := c.call("Describe", DescribeRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.call("Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetRoot switches the workflow root.
func (c *Client) SetRoot(root string) (*SetRootResponse, error) {
	var resp SetRootResponse
	if err := c.call("SetRoot", SetRootRequest{Root: root}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.call("TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
