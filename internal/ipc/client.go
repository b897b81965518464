package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/SoarinFerret/CycleWarden/internal/cycle"
	"github.com/SoarinFerret/CycleWarden/internal/history"
	"github.com/SoarinFerret/CycleWarden/internal/snapshot"
)

// Client is a typed wrapper over the manager object.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// Dial connects to the daemon on the session bus.
func Dial() (*Client, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Client{conn: conn, obj: conn.Object(ServiceName, dbus.ObjectPath(ObjectPath))}, nil
}

// NewClient wraps an existing bus object.
func NewClient(obj dbus.BusObject) *Client {
	return &Client{obj: obj}
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) call(method string, out any, args ...any) error {
	err := c.obj.Call(InterfaceName+"."+method, 0, args...).Store(out)
	if err != nil {
		return fromDBusError(err)
	}
	return nil
}

func (c *Client) callJSON(method string, out any, args ...any) error {
	var body string
	if err := c.call(method, &body, args...); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return fmt.Errorf("decode %s reply: %w", method, err)
	}
	return nil
}

func (c *Client) Status() (string, error) {
	var s string
	err := c.call("GetStatus", &s)
	return s, err
}

func (c *Client) StartCycle(task string, minutes int) (cycle.Cycle, error) {
	var out cycle.Cycle
	err := c.callJSON("StartCycle", &out, task, int32(minutes))
	return out, err
}

func (c *Client) InterruptCycle() (bool, error) {
	var ok bool
	err := c.call("InterruptCycle", &ok)
	return ok, err
}

func (c *Client) State() (cycle.State, error) {
	var body string
	if err := c.call("GetState", &body); err != nil {
		return cycle.State{}, err
	}
	return snapshot.Decode([]byte(body))
}

func (c *Client) Countdown() (CountdownView, error) {
	var v CountdownView
	err := c.callJSON("GetCountdown", &v)
	return v, err
}

func (c *Client) History() ([]history.Row, error) {
	var rows []history.Row
	err := c.callJSON("GetHistory", &rows)
	return rows, err
}

func (c *Client) Summary() (history.DaySummary, error) {
	var s history.DaySummary
	err := c.callJSON("GetSummary", &s)
	return s, err
}
