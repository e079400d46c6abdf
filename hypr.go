package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const hyprDialTimeout = time.Second

type HyprlandWorkspace struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Monitor string `json:"monitor"`
	Windows int    `json:"windows"`
}

type HyprlandMonitor struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Focused         bool   `json:"focused"`
	ActiveWorkspace struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"activeWorkspace"`
}

type HyprlandEvent struct {
	Type string
	Data []string
}

// HyprlandClient talks to the compositor over its two unix sockets: one
// request per connection on .socket.sock, a line stream on .socket2.sock.
type HyprlandClient struct {
	dir    string
	logger *slog.Logger

	eventConn net.Conn
	eventMux  sync.RWMutex
	listeners []chan HyprlandEvent
}

func NewHyprlandClient(logger *slog.Logger) (*HyprlandClient, error) {
	signature := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if signature == "" {
		return nil, fmt.Errorf("not running in hyprland")
	}

	dir := filepath.Join("/tmp", "hypr", signature)
	if runtime := os.Getenv("XDG_RUNTIME_DIR"); runtime != "" {
		candidate := filepath.Join(runtime, "hypr", signature)
		if _, err := os.Stat(candidate); err == nil {
			dir = candidate
		}
	}
	return newHyprlandClientAt(dir, logger), nil
}

func newHyprlandClientAt(dir string, logger *slog.Logger) *HyprlandClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &HyprlandClient{
		dir:       dir,
		logger:    logger,
		listeners: make([]chan HyprlandEvent, 0),
	}
}

func (hc *HyprlandClient) sendCommand(ctx context.Context, command string) ([]byte, error) {
	d := net.Dialer{Timeout: hyprDialTimeout}
	conn, err := d.DialContext(ctx, "unix", filepath.Join(hc.dir, ".socket.sock"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to hyprland: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	if _, err := conn.Write([]byte(command)); err != nil {
		return nil, err
	}
	return io.ReadAll(conn)
}

func (hc *HyprlandClient) query(ctx context.Context, command string, out interface{}) error {
	data, err := hc.sendCommand(ctx, command)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s: %w", command, err)
	}
	return nil
}

func (hc *HyprlandClient) GetActiveWorkspace(ctx context.Context) (*HyprlandWorkspace, error) {
	var workspace HyprlandWorkspace
	if err := hc.query(ctx, "j/activeworkspace", &workspace); err != nil {
		return nil, err
	}
	return &workspace, nil
}

func (hc *HyprlandClient) GetWorkspaces(ctx context.Context) ([]HyprlandWorkspace, error) {
	var workspaces []HyprlandWorkspace
	if err := hc.query(ctx, "j/workspaces", &workspaces); err != nil {
		return nil, err
	}
	return workspaces, nil
}

func (hc *HyprlandClient) GetMonitors(ctx context.Context) ([]HyprlandMonitor, error) {
	var monitors []HyprlandMonitor
	if err := hc.query(ctx, "j/monitors", &monitors); err != nil {
		return nil, err
	}
	return monitors, nil
}

// StartEventListener connects to the event socket and fans events out to
// subscribers until ctx is done or the socket closes.
func (hc *HyprlandClient) StartEventListener(ctx context.Context) error {
	d := net.Dialer{Timeout: hyprDialTimeout}
	conn, err := d.DialContext(ctx, "unix", filepath.Join(hc.dir, ".socket2.sock"))
	if err != nil {
		return fmt.Errorf("failed to connect to event socket: %w", err)
	}
	hc.eventConn = conn

	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	go hc.readEvents(ctx)
	hc.logger.Info("connected to hyprland event socket")
	return nil
}

func (hc *HyprlandClient) readEvents(ctx context.Context) {
	defer hc.eventConn.Close()

	scanner := bufio.NewScanner(hc.eventConn)
	for scanner.Scan() {
		if event := parseEvent(scanner.Text()); event != nil {
			hc.dispatchEvent(*event)
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		hc.logger.Warn("reading hyprland events", "error", err)
	}
}

func parseEvent(line string) *HyprlandEvent {
	eventType, data, ok := strings.Cut(line, ">>")
	if !ok {
		return nil
	}
	return &HyprlandEvent{
		Type: eventType,
		Data: strings.Split(data, ","),
	}
}

func (hc *HyprlandClient) dispatchEvent(event HyprlandEvent) {
	hc.eventMux.RLock()
	defer hc.eventMux.RUnlock()

	for _, listener := range hc.listeners {
		select {
		case listener <- event:
		default:
		}
	}
}

func (hc *HyprlandClient) Subscribe() chan HyprlandEvent {
	hc.eventMux.Lock()
	defer hc.eventMux.Unlock()

	ch := make(chan HyprlandEvent, 100)
	hc.listeners = append(hc.listeners, ch)
	return ch
}

func (hc *HyprlandClient) Unsubscribe(ch chan HyprlandEvent) {
	hc.eventMux.Lock()
	defer hc.eventMux.Unlock()

	for i, listener := range hc.listeners {
		if listener == ch {
			hc.listeners = append(hc.listeners[:i], hc.listeners[i+1:]...)
			close(ch)
			break
		}
	}
}
