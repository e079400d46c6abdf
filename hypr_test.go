package main

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// fakeHyprland serves canned replies on a request socket and a fixed event
// stream on the event socket.
func fakeHyprland(t *testing.T, replies map[string]string, events string) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "hypr")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	req, err := net.Listen("unix", filepath.Join(dir, ".socket.sock"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { req.Close() })
	go func() {
		for {
			conn, err := req.Accept()
			if err != nil {
				return
			}
			buf := make([]byte, 256)
			n, _ := conn.Read(buf)
			conn.Write([]byte(replies[string(buf[:n])]))
			conn.Close()
		}
	}()

	ev, err := net.Listen("unix", filepath.Join(dir, ".socket2.sock"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ev.Close() })
	go func() {
		for {
			conn, err := ev.Accept()
			if err != nil {
				return
			}
			// The stream stays open like the compositor's; the client hangs up.
			conn.Write([]byte(events))
		}
	}()
	return dir
}

var hyprReplies = map[string]string{
	"j/workspaces":      `[{"id":1,"name":"1","monitor":"DP-1","windows":2},{"id":2,"name":"2","monitor":"DP-1","windows":1},{"id":4,"name":"4","monitor":"HDMI-A-1","windows":1}]`,
	"j/monitors":        `[{"id":0,"name":"DP-1","focused":true,"activeWorkspace":{"id":2,"name":"2"}},{"id":1,"name":"HDMI-A-1","focused":false,"activeWorkspace":{"id":4,"name":"4"}}]`,
	"j/activeworkspace": `{"id":2,"name":"2","monitor":"DP-1","windows":1}`,
}

func TestHyprlandQueries(t *testing.T) {
	hc := newHyprlandClientAt(fakeHyprland(t, hyprReplies, ""), discardLogger())
	ctx := context.Background()

	ws, err := hc.GetWorkspaces(ctx)
	if err != nil {
		t.Fatalf("GetWorkspaces() error: %v", err)
	}
	if len(ws) != 3 || ws[2].ID != 4 || ws[0].Windows != 2 {
		t.Errorf("GetWorkspaces() = %+v", ws)
	}

	mons, err := hc.GetMonitors(ctx)
	if err != nil {
		t.Fatalf("GetMonitors() error: %v", err)
	}
	if len(mons) != 2 || !mons[0].Focused || mons[1].ActiveWorkspace.ID != 4 {
		t.Errorf("GetMonitors() = %+v", mons)
	}

	active, err := hc.GetActiveWorkspace(ctx)
	if err != nil || active.ID != 2 {
		t.Errorf("GetActiveWorkspace() = %+v, %v", active, err)
	}
}

func TestHyprlandBadReply(t *testing.T) {
	hc := newHyprlandClientAt(fakeHyprland(t, map[string]string{"j/workspaces": "unknown request"}, ""), discardLogger())
	if _, err := hc.GetWorkspaces(context.Background()); err == nil {
		t.Error("GetWorkspaces() with a non-JSON reply should fail")
	}
}

func TestHyprlandNotRunning(t *testing.T) {
	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "")
	if _, err := NewHyprlandClient(discardLogger()); err == nil {
		t.Error("NewHyprlandClient() outside hyprland should fail")
	}
}

func TestWorkspacesBlockOverSocket(t *testing.T) {
	hc := newHyprlandClientAt(fakeHyprland(t, hyprReplies, ""), discardLogger())
	deps := testDeps(newFakeClock())
	deps.Hyprland = hc

	b, err := NewBlock(BlockEntry{Name: "WorkspacesDots", Body: yamlNode(t, "{count: 4}")}, deps)
	if err != nil {
		t.Fatalf("NewBlock() error: %v", err)
	}
	if got, want := b.Render(), "0%{!u}x%{!u}ox"; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestParseEvent(t *testing.T) {
	ev := parseEvent("focusedmon>>DP-1,3")
	if ev == nil || ev.Type != "focusedmon" || len(ev.Data) != 2 || ev.Data[1] != "3" {
		t.Errorf("parseEvent() = %+v", ev)
	}
	if parseEvent("garbage") != nil {
		t.Error("parseEvent() without >> should be nil")
	}
}

type countingRefresher struct {
	n atomic.Int32
}

func (r *countingRefresher) RequestRefresh()      { r.n.Add(1) }
func (r *countingRefresher) RefreshPending() bool { return r.n.Load() > 0 }

func TestEventHandlerRefreshesWorkspaces(t *testing.T) {
	events := "workspace>>2\nactivewindow>>kitty,vim\nfocusedmon>>DP-1,3\nnoise\ncreateworkspace>>5\n"
	hc := newHyprlandClientAt(fakeHyprland(t, nil, events), discardLogger())

	r := &countingRefresher{}
	h := NewHyprlandEventHandler(hc)
	h.refreshOnWorkspaceEvents([]Refresher{r})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for r.n.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got := r.n.Load(); got != 3 {
		t.Errorf("refreshes = %d, want 3", got)
	}
}

func TestEventHandlerWithoutSocket(t *testing.T) {
	hc := newHyprlandClientAt(t.TempDir(), discardLogger())
	if err := NewHyprlandEventHandler(hc).Run(context.Background()); err == nil {
		t.Error("Run() without an event socket should fail")
	}
}
