package main

import (
	"context"
	"strconv"
	"sync"
)

type HyprlandEventHandler struct {
	client    *HyprlandClient
	callbacks map[string][]EventCallback
	mu        sync.RWMutex
}

type EventCallback func(event HyprlandEvent)

func NewHyprlandEventHandler(client *HyprlandClient) *HyprlandEventHandler {
	return &HyprlandEventHandler{
		client:    client,
		callbacks: make(map[string][]EventCallback),
	}
}

func (h *HyprlandEventHandler) On(eventType string, callback EventCallback) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.callbacks[eventType] = append(h.callbacks[eventType], callback)
}

// Run connects to the event socket and dispatches events until ctx is done.
func (h *HyprlandEventHandler) Run(ctx context.Context) error {
	events := h.client.Subscribe()
	defer h.client.Unsubscribe(events)

	if err := h.client.StartEventListener(ctx); err != nil {
		return err
	}
	for {
		select {
		case event := <-events:
			h.processEvent(event)
		case <-ctx.Done():
			return nil
		}
	}
}

func (h *HyprlandEventHandler) processEvent(event HyprlandEvent) {
	h.mu.RLock()
	callbacks := h.callbacks[event.Type]
	h.mu.RUnlock()

	for _, callback := range callbacks {
		callback(event)
	}
}

type WorkspaceCallback func(workspaceID int, workspaceName string)

func (h *HyprlandEventHandler) OnWorkspaceChange(callback WorkspaceCallback) {
	h.On("workspace", func(event HyprlandEvent) {
		if len(event.Data) > 0 {
			if id, err := strconv.Atoi(event.Data[0]); err == nil {
				callback(id, event.Data[0])
			} else {
				callback(0, event.Data[0])
			}
		}
	})
}

func (h *HyprlandEventHandler) OnMonitorFocus(callback func(monitorName string, workspaceName string)) {
	h.On("focusedmon", func(event HyprlandEvent) {
		if len(event.Data) >= 2 {
			callback(event.Data[0], event.Data[1])
		}
	})
}

func (h *HyprlandEventHandler) OnWorkspaceCreate(callback func(workspaceName string)) {
	h.On("createworkspace", func(event HyprlandEvent) {
		if len(event.Data) > 0 {
			callback(event.Data[0])
		}
	})
}

func (h *HyprlandEventHandler) OnWorkspaceDestroy(callback func(workspaceName string)) {
	h.On("destroyworkspace", func(event HyprlandEvent) {
		if len(event.Data) > 0 {
			callback(event.Data[0])
		}
	})
}

// refreshOnWorkspaceEvents asks the given blocks to poll again whenever the
// workspace layout changes.
func (h *HyprlandEventHandler) refreshOnWorkspaceEvents(blocks []Refresher) {
	refresh := func() {
		for _, b := range blocks {
			b.RequestRefresh()
		}
	}
	h.OnWorkspaceChange(func(int, string) { refresh() })
	h.OnMonitorFocus(func(string, string) { refresh() })
	h.OnWorkspaceCreate(func(string) { refresh() })
	h.OnWorkspaceDestroy(func(string) { refresh() })
	h.On("openwindow", func(HyprlandEvent) { refresh() })
	h.On("closewindow", func(HyprlandEvent) { refresh() })
	h.On("movewindow", func(HyprlandEvent) { refresh() })
}
