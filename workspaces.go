package main

import (
	"context"
	"strings"
)

type workspaceDots struct {
	empty, nonEmpty, visible string
	underline                string
	spacing                  int
	count                    int
}

type workspaceSource interface {
	GetWorkspaces(ctx context.Context) ([]HyprlandWorkspace, error)
	GetMonitors(ctx context.Context) ([]HyprlandMonitor, error)
	GetActiveWorkspace(ctx context.Context) (*HyprlandWorkspace, error)
}

func workspacesProducer(src workspaceSource, dots workspaceDots) Producer {
	return func(ctx context.Context) (string, error) {
		workspaces, err := src.GetWorkspaces(ctx)
		if err != nil {
			return "", err
		}
		monitors, err := src.GetMonitors(ctx)
		if err != nil {
			return "", err
		}
		active, err := src.GetActiveWorkspace(ctx)
		if err != nil {
			return "", err
		}
		return dots.render(workspaces, monitors, active.ID), nil
	}
}

// render draws one indicator per workspace slot. Workspace N fills slot
// N-1; special workspaces (id <= 0) and ids past count are not shown.
func (d workspaceDots) render(workspaces []HyprlandWorkspace, monitors []HyprlandMonitor, focused int) string {
	shown := make(map[int]bool, len(monitors))
	for _, m := range monitors {
		shown[m.ActiveWorkspace.ID] = true
	}

	out := make([]string, d.count)
	for i := range out {
		out[i] = d.empty
	}
	for _, ws := range workspaces {
		if ws.ID <= 0 || ws.ID > d.count {
			continue
		}
		i := ws.ID - 1
		if shown[ws.ID] {
			out[i] = d.visible
		} else {
			out[i] = d.nonEmpty
		}
		if ws.ID == focused {
			out[i] = noUnderline(out[i])
		}
	}

	s := strings.Join(out, strings.Repeat(" ", d.spacing))
	if d.underline != "" {
		s = underline(s, d.underline)
	}
	return s
}
