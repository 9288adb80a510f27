package state

import (
	"fmt"

	"github.com/Yat-Muk/opsdeck/internal/application/orchestrator"
	"github.com/Yat-Muk/opsdeck/internal/domain/operation"
	"github.com/Yat-Muk/opsdeck/internal/domain/status"
	"github.com/Yat-Muk/opsdeck/internal/tui/view"
)

// Render 按當前視圖渲染
func (m *Manager) Render() string {
	if m.engine == nil {
		return view.RenderLoading("初始化中")
	}

	width := m.ui.Width
	if width == 0 {
		width = 80
	}

	notice := m.ui.Status.Notice()
	ti := m.ui.TextInput
	e := m.engine

	switch m.ui.CurrentView {
	case MainMenuView:
		snaps := make(map[status.Subsystem]status.Value, len(status.All()))
		for _, sub := range status.All() {
			snaps[sub] = e.Snapshot(sub)
		}
		return view.RenderMainView(view.Dashboard{
			Snapshots: snaps,
			Lines:     e.Lines(),
			Busy:      e.Busy(),
			Spinner:   m.ui.Spinner.View(),
			BaseURL:   m.baseURL,
			Version:   m.version,
			Now:       m.console.Now,
			Width:     width,
			Height:    m.ui.Height,
			Input:     ti,
			Status:    notice,
		})

	case OperationsView:
		defs := e.Operations()
		phases := make(map[string]operation.Phase, len(defs))
		for _, d := range defs {
			phases[d.Name] = e.Operation(d.Name).Phase
		}
		return view.RenderOperationsMenu(defs, phases, ti, notice)

	case ConfirmView:
		p := m.console.Pending
		if p == nil {
			return view.RenderError("沒有待確認的操作", ti)
		}
		return view.RenderConfirm(p.Title, p.Description, ti, notice)

	case ProgressView:
		name := m.console.ActiveOperation
		title := progressTitle(e.Operations(), name)
		return view.RenderProgress(title, e.Operation(name), m.ui.Spinner.View(), e.Lines(), notice)

	case ProfilesView:
		sub := m.console.ProfileSubsystem
		return view.RenderProfiles(sub, e.Profiles(sub), m.console.Now, ti, notice)

	case LogViewerView:
		return view.RenderLogViewer(m.logState.Viewport, view.LogSummary{
			Following: m.logState.IsFollowing,
			Lines:     m.logState.Rendered,
			Warnings:  m.logState.Warnings,
			Errors:    m.logState.Errors,
		})

	case HistoryView:
		return view.RenderHistory(e.History(), m.console.Now, ti)
	}

	return view.RenderError(fmt.Sprintf("未知視圖: %d", m.ui.CurrentView), ti)
}

// SyncLogViewer 日誌有變化時刷新 Viewport 內容，在 Update 中調用
func (m *Manager) SyncLogViewer() {
	if m.engine == nil || m.ui.CurrentView != LogViewerView {
		return
	}
	if !m.logState.ViewportReady {
		m.logState.Resize(m.ui.Width, m.ui.Height)
	}
	m.logState.Sync(m.engine.Lines())
}

// progressTitle 操作名稱到顯示標題，恢復操作按子系統命名
func progressTitle(defs []operation.Definition, name string) string {
	for _, d := range defs {
		if d.Name == name {
			return d.DisplayTitle()
		}
	}
	for _, sub := range status.Restorable() {
		if orchestrator.RestoreName(sub) == name {
			return fmt.Sprintf("恢復 %s 配置", view.SubsystemLabel(sub))
		}
	}
	return name
}
