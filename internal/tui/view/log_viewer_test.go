package view

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/viewport"
)

func TestRenderLogViewer(t *testing.T) {
	vp := viewport.New(80, 10)

	empty := RenderLogViewer(vp, LogSummary{Following: true})
	if !strings.Contains(empty, "暫無日誌") {
		t.Errorf("empty viewer missing placeholder: %q", empty)
	}
	if !strings.Contains(empty, "實時跟蹤") {
		t.Error("following mode not shown")
	}

	vp.SetContent("a\nb\nc")
	out := RenderLogViewer(vp, LogSummary{Lines: 3, Warnings: 2})
	if !strings.Contains(out, "3 行") || !strings.Contains(out, "2 警告") {
		t.Errorf("counts missing: %q", out)
	}
	if strings.Contains(out, "錯誤") {
		t.Error("zero errors should not be shown")
	}
}
