package style

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/Yat-Muk/opsdeck/internal/domain/console"
	"github.com/Yat-Muk/opsdeck/internal/domain/status"
)

func TestStateBadgeKind(t *testing.T) {
	tests := map[string]BadgeKind{
		status.StateActive:   BadgeSuccess,
		status.StateSpoofed:  BadgeSuccess,
		status.StateOffline:  BadgeError,
		status.StateOriginal: BadgeWarning,
		status.StateUnknown:  BadgeMuted,
		"whatever":           BadgeMuted,
	}
	for state, want := range tests {
		if got := StateBadgeKind(state); got != want {
			t.Errorf("StateBadgeKind(%q) = %d, want %d", state, got, want)
		}
	}
}

func TestStateBadge_Empty(t *testing.T) {
	if got := ansi.Strip(StateBadge("")); got != " "+status.StateUnknown+" " {
		t.Errorf("StateBadge(\"\") = %q", got)
	}
}

func TestTruncateAndPad(t *testing.T) {
	got := Truncate("恢復 Windsurf 配置", 8)
	if runewidth.StringWidth(got) > 8 || !strings.HasPrefix(got, "恢復") {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("abc", 0); got != "" {
		t.Errorf("Truncate width 0 = %q", got)
	}
	if got := PadRight("狀態", 6); got != "狀態  " {
		t.Errorf("PadRight = %q", got)
	}
}

func TestBuildColoredLogContent(t *testing.T) {
	if BuildColoredLogContent(nil) != "" {
		t.Error("empty buffer should render empty")
	}
	out := ansi.Strip(BuildColoredLogContent([]console.LogLine{{Text: "poll ok", Level: console.LevelInfo}}))
	if out != "[00:00:00] poll ok\n" {
		t.Errorf("unexpected content %q", out)
	}
}

func TestMark(t *testing.T) {
	if ansi.Strip(Mark(true)) != "✔" || ansi.Strip(Mark(false)) != "✘" {
		t.Error("Mark symbols wrong")
	}
}
