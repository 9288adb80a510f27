package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/Yat-Muk/opsdeck/internal/domain/console"
	"github.com/Yat-Muk/opsdeck/internal/domain/status"
	"github.com/Yat-Muk/opsdeck/internal/pkg/sanitizer"
	"github.com/Yat-Muk/opsdeck/internal/tui/constants"
	"github.com/Yat-Muk/opsdeck/internal/tui/style"
)

// Dashboard 主頁所需的全部數據
type Dashboard struct {
	Snapshots map[status.Subsystem]status.Value
	Lines     []console.LogLine
	Busy      bool
	Spinner   string
	BaseURL   string
	Version   string
	Now       time.Time
	Width     int
	Height    int
	Input     textinput.Model
	Status    Notice
}

// 主頁日誌尾部最多顯示的行數
const dashboardTail = 8

// RenderMainView 渲染主視圖
func RenderMainView(d Dashboard) string {
	sections := []string{
		renderHeader(d.Version, d.BaseURL, d.Now),
		renderStatusPanel(d.Snapshots, d.Now),
		renderMainMenu(),
		renderLogTail(d.Lines, tailSize(d.Height), d.Busy, d.Spinner),
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		strings.Join(sections, "\n"),
		RenderStatusMessage(d.Status),
		RenderTextInput(d.Input),
	)
}

// tailSize 小窗口時縮短日誌尾部
func tailSize(height int) int {
	n := height - 36
	if n > dashboardTail {
		n = dashboardTail
	}
	if n < 3 {
		n = 3
	}
	return n
}

func renderHeader(version, baseURL string, now time.Time) string {
	labelStyle := lipgloss.NewStyle().Foreground(style.Snow3)
	valueStyle := lipgloss.NewStyle().Foreground(style.Snow2)

	if version == "" {
		version = "dev"
	} else if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}

	center := func(s string) string {
		return lipgloss.NewStyle().
			Width(layoutWidth - 1).
			AlignHorizontal(lipgloss.Center).
			Render(s)
	}

	info := center(lipgloss.JoinHorizontal(lipgloss.Left,
		labelStyle.Render("版本: "), valueStyle.Render(version),
		labelStyle.Render("   時間: "), valueStyle.Render(now.Format("2006-01-02 15:04:05")),
	))
	backend := center(lipgloss.JoinHorizontal(lipgloss.Left,
		labelStyle.Render("後端地址: "), valueStyle.Render(baseURL),
	))

	return lipgloss.JoinVertical(lipgloss.Left,
		RenderLogo(),
		"",
		renderSubtitle(),
		"",
		info,
		backend,
		separator("═"),
	)
}

// subsystemLabels 儀表板上的顯示名稱
var subsystemLabels = map[status.Subsystem]string{
	status.Windsurf:    "Windsurf",
	status.VSCode:      "VS Code",
	status.Stealth:     "隱身監控",
	status.Hardware:    "硬件偽裝",
	status.Monitor:     "應用進程",
	status.Network:     "網絡",
	status.Fingerprint: "硬件指紋",
	status.Host:        "主機",
	status.SSH:         "SSH 密鑰",
}

// SubsystemLabel 子系統的顯示名稱
func SubsystemLabel(sub status.Subsystem) string {
	if l, ok := subsystemLabels[sub]; ok {
		return l
	}
	return string(sub)
}

func renderStatusPanel(snaps map[status.Subsystem]status.Value, now time.Time) string {
	labelStyle := lipgloss.NewStyle().Foreground(style.Snow3)

	var lines []string
	for _, sub := range status.All() {
		v, ok := snaps[sub]
		if !ok {
			v = status.Unknown
		}
		label := labelStyle.Render(style.PadRight(SubsystemLabel(sub)+":", 12))
		lines = append(lines, label+DescribeValue(sub, v, now))
	}

	return lipgloss.JoinVertical(lipgloss.Left, append(lines, separator("═"))...)
}

// DescribeValue 單個子系統的狀態描述
func DescribeValue(sub status.Subsystem, v status.Value, now time.Time) string {
	muted := lipgloss.NewStyle().Foreground(style.Muted)
	detail := lipgloss.NewStyle().Foreground(style.Snow2)

	if !v.Known() {
		switch sub {
		case status.Hardware:
			return muted.Render("未應用")
		case status.SSH:
			return muted.Render("未輪換")
		}
		return muted.Render("檢查中...")
	}

	var body string
	switch sub {
	case status.Windsurf, status.VSCode:
		if v.Installed {
			body = lipgloss.NewStyle().Foreground(style.StatusGreen).Render("● 已安裝") +
				detail.Render(fmt.Sprintf("  (%d 個配置)", v.Count))
		} else {
			body = lipgloss.NewStyle().Foreground(style.StatusRed).Render("○ 未安裝")
		}

	case status.Monitor:
		body = badge(v.State) + detail.Render(fmt.Sprintf("  %d 個進程 (windsurf %s / vscode %s)",
			v.Count, orDash(v.Detail("windsurf")), orDash(v.Detail("vscode"))))

	case status.Stealth:
		body = badge(v.State)
		if mac := v.Detail("mac_address"); mac != "" {
			body += detail.Render("  MAC " + sanitizer.MAC(mac))
		}

	case status.Host:
		body = detail.Render(orDash(v.Detail("hostname")))

	default:
		body = badge(v.State)
	}

	if !v.UpdatedAt.IsZero() {
		body += muted.Render("  · " + humanize.RelTime(v.UpdatedAt, now, "ago", "from now"))
	}
	return body
}

func badge(state string) string {
	return style.StateBadge(state)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func renderMainMenu() string {
	items := []MenuItem{
		{constants.KeyMain_Operations, "執行操作", "(清理/隱身/硬件偽裝/SSH 輪換/監控)", style.StatusGreen},
		{constants.KeyMain_Profiles, "已保存配置", "(查看/恢復 windsurf 與 vscode 配置)", style.Snow1},
		{constants.KeyMain_Check, "立即檢查狀態", "", style.Snow1},
		{"", "", "", lipgloss.Color("")},
		{constants.KeyMain_Logs, "終端日誌", "(全部日誌/滾動查看)", style.Snow1},
		{constants.KeyMain_History, "變更歷史", "", style.Snow1},
		{constants.KeyMain_Progress, "操作進度", "", style.Snow1},
		{"", "", "", lipgloss.Color("")},
		{constants.KeyMain_Quit, "退出", "", style.Snow1},
	}
	return renderMenuWithAlignment(items, false)
}

func renderLogTail(lines []console.LogLine, n int, busy bool, spinner string) string {
	title := lipgloss.NewStyle().Foreground(style.Aurora2).Render(" 終端")
	if busy {
		title += " " + spinner + lipgloss.NewStyle().Foreground(style.StatusYellow).Render(" 操作進行中")
	}

	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	rows := []string{title}
	if len(lines) == 0 {
		rows = append(rows, style.MutedText(" 暫無日誌"))
	}
	for _, l := range lines {
		l.Text = style.Truncate(l.Text, layoutWidth-12)
		rows = append(rows, " "+style.RenderLogLine(l))
	}
	return lipgloss.JoinVertical(lipgloss.Left, append(rows, separator("─"))...)
}
