package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Yat-Muk/opsdeck/internal/tui/style"
)

// layoutWidth 所有頁面的基準寬度
const layoutWidth = 60

// MenuItem 菜單一行；Num 與 Text 都為空時渲染為虛線分隔
type MenuItem struct {
	Num       string
	Text      string
	Desc      string // () 內灰色，[] 內黃色；已含 ANSI 時原樣輸出
	TextColor lipgloss.Color
}

func (i MenuItem) divider() bool { return i.Num == "" && i.Text == "" }

var (
	menuNumStyle   = lipgloss.NewStyle().Foreground(style.Aurora3)
	menuDot        = lipgloss.NewStyle().Foreground(style.Snow3).Render(".")
	dividerStyle   = lipgloss.NewStyle().Foreground(style.Snow2)
	descMuted      = lipgloss.NewStyle().Foreground(style.Snow3)
	descHighlight  = lipgloss.NewStyle().Foreground(style.StatusYellow)
	noticePadding  = lipgloss.NewStyle().Padding(1, 1).Width(layoutWidth + 2)
	promptKeyStyle = lipgloss.NewStyle().Foreground(style.StatusRed)
)

func separator(ch string) string {
	return dividerStyle.Render(strings.Repeat(ch, layoutWidth))
}

// renderMenuWithAlignment 序號右對齊；描述帶括號的項 (table 時全部) 按最長名稱對齊描述列
func renderMenuWithAlignment(items []MenuItem, table bool) string {
	aligned := func(it MenuItem) bool { return table || hasParen(it.Desc) }

	numW, textW := 0, 0
	for _, it := range items {
		if it.divider() {
			continue
		}
		numW = max(numW, len(it.Num))
		if aligned(it) {
			textW = max(textW, runewidth.StringWidth(it.Text))
		}
	}

	rows := make([]string, 0, len(items)+1)
	for _, it := range items {
		if it.divider() {
			rows = append(rows, dividerStyle.Render(" "+strings.Repeat("┄", layoutWidth-2)))
			continue
		}

		color := it.TextColor
		if color == "" {
			color = style.Snow1
		}

		gap := 1
		if aligned(it) && textW > 0 {
			gap = max(textW+2-runewidth.StringWidth(it.Text), 1)
		}

		desc := it.Desc
		if !strings.Contains(desc, "\x1b") {
			desc = colorizeDescription(desc)
		}

		rows = append(rows, fmt.Sprintf(" %s%s %s%s%s",
			menuNumStyle.Render(fmt.Sprintf("%*s", numW, it.Num)),
			menuDot,
			lipgloss.NewStyle().Foreground(color).Render(it.Text),
			strings.Repeat(" ", gap),
			desc,
		))
	}

	rows = append(rows, separator("═"))
	return strings.Join(rows, "\n")
}

func hasParen(s string) bool {
	return strings.ContainsAny(s, "(（")
}

// colorizeDescription [..] 段高亮，其餘灰色
func colorizeDescription(desc string) string {
	var b strings.Builder
	for desc != "" {
		open := strings.IndexByte(desc, '[')
		if open < 0 {
			b.WriteString(descMuted.Render(desc))
			break
		}
		if open > 0 {
			b.WriteString(descMuted.Render(desc[:open]))
		}
		rest := desc[open:]
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			b.WriteString(descMuted.Render(rest))
			break
		}
		b.WriteString(descHighlight.Render(rest[:end+1]))
		desc = rest[end+1:]
	}
	return b.String()
}

// RenderLogo 渲染 OPSDECK ASCII Logo
func RenderLogo() string {
	logoLines := []string{
		" ██████╗ ██████╗ ███████╗██████╗ ███████╗ ██████╗██╗  ██╗",
		"██╔═══██╗██╔══██╗██╔════╝██╔══██╗██╔════╝██╔════╝██║ ██╔╝",
		"██║   ██║██████╔╝███████╗██║  ██║█████╗  ██║     █████╔╝ ",
		"██║   ██║██╔═══╝ ╚════██║██║  ██║██╔══╝  ██║     ██╔═██╗ ",
		"╚██████╔╝██║     ███████║██████╔╝███████╗╚██████╗██║  ██╗",
		" ╚═════╝ ╚═╝     ╚══════╝╚═════╝ ╚══════╝ ╚═════╝╚═╝  ╚═╝",
	}

	gradientColors := []lipgloss.Color{
		lipgloss.Color("#B477ED"),
		lipgloss.Color("#DDAAFF"),
		lipgloss.Color("#DEDEF8"),
		lipgloss.Color("#90CCFB"),
		lipgloss.Color("#1AAEFC"),
		lipgloss.Color("#0381ED"),
	}

	var coloredLines []string
	for i, line := range logoLines {
		coloredLines = append(coloredLines, lipgloss.NewStyle().
			Foreground(gradientColors[i]).
			Width(layoutWidth).
			AlignHorizontal(lipgloss.Center).
			Render(line))
	}

	return lipgloss.JoinVertical(lipgloss.Left, coloredLines...)
}

func renderSubtitle() string {
	return lipgloss.NewStyle().
		Foreground(style.Aurora3).
		Width(layoutWidth).
		AlignHorizontal(lipgloss.Center).
		Render(":: 遠程清理與隱身控制台 ::")
}

// renderSubpageHeader 渲染子頁面頭部
func renderSubpageHeader(subTitle string) string {
	subTitleLine := lipgloss.NewStyle().
		Foreground(style.Aurora2).
		Render(fmt.Sprintf(" »»» %s «««", subTitle))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		RenderLogo(),
		"",
		renderSubtitle(),
		"",
		subTitleLine,
		separator("═"),
	)
}

// Tone 狀態欄顏色
type Tone int

const (
	ToneNone Tone = iota
	ToneInfo
	ToneSuccess
	ToneWarn
	ToneError
)

func (t Tone) color() lipgloss.Color {
	switch t {
	case ToneSuccess:
		return style.StatusGreen
	case ToneWarn:
		return style.StatusYellow
	case ToneError:
		return style.StatusRed
	default:
		return style.Aurora3
	}
}

// Notice 狀態欄消息，Detail 以弱化色顯示在第二行
type Notice struct {
	Tone   Tone
	Text   string
	Detail string
}

func RenderStatusMessage(n Notice) string {
	if n.Text == "" && n.Detail == "" {
		return ""
	}
	lines := []string{lipgloss.NewStyle().Foreground(n.Tone.color()).Render(n.Text)}
	if n.Detail != "" {
		lines = append(lines, descMuted.Render(n.Detail))
	}
	return noticePadding.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// renderPrompt 確認問句，(y/N) 紅色
func renderPrompt(question string) string {
	q := lipgloss.NewStyle().Foreground(style.StatusYellow).Render(question)
	return noticePadding.Render(q + " " + promptKeyStyle.Render("(y/N)"))
}

// RenderTextInput 只渲染輸入行，不帶底部按鍵提示（供主頁使用）
func RenderTextInput(ti textinput.Model) string {
	prompt := lipgloss.NewStyle().
		Foreground(style.Snow2).
		Render(" ❯ 請輸入: ")

	return lipgloss.JoinHorizontal(lipgloss.Left, prompt, ti.View())
}

// RenderInputFooter 渲染輸入提示（子菜單使用）
func RenderInputFooter(ti textinput.Model) string {
	snow3 := lipgloss.NewStyle().Foreground(style.Snow3)
	polar4 := lipgloss.NewStyle().Foreground(style.Polar4)

	hints := lipgloss.JoinHorizontal(lipgloss.Left,
		snow3.Render("Esc "), polar4.Render("返回"),
		polar4.Render(" • "),
		snow3.Render("Enter "), polar4.Render("確認"),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		RenderTextInput(ti),
		"",
		lipgloss.NewStyle().PaddingLeft(1).Render(hints),
	)
}

// RenderError 渲染錯誤頁面
func RenderError(errMsg string, ti textinput.Model) string {
	header := renderSubpageHeader("錯誤")
	errorText := style.ErrorStyle.Render(fmt.Sprintf("✗ %s", errMsg))
	return lipgloss.JoinVertical(lipgloss.Left, header, "", errorText, "", RenderInputFooter(ti))
}

// RenderLoading 渲染加載頁面
func RenderLoading(message string) string {
	header := renderSubpageHeader("加載中")
	loadingText := lipgloss.NewStyle().Foreground(style.Aurora2).Render(fmt.Sprintf("⏳ %s...", message))
	return lipgloss.JoinVertical(lipgloss.Left, header, "", loadingText)
}
