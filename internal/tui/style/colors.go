package style

import "github.com/charmbracelet/lipgloss"

// 配色方案
var (
	// 主色調
	FutureGreen = lipgloss.Color("#B2FF00") // 螢光綠 - 成功/運行中
	SkyBlue     = lipgloss.Color("#1AAEFC") // 天藍 - 主要強調/Logo
	Violet      = lipgloss.Color("#DDAAFF") // 紫羅蘭 - 次要強調
	Yellow      = lipgloss.Color("#FFDC65") // 明黃 - 警告
	Orange      = lipgloss.Color("#FC7B00") // 橙色 - 中等警告
	Red         = lipgloss.Color("#FF007F") // 紅色 - 錯誤/停止

	// 文字顏色
	White    = lipgloss.Color("#F3F3F0") // 純白 - 主要文字
	Gray     = lipgloss.Color("#C0C0C0") // 淺灰 - 次要文字
	DarkGray = lipgloss.Color("#8A8783") // 深灰 - 弱化文字

	// 背景色
	BgDark   = lipgloss.Color("#1a1a1a")
	BgMedium = lipgloss.Color("#2a2a2a")
	BgLight  = lipgloss.Color("#3a3a3a")
)

// 功能顏色映射
var (
	Primary   = SkyBlue
	Secondary = Violet
	Text      = White

	StatusGreen  = FutureGreen
	StatusYellow = Yellow
	StatusOrange = Orange
	StatusRed    = Red

	Aurora1 = FutureGreen
	Aurora2 = SkyBlue
	Aurora3 = Violet

	Snow1 = White
	Snow2 = Gray
	Snow3 = DarkGray

	Polar1 = BgDark
	Polar2 = BgMedium
	Polar3 = BgLight
	Polar4 = DarkGray

	Muted   = DarkGray
	Success = FutureGreen
	Error   = Red
	Warning = Yellow
	Info    = SkyBlue
)
