package view

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/Yat-Muk/opsdeck/internal/domain/status"
	"github.com/Yat-Muk/opsdeck/internal/tui/constants"
	"github.com/Yat-Muk/opsdeck/internal/tui/style"
)

// RenderProfiles 已保存配置列表，輸入序號恢復
func RenderProfiles(sub status.Subsystem, profiles []status.ConfigProfile, now time.Time, ti textinput.Model, notice Notice) string {
	header := renderSubpageHeader(fmt.Sprintf("%s 已保存配置", SubsystemLabel(sub)))

	var list string
	if len(profiles) == 0 {
		list = lipgloss.JoinVertical(lipgloss.Left,
			style.MutedText(" 暫無已保存的配置"),
			separator("═"),
		)
	} else {
		items := make([]MenuItem, 0, len(profiles))
		for i, p := range profiles {
			items = append(items, MenuItem{
				Num:  strconv.Itoa(i + 1),
				Text: style.Truncate(p.Name, 24),
				Desc: profileDesc(p, now),
			})
		}
		list = renderMenuWithAlignment(items, true)
	}

	switches := renderMenuWithAlignment([]MenuItem{
		{constants.KeyProfiles_Windsurf, "Windsurf", "", tabColor(sub == status.Windsurf)},
		{constants.KeyProfiles_VSCode, "VS Code", "", tabColor(sub == status.VSCode)},
		{constants.KeyProfiles_Reload, "重新加載", "", style.Snow1},
	}, false)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		list,
		switches,
		RenderStatusMessage(notice),
		RenderInputFooter(ti),
	)
}

func profileDesc(p status.ConfigProfile, now time.Time) string {
	created := "未知時間"
	if !p.Created.IsZero() {
		created = humanize.RelTime(p.Created, now, "ago", "from now")
	}
	if p.Hostname != "" {
		return fmt.Sprintf("(%s, %s)", p.Hostname, created)
	}
	return fmt.Sprintf("(%s)", created)
}

func tabColor(active bool) lipgloss.Color {
	if active {
		return style.StatusGreen
	}
	return style.Snow2
}
