package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	jsoniter "github.com/json-iterator/go"

	"github.com/Yat-Muk/opsdeck/internal/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// writeJSON 縮進輸出
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// confirm 交互確認；--yes 跳過，非交互環境必須顯式傳 --yes
func (a *app) confirm(title, description string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	if !a.stdinTTY {
		return false, errors.Validation(nil, "標準輸入不是終端，請使用 --yes 確認")
	}

	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("執行").
				Negative("取消").
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("確認被中斷: %w", err)
	}
	return ok, nil
}
