package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Yat-Muk/opsdeck/internal/pkg/version"
	"github.com/Yat-Muk/opsdeck/internal/tui/handlers"
	"github.com/Yat-Muk/opsdeck/internal/tui/model"
	"github.com/Yat-Muk/opsdeck/internal/tui/state"
)

func (a *app) runTUI(ctx context.Context) error {
	redirectStdErr(filepath.Join(a.paths.LogDir, "stderr.log"))

	engine, err := a.newEngine(ctx)
	if err != nil {
		return err
	}

	stateMgr := state.NewManager(&state.Config{
		Log:     a.log,
		Engine:  engine,
		BaseURL: a.client.BaseURL(),
		Version: version.Short(),
	})
	router := model.NewRouter(&handlers.Config{
		Log:      a.log,
		StateMgr: stateMgr,
	})

	p := tea.NewProgram(
		model.NewModel(router),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	// 崩潰保護
	defer func() {
		if r := recover(); r != nil {
			_ = p.ReleaseTerminal()
			fmt.Printf("\n\n❌ 程序崩潰: %v\n", r)
			a.log.Error("Panic", zap.Any("error", r), zap.String("stack", string(debug.Stack())))
			os.Exit(1)
		}
	}()

	if _, err := p.Run(); err != nil && !isCancelled(ctx, err) {
		return fmt.Errorf("程序運行錯誤: %w", err)
	}
	fmt.Println("👋 Bye!")
	return nil
}

func redirectStdErr(filename string) {
	_ = os.MkdirAll(filepath.Dir(filename), 0755)
	f, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err == nil {
		os.Stderr = f
	}
}
