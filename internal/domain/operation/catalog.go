package operation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Yat-Muk/opsdeck/internal/domain/status"
)

// Catalog 按名稱索引的操作定義
type Catalog struct {
	defs  map[string]Definition
	order []string
}

// NewCatalog 由定義列表構建，名稱重複時後者覆蓋前者但保留原位置
func NewCatalog(defs ...Definition) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if err := c.put(d); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) put(d Definition) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if _, exists := c.defs[d.Name]; !exists {
		c.order = append(c.order, d.Name)
	}
	c.defs[d.Name] = d
	return nil
}

// Get 查找定義
func (c *Catalog) Get(name string) (Definition, bool) {
	d, ok := c.defs[name]
	return d, ok
}

// List 按註冊順序返回全部定義
func (c *Catalog) List() []Definition {
	out := make([]Definition, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.defs[name])
	}
	return out
}

// Names 按字母序返回名稱
func (c *Catalog) Names() []string {
	names := append([]string(nil), c.order...)
	sort.Strings(names)
	return names
}

// Len 定義數量
func (c *Catalog) Len() int { return len(c.order) }

// Validate 檢查定義是否可用
func (d Definition) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("operation name is empty")
	}
	if !strings.HasPrefix(d.Path, "/") {
		return fmt.Errorf("operation %s: path must start with '/': %q", d.Name, d.Path)
	}
	if d.Subsystem != "" {
		if _, err := status.ParseSubsystem(string(d.Subsystem)); err != nil {
			return fmt.Errorf("operation %s: %w", d.Name, err)
		}
	}
	for _, sub := range d.Refresh {
		if _, err := status.ParseSubsystem(string(sub)); err != nil {
			return fmt.Errorf("operation %s refresh: %w", d.Name, err)
		}
	}
	for _, m := range d.Marks {
		if _, err := status.ParseSubsystem(string(m.Subsystem)); err != nil {
			return fmt.Errorf("operation %s mark: %w", d.Name, err)
		}
	}
	return nil
}

// DisplayTitle 標題為空時回退到名稱
func (d Definition) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Name
}

const (
	longRunNotice  = "⏳ This may take 5-10 minutes..."
	rebootReminder = "⚠️ Reboot the system for full effect!"
)

// DefaultCatalog 控制台內置的操作
func DefaultCatalog() []Definition {
	return []Definition{
		{
			Name:        "windsurf-cleanup",
			Title:       "windsurf cleanup",
			Subsystem:   status.Windsurf,
			Path:        "/api/cleanup/windsurf",
			Description: "Deletes all windsurf application files, clears keychain entries and resets the machine identifiers it uses.",
			Refresh:     []status.Subsystem{status.Windsurf, status.Host},
		},
		{
			Name:        "windsurf-advanced-cleanup",
			Title:       "windsurf advanced cleanup",
			Subsystem:   status.Windsurf,
			Path:        "/api/cleanup/windsurf/advanced",
			Description: "Also clears browser storage and system lists that reference windsurf. A reboot is required afterwards.",
			Reminder:    rebootReminder,
			Refresh:     []status.Subsystem{status.Windsurf, status.Host},
		},
		{
			Name:      "windsurf-full",
			Title:     "windsurf full cleanup",
			Subsystem: status.Windsurf,
			Path:      "/api/cleanup/windsurf/full",
			Description: "Runs deep cleanup, advanced cleanup, identifier cleanup and a status check in one pass. " +
				"Takes 5-10 minutes and requires a reboot afterwards.",
			Notice:   longRunNotice,
			Reminder: rebootReminder,
			Refresh:  []status.Subsystem{status.Windsurf, status.Host},
		},
		{
			Name:        "vscode-cleanup",
			Title:       "vscode cleanup",
			Subsystem:   status.VSCode,
			Path:        "/api/cleanup/vscode",
			Description: "Deletes all VS Code application files, extensions and stored tokens.",
			Refresh:     []status.Subsystem{status.VSCode, status.Host},
		},
		{
			Name:      "vscode-full",
			Title:     "vscode full cleanup",
			Subsystem: status.VSCode,
			Path:      "/api/cleanup/vscode/full",
			Description: "Runs deep cleanup, identifier cleanup and a status check in one pass. " +
				"Takes 5-10 minutes and requires a reboot afterwards.",
			Notice:   longRunNotice,
			Reminder: rebootReminder,
			Refresh:  []status.Subsystem{status.VSCode, status.Host},
		},
		{
			Name:        "windsurf-stealth-cleanup",
			Title:       "windsurf stealth cleanup",
			Subsystem:   status.Stealth,
			Path:        "/api/stealth/cleanup/windsurf",
			Description: "Randomizes network identifiers and clears windsurf traces left in system caches.",
			Refresh:     []status.Subsystem{status.Stealth, status.Host},
		},
		{
			Name:        "vscode-stealth-cleanup",
			Title:       "vscode stealth cleanup",
			Subsystem:   status.Stealth,
			Path:        "/api/stealth/cleanup/vscode",
			Description: "Randomizes network identifiers and clears VS Code traces left in system caches.",
			Refresh:     []status.Subsystem{status.Stealth, status.Host},
		},
		{
			Name:        "global-stealth-cleanup",
			Title:       "global stealth cleanup",
			Subsystem:   status.Stealth,
			Path:        "/api/stealth/global-cleanup",
			Description: "Runs the windsurf and VS Code stealth cleanups back to back.",
			Refresh:     []status.Subsystem{status.Stealth, status.Host},
		},
		{
			Name:        "windsurf-hardware-spoof",
			Title:       "windsurf hardware spoof",
			Subsystem:   status.Hardware,
			Path:        "/api/stealth/hardware-spoof/windsurf",
			Description: "Changes the hardware UUID and related fingerprints seen by windsurf.",
			Refresh:     []status.Subsystem{status.Stealth, status.Fingerprint},
			Marks:       []Mark{{Subsystem: status.Hardware, State: status.StateApplied}},
		},
		{
			Name:        "vscode-hardware-spoof",
			Title:       "vscode hardware spoof",
			Subsystem:   status.Hardware,
			Path:        "/api/stealth/hardware-spoof/vscode",
			Description: "Changes the hardware UUID and related fingerprints seen by VS Code.",
			Refresh:     []status.Subsystem{status.Stealth, status.Fingerprint},
			Marks:       []Mark{{Subsystem: status.Hardware, State: status.StateApplied}},
		},
		{
			Name:        "global-hardware-spoof",
			Title:       "global hardware spoof",
			Subsystem:   status.Hardware,
			Path:        "/api/stealth/global-hardware-spoof",
			Description: "Changes the hardware UUID, CPU and graphics fingerprints for every managed application.",
			Refresh:     []status.Subsystem{status.Stealth, status.Fingerprint},
			Marks:       []Mark{{Subsystem: status.Hardware, State: status.StateApplied}},
		},
		{
			Name:        "ssh-rotation",
			Title:       "SSH key rotation",
			Subsystem:   status.SSH,
			Path:        "/api/stealth/ssh-rotation",
			Description: "Generates new SSH keys and replaces the current ones.",
			Marks:       []Mark{{Subsystem: status.SSH, State: status.StateRotated}},
		},
		{
			Name:        "monitor-start",
			Title:       "start stealth monitor",
			Subsystem:   status.Stealth,
			Path:        "/api/stealth/monitor",
			Args:        map[string]string{"action": "start"},
			Description: "Starts the background stealth monitor on the host.",
			Refresh:     []status.Subsystem{status.Stealth},
		},
		{
			Name:        "monitor-stop",
			Title:       "stop stealth monitor",
			Subsystem:   status.Stealth,
			Path:        "/api/stealth/monitor",
			Args:        map[string]string{"action": "stop"},
			Description: "Stops the background stealth monitor on the host.",
			Refresh:     []status.Subsystem{status.Stealth},
		},
	}
}
