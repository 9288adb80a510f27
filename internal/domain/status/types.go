package status

import (
	"fmt"
	"time"
)

// Subsystem 被監控的子系統標識
type Subsystem string

const (
	Windsurf    Subsystem = "windsurf"
	VSCode      Subsystem = "vscode"
	Stealth     Subsystem = "stealth"
	Hardware    Subsystem = "hardware"
	Monitor     Subsystem = "monitor"
	Network     Subsystem = "network"
	Fingerprint Subsystem = "fingerprint"
	Host        Subsystem = "host"
	SSH         Subsystem = "ssh"
)

// All 返回全部子系統，順序即儀表板的顯示順序
func All() []Subsystem {
	return []Subsystem{Windsurf, VSCode, Stealth, Hardware, Monitor, Network, Fingerprint, Host, SSH}
}

// Restorable 有已保存配置、支持恢復的子系統
func Restorable() []Subsystem {
	return []Subsystem{Windsurf, VSCode}
}

// CanRestore 子系統是否支持恢復
func (s Subsystem) CanRestore() bool {
	return s == Windsurf || s == VSCode
}

// ParseSubsystem 解析子系統名稱
func ParseSubsystem(s string) (Subsystem, error) {
	for _, sub := range All() {
		if string(sub) == s {
			return sub, nil
		}
	}
	return "", fmt.Errorf("unknown subsystem %q", s)
}

func (s Subsystem) String() string { return string(s) }

// 常見的狀態枚舉值
const (
	StateUnknown  = "UNKNOWN"
	StateActive   = "ACTIVE"
	StateInactive = "INACTIVE"
	StateNormal   = "NORMAL"
	StateOffline  = "OFFLINE"
	StateSpoofed  = "SPOOFED"
	StateOriginal = "ORIGINAL"
	StateApplied  = "APPLIED"
	StateRotated  = "ROTATED"
)

// Value 某個子系統的狀態值 (不透明，視子系統而定使用其中部分字段)
type Value struct {
	Installed bool              `json:"installed"`
	Active    bool              `json:"active"`
	State     string            `json:"state,omitempty"`
	Count     int               `json:"count"`
	Details   map[string]string `json:"details,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`

	known bool
}

// Unknown 從未被填充時返回的哨兵值
var Unknown = Value{State: StateUnknown}

// Known 是否來自一次成功的合併
func (v Value) Known() bool { return v.known }

// Detail 讀取詳情字段
func (v Value) Detail(key string) string {
	if v.Details == nil {
		return ""
	}
	return v.Details[key]
}

// clone 深拷貝 Details，保證存儲內的值不被外部修改
func (v Value) clone() Value {
	out := v
	if v.Details != nil {
		out.Details = make(map[string]string, len(v.Details))
		for k, val := range v.Details {
			out.Details[k] = val
		}
	}
	return out
}

// Snapshot 一次拉取的結果，Seq 由 Store.Issue 在發起請求時分配
type Snapshot struct {
	Subsystem Subsystem
	Seq       uint64
	Value     Value
}

// ConfigProfile 服務端保存的配置檔案 (只讀緩存)
type ConfigProfile struct {
	Name        string    `json:"name"`
	Hostname    string    `json:"hostname"`
	Created     time.Time `json:"created"`
	Description string    `json:"description,omitempty"`
}

// Kind 區分同一子系統下的不同數據槽
type Kind int

const (
	KindSnapshot Kind = iota
	KindProfiles
)

// Target 一次拉取所寫入的數據槽
type Target struct {
	Subsystem Subsystem
	Kind      Kind
}

// SnapshotOf 狀態槽
func SnapshotOf(s Subsystem) Target { return Target{Subsystem: s, Kind: KindSnapshot} }

// ProfilesOf 配置列表槽
func ProfilesOf(s Subsystem) Target { return Target{Subsystem: s, Kind: KindProfiles} }

func (t Target) String() string {
	if t.Kind == KindProfiles {
		return string(t.Subsystem) + "/profiles"
	}
	return string(t.Subsystem)
}
