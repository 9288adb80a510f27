package msg

import "time"

// ClockMsg 頂部時鐘每秒刷新
type ClockMsg time.Time

// QuitMsg 延遲退出
type QuitMsg struct{}
