package constants

const (
	// ==========================================
	// 主菜單 (Main Menu)
	// ==========================================
	KeyMain_Operations = "1" // 操作列表
	KeyMain_Profiles   = "2" // 已保存配置
	KeyMain_Check      = "3" // 立即檢查狀態
	KeyMain_Logs       = "4" // 終端日誌
	KeyMain_History    = "5" // 變更歷史
	KeyMain_Progress   = "6" // 最近一次操作進度
	KeyMain_Quit       = "q" // 退出程序

	// ==========================================
	// 配置列表 (Profiles)
	// ==========================================
	KeyProfiles_Windsurf = "w" // 切換到 windsurf
	KeyProfiles_VSCode   = "v" // 切換到 vscode
	KeyProfiles_Reload   = "r" // 重新拉取

	// ==========================================
	// 確認 (Confirm)
	// ==========================================
	KeyConfirm_Yes = "y"
	KeyConfirm_No  = "n"

	// 通用
	KeyBack = "0" // 返回上一級
)
