package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Yat-Muk/opsdeck/internal/pkg/inputvalidator"
)

const (
	BackupFileMode os.FileMode = 0600
	BackupDirMode  os.FileMode = 0700
	ChecksumSuffix             = ".sha256"

	backupPrefix = "config-"
	backupSuffix = ".bak"
	lastHashFile = ".last-hash"
	stampLayout  = "20060102-150405.000"
)

// Manager 配置文件的本地快照
type Manager struct {
	srcPath   string
	backupDir string
	retention RetentionPolicy
	now       func() time.Time
}

// RetentionPolicy 保留策略，0 表示不限
type RetentionPolicy struct {
	MaxFiles int
	MaxAge   time.Duration
}

type BackupFile struct {
	Name     string
	Path     string
	Created  time.Time
	Size     int64
	Verified bool
}

// NewManager 為 srcPath 創建快照管理器，快照存放在 backupDir
func NewManager(srcPath, backupDir string, retention RetentionPolicy) (*Manager, error) {
	if err := os.MkdirAll(backupDir, BackupDirMode); err != nil {
		return nil, fmt.Errorf("創建備份目錄失敗: %w", err)
	}
	return &Manager{
		srcPath:   srcPath,
		backupDir: backupDir,
		retention: retention,
		now:       time.Now,
	}, nil
}

// Dir 快照目錄
func (m *Manager) Dir() string { return m.backupDir }

// Snapshot 備份當前配置文件；文件不存在或內容與上一份相同時跳過
func (m *Manager) Snapshot(tag string) (string, error) {
	data, err := os.ReadFile(m.srcPath)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("讀取源文件失敗: %w", err)
	}

	sum := checksum(data)
	if m.isDuplicateContent(sum) {
		return "", nil
	}

	name := backupPrefix + m.now().Format(stampLayout)
	if tag = sanitizeTag(tag); tag != "" {
		name += "-" + tag
	}
	name += backupSuffix
	dstPath := filepath.Join(m.backupDir, name)

	if err := os.WriteFile(dstPath, data, BackupFileMode); err != nil {
		return "", fmt.Errorf("寫入備份失敗: %w", err)
	}
	if err := writeAtomic(dstPath+ChecksumSuffix, []byte(sum)); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("生成校驗文件失敗: %w", err)
	}

	_ = writeAtomic(filepath.Join(m.backupDir, lastHashFile), []byte(sum))
	m.enforcePolicy()
	return name, nil
}

// Restore 校驗後把快照原子地寫回配置文件
func (m *Manager) Restore(name string) error {
	if err := inputvalidator.ValidateFilename(name); err != nil {
		return err
	}
	if err := inputvalidator.ValidateSafePath(m.backupDir, name); err != nil {
		return err
	}

	srcPath := filepath.Join(m.backupDir, name)
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("讀取備份文件失敗: %w", err)
	}
	if !m.verify(srcPath, data) {
		return fmt.Errorf("備份完整性校驗失敗: %s", name)
	}

	tmpFile := m.srcPath + ".tmp"
	if err := os.WriteFile(tmpFile, data, BackupFileMode); err != nil {
		return fmt.Errorf("寫入臨時文件失敗: %w", err)
	}
	if err := os.Rename(tmpFile, m.srcPath); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("替換目標文件失敗: %w", err)
	}
	return nil
}

// List 最新的快照排在最前
func (m *Manager) List() ([]BackupFile, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []BackupFile{}, nil
		}
		return nil, fmt.Errorf("讀取備份目錄失敗: %w", err)
	}

	backups := []BackupFile{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(m.backupDir, name)
		var verified bool
		if data, err := os.ReadFile(path); err == nil {
			verified = m.verify(path, data)
		}

		backups = append(backups, BackupFile{
			Name:     name,
			Path:     path,
			Created:  parseStamp(name, info.ModTime()),
			Size:     info.Size(),
			Verified: verified,
		})
	}

	// 文件名帶時間戳，按名稱倒序即為時間倒序
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Name > backups[j].Name
	})
	return backups, nil
}

func (m *Manager) enforcePolicy() {
	backups, err := m.List()
	if err != nil {
		return
	}

	now := m.now()
	for i, b := range backups {
		expired := m.retention.MaxAge > 0 && now.Sub(b.Created) > m.retention.MaxAge
		if (m.retention.MaxFiles > 0 && i >= m.retention.MaxFiles) || expired {
			os.Remove(b.Path)
			os.Remove(b.Path + ChecksumSuffix)
		}
	}
}

func (m *Manager) verify(path string, data []byte) bool {
	expected, err := os.ReadFile(path + ChecksumSuffix)
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(expected)) == checksum(data)
}

func (m *Manager) isDuplicateContent(sum string) bool {
	last, err := os.ReadFile(filepath.Join(m.backupDir, lastHashFile))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(last)) == sum
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, BackupFileMode); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// sanitizeTag 標籤只保留文件名安全字符
func sanitizeTag(tag string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(tag) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == ' ':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

func parseStamp(name string, fallback time.Time) time.Time {
	rest := strings.TrimPrefix(name, backupPrefix)
	if len(rest) < len(stampLayout) {
		return fallback
	}
	t, err := time.ParseInLocation(stampLayout, rest[:len(stampLayout)], time.Local)
	if err != nil {
		return fallback
	}
	return t
}
