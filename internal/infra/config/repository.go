package config

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	domainConfig "github.com/Yat-Muk/opsdeck/internal/domain/config"
	"github.com/Yat-Muk/opsdeck/internal/pkg/errors"
)

const fileHeader = "# opsdeck 控制台配置，可用 `opsdeck config set` 修改\n"

// fileStamp 判斷文件是否被外部改動
type fileStamp struct {
	mod  time.Time
	size int64
}

func stampOf(fi os.FileInfo) fileStamp {
	return fileStamp{mod: fi.ModTime(), size: fi.Size()}
}

// FileRepository YAML 文件配置倉庫；文件未變時返回緩存副本
type FileRepository struct {
	path string

	mu     sync.Mutex
	logger *zap.Logger
	cached *domainConfig.Config
	stamp  fileStamp
}

func NewFileRepository(path string, logger *zap.Logger) *FileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileRepository{path: path, logger: logger}
}

// SetLogger 日誌參數來自配置本身，初始化完成後再替換
func (r *FileRepository) SetLogger(logger *zap.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

func (r *FileRepository) Path() string { return r.path }

// Load 文件不存在時返回默認配置；文件中缺省的字段保持默認值
func (r *FileRepository) Load(ctx context.Context) (*domainConfig.Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fi, err := os.Stat(r.path)
	if os.IsNotExist(err) {
		r.logger.Debug("配置文件不存在，使用默認配置", zap.String("path", r.path))
		return domainConfig.DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("檢查配置文件狀態失敗: %w", err)
	}
	if r.cached != nil && stampOf(fi) == r.stamp {
		return r.cached.DeepCopy(), nil
	}

	content, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("讀取配置文件失敗: %w", err)
	}

	cfg, err := r.decode(content)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		r.logger.Error("配置文件無效", zap.String("path", r.path), zap.Error(err))
		return nil, err
	}

	r.cached = cfg.DeepCopy()
	r.stamp = stampOf(fi)
	r.logger.Info("已從磁盤加載配置", zap.String("path", r.path), zap.Time("mod_time", fi.ModTime()))
	return cfg, nil
}

// decode 先嚴格解析；只有未知字段時退回寬鬆解析並告警
func (r *FileRepository) decode(content []byte) (*domainConfig.Config, error) {
	cfg := domainConfig.DefaultConfig()
	if len(bytes.TrimSpace(content)) == 0 {
		return cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	err := dec.Decode(cfg)
	if err == nil || err == io.EOF { // 只有註釋時為 EOF
		return cfg, nil
	}

	unknown := unknownFields(err)
	if unknown == nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrConfigParseFailed, err)
	}

	cfg = domainConfig.DefaultConfig()
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrConfigParseFailed, err)
	}
	r.logger.Warn("配置文件包含未知字段，已忽略", zap.String("path", r.path), zap.Strings("fields", unknown))
	return cfg, nil
}

// unknownFields 錯誤全部是未知字段時返回其描述，否則 nil
func unknownFields(err error) []string {
	te, ok := err.(*yaml.TypeError)
	if !ok {
		return nil
	}
	var out []string
	for _, e := range te.Errors {
		if !strings.Contains(e, "not found in type") {
			return nil
		}
		out = append(out, e)
	}
	return out
}

// Save 校驗後原子寫入，權限 0600
func (r *FileRepository) Save(ctx context.Context, cfg *domainConfig.Config) error {
	if cfg == nil {
		return fmt.Errorf("配置對象為空")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	snapshot := cfg.DeepCopy()
	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(snapshot); err != nil {
		return fmt.Errorf("序列化配置失敗: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("序列化配置失敗: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := writeFileAtomic(r.path, buf.Bytes(), 0600); err != nil {
		return err
	}

	r.cached = snapshot
	if fi, err := os.Stat(r.path); err == nil {
		r.stamp = stampOf(fi)
	}
	return nil
}

// writeFileAtomic 同目錄臨時文件 -> fsync -> rename
func writeFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("創建配置目錄失敗: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("創建臨時文件失敗: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("設置文件權限失敗: %w", err)
	}
	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("寫入配置失敗: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("同步磁盤失敗: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("關閉臨時文件失敗: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("替換配置文件失敗: %w", err)
	}
	return nil
}
