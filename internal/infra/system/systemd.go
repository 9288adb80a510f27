package system

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-systemd/v22/dbus"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// SystemdManager watch 服務安裝、卸載與查詢所需的 systemd 操作
type SystemdManager interface {
	Start(ctx context.Context, service string) error
	Stop(ctx context.Context, service string) error
	Enable(ctx context.Context, service string) error
	Disable(ctx context.Context, service string) error
	DaemonReload(ctx context.Context) error
	Status(ctx context.Context, service string) (*ServiceStatus, error)
	IsActive(ctx context.Context, service string) (bool, error)
	Close()
}

// ServiceStatus service status 命令展示的字段
type ServiceStatus struct {
	Name        string
	Active      bool
	Running     bool
	Failed      bool
	Enabled     bool
	SubState    string
	PID         string
	Memory      string
	MemoryBytes uint64
	Uptime      string
	UptimeDur   time.Duration
}

type dbusManager struct {
	conn *dbus.Conn
	log  *zap.Logger
	mu   sync.Mutex // 串行化 job 類調用
}

func NewSystemdManager(ctx context.Context, log *zap.Logger) (SystemdManager, error) {
	conn, err := dbus.NewSystemdConnectionContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("無法連接 systemd D-Bus: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &dbusManager{conn: conn, log: log.Named("systemd")}, nil
}

func (m *dbusManager) Close() {
	if m.conn != nil {
		m.conn.Close()
	}
}

func ensureSuffix(service string) string {
	if strings.HasSuffix(service, ".service") {
		return service
	}
	return service + ".service"
}

type unitJob func(ctx context.Context, name, mode string, ch chan<- string) (int, error)

// runJob 提交 job 並等待 systemd 回報結果 ("done" 以外均視為失敗)
func (m *dbusManager) runJob(ctx context.Context, verb, service string, job unitJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	service = ensureSuffix(service)

	ch := make(chan string, 1)
	if _, err := job(ctx, service, "replace", ch); err != nil {
		return fmt.Errorf("%s %s: %w", verb, service, err)
	}
	m.log.Info("systemd job 已提交", zap.String("verb", verb), zap.String("service", service))

	select {
	case result := <-ch:
		if result != "done" {
			return fmt.Errorf("%s %s: job %s", verb, service, result)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s %s 超時: %w", verb, service, ctx.Err())
	}
}

func (m *dbusManager) Start(ctx context.Context, service string) error {
	return m.runJob(ctx, "start", service, m.conn.StartUnitContext)
}

func (m *dbusManager) Stop(ctx context.Context, service string) error {
	return m.runJob(ctx, "stop", service, m.conn.StopUnitContext)
}

func (m *dbusManager) Enable(ctx context.Context, service string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, _, err := m.conn.EnableUnitFilesContext(ctx, []string{ensureSuffix(service)}, false, true)
	return err
}

func (m *dbusManager) Disable(ctx context.Context, service string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := m.conn.DisableUnitFilesContext(ctx, []string{ensureSuffix(service)}, false)
	return err
}

func (m *dbusManager) DaemonReload(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn.ReloadContext(ctx)
}

func (m *dbusManager) Status(ctx context.Context, service string) (*ServiceStatus, error) {
	service = ensureSuffix(service)

	units, err := m.conn.ListUnitsByNamesContext(ctx, []string{service})
	if err != nil {
		return nil, err
	}

	var unit *dbus.UnitStatus
	if len(units) > 0 {
		unit = &units[0]
	}
	var props map[string]any
	if unit != nil {
		if p, err := m.conn.GetAllPropertiesContext(ctx, service); err == nil {
			props = p
		} else {
			m.log.Debug("讀取單元屬性失敗", zap.String("service", service), zap.Error(err))
		}
	}
	fileState := ""
	if prop, err := m.conn.GetUnitPropertyContext(ctx, service, "UnitFileState"); err == nil {
		fileState, _ = prop.Value.Value().(string)
	}

	return buildStatus(service, unit, props, fileState, time.Now()), nil
}

// buildStatus 從 D-Bus 查詢結果組裝；unit 為 nil 表示未加載
func buildStatus(service string, unit *dbus.UnitStatus, props map[string]any, fileState string, now time.Time) *ServiceStatus {
	st := &ServiceStatus{
		Name:    service,
		Enabled: fileState == "enabled" || fileState == "enabled-runtime",
	}
	if unit == nil {
		return st
	}

	st.Active = unit.ActiveState == "active"
	st.Failed = unit.ActiveState == "failed"
	st.Running = unit.SubState == "running"
	st.SubState = unit.SubState

	if pid, ok := props["MainPID"].(uint32); ok && pid > 0 {
		st.PID = strconv.FormatUint(uint64(pid), 10)
	}
	// 未啟用內存統計時為 MaxUint64
	if mem, ok := props["MemoryCurrent"].(uint64); ok && mem != math.MaxUint64 {
		st.MemoryBytes = mem
		st.Memory = humanize.IBytes(mem)
	}
	if ts, ok := props["ActiveEnterTimestamp"].(uint64); ok && ts > 0 && st.Active {
		st.UptimeDur = now.Sub(time.UnixMicro(int64(ts)))
		st.Uptime = st.UptimeDur.Round(time.Second).String()
	}
	return st
}

func (m *dbusManager) IsActive(ctx context.Context, service string) (bool, error) {
	units, err := m.conn.ListUnitsByNamesContext(ctx, []string{ensureSuffix(service)})
	if err != nil {
		return false, err
	}
	return len(units) > 0 && units[0].ActiveState == "active", nil
}
