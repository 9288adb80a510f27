package status

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetUnknown(t *testing.T) {
	s := NewStore()

	v := s.Get(Windsurf)
	assert.False(t, v.Known())
	assert.Equal(t, StateUnknown, v.State)
	assert.Empty(t, s.Profiles(Windsurf))
}

func TestStore_MergeReplacesWholesale(t *testing.T) {
	s := NewStore()

	seq := s.Issue(SnapshotOf(Stealth))
	require.True(t, s.Merge(Snapshot{Subsystem: Stealth, Seq: seq, Value: Value{
		Active:  true,
		Details: map[string]string{"hostname": "a", "mac_address": "x"},
	}}))

	seq = s.Issue(SnapshotOf(Stealth))
	require.True(t, s.Merge(Snapshot{Subsystem: Stealth, Seq: seq, Value: Value{
		Details: map[string]string{"hostname": "b"},
	}}))

	v := s.Get(Stealth)
	assert.True(t, v.Known())
	assert.False(t, v.Active)
	assert.Equal(t, "b", v.Detail("hostname"))
	assert.Empty(t, v.Detail("mac_address"), "舊字段不應殘留")
}

func TestStore_MergeIdempotent(t *testing.T) {
	s := NewStore()
	seq := s.Issue(SnapshotOf(Network))
	snap := Snapshot{Subsystem: Network, Seq: seq, Value: Value{State: StateNormal, UpdatedAt: time.Unix(100, 0)}}

	require.True(t, s.Merge(snap))
	once := s.All()

	require.True(t, s.Merge(snap))
	assert.Equal(t, once, s.All())
	assert.Equal(t, seq, s.LastMerged(SnapshotOf(Network)))
}

func TestStore_StaleFetchIsDropped(t *testing.T) {
	s := NewStore()

	// 較早發起的慢請求
	slow := s.Issue(SnapshotOf(Windsurf))
	// 較晚發起、先完成的請求
	fast := s.Issue(SnapshotOf(Windsurf))

	require.True(t, s.Merge(Snapshot{Subsystem: Windsurf, Seq: fast, Value: Value{Installed: true, Count: 3}}))
	assert.False(t, s.Merge(Snapshot{Subsystem: Windsurf, Seq: slow, Value: Value{Installed: false}}))

	v := s.Get(Windsurf)
	assert.True(t, v.Installed)
	assert.Equal(t, 3, v.Count)
}

func TestStore_SequencesArePerTarget(t *testing.T) {
	s := NewStore()

	assert.Equal(t, uint64(1), s.Issue(SnapshotOf(Windsurf)))
	assert.Equal(t, uint64(1), s.Issue(ProfilesOf(Windsurf)))
	assert.Equal(t, uint64(1), s.Issue(SnapshotOf(VSCode)))
	assert.Equal(t, uint64(2), s.Issue(SnapshotOf(Windsurf)))
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Merge(Snapshot{Subsystem: Host, Seq: s.Issue(SnapshotOf(Host)), Value: Value{Details: map[string]string{"hostname": "h1"}}})

	v := s.Get(Host)
	v.Details["hostname"] = "mutated"

	assert.Equal(t, "h1", s.Get(Host).Detail("hostname"))
}

func TestStore_Profiles(t *testing.T) {
	s := NewStore()
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("名稱重複時保留第一個", func(t *testing.T) {
		seq := s.Issue(ProfilesOf(Windsurf))
		ok := s.MergeProfiles(Windsurf, seq, []ConfigProfile{
			{Name: "alpha", Hostname: "h1", Created: created},
			{Name: "beta", Hostname: "h2"},
			{Name: "alpha", Hostname: "dup"},
		})
		require.True(t, ok)

		list := s.Profiles(Windsurf)
		require.Len(t, list, 2)
		assert.Equal(t, "h1", list[0].Hostname)
		assert.Equal(t, "beta", list[1].Name)
	})

	t.Run("過期的列表被丟棄", func(t *testing.T) {
		old := s.Issue(ProfilesOf(Windsurf))
		newer := s.Issue(ProfilesOf(Windsurf))
		require.True(t, s.MergeProfiles(Windsurf, newer, []ConfigProfile{{Name: "gamma"}}))
		assert.False(t, s.MergeProfiles(Windsurf, old, nil))

		list := s.Profiles(Windsurf)
		require.Len(t, list, 1)
		assert.Equal(t, "gamma", list[0].Name)
	})

	t.Run("其他子系統不受影響", func(t *testing.T) {
		assert.Empty(t, s.Profiles(VSCode))
	})
}

func TestStore_ConcurrentReaders(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			seq := s.Issue(SnapshotOf(Monitor))
			s.Merge(Snapshot{Subsystem: Monitor, Seq: seq, Value: Value{
				Count:   i,
				Details: map[string]string{"windsurf": "1", "vscode": "1"},
			}})
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				v := s.Get(Monitor)
				if v.Known() {
					// 要麼完整的新值，要麼完整的舊值
					assert.Len(t, v.Details, 2)
				}
			}
		}()
	}
	wg.Wait()
}

func TestParseSubsystem(t *testing.T) {
	sub, err := ParseSubsystem("vscode")
	require.NoError(t, err)
	assert.Equal(t, VSCode, sub)

	_, err = ParseSubsystem("emacs")
	assert.Error(t, err)
}
