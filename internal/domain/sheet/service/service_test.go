package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/common"
	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/view"
)

// MockFetcher is a mock implementation of source.Fetcher
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) FetchCSV(ctx context.Context, docID, gid string) (string, error) {
	args := m.Called(ctx, docID, gid)
	return args.String(0), args.Error(1)
}

// fetcherFunc adapts a function to source.Fetcher for the concurrency test.
type fetcherFunc func(ctx context.Context, docID, gid string) (string, error)

func (f fetcherFunc) FetchCSV(ctx context.Context, docID, gid string) (string, error) {
	return f(ctx, docID, gid)
}

func setupServiceTest() (*Service, *MockFetcher) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockFetcher := new(MockFetcher)
	return NewService(mockFetcher, logger), mockFetcher
}

const scheduleCSV = "模式,行程\n" +
	"日程表,\"100,200,300\"\n" +
	"相關議程,555,666\n" +
	"時刻表,地點,價錢\n" +
	"09:00,車站,NT$100\n" +
	",,\n" +
	"10:00,飯店,¥1000\n"

const personalTabCSV = "模式,個人注意\n標題,私人清單\n"
const noteTabCSV = "模式,注意事項\n標題,行前提醒\n"

func TestService_Load_FullPipeline(t *testing.T) {
	svc, mockFetcher := setupServiceTest()
	ctx := context.Background()

	mockFetcher.On("FetchCSV", mock.Anything, "doc1", "100").Return(scheduleCSV, nil).Once()
	mockFetcher.On("FetchCSV", mock.Anything, "doc1", "555").Return(personalTabCSV, nil).Once()
	mockFetcher.On("FetchCSV", mock.Anything, "doc1", "666").Return(noteTabCSV, nil).Once()

	st, err := svc.Load(ctx, "doc1", "100")
	require.NoError(t, err)
	require.NotNil(t, st)

	assert.Equal(t, []string{"時刻表", "地點", "價錢"}, st.Sheet.Header)
	assert.Len(t, st.Sheet.Data, 2, "the all-empty row must be dropped")
	assert.Equal(t, 3, st.HeaderIndex)
	assert.Equal(t, 0, st.Collisions)

	assert.Equal(t, view.Schedule, st.View.Current)
	assert.Equal(t, []view.ID{view.Schedule, view.List, view.Raw}, st.View.Available)

	assert.Equal(t, []string{"100", "200", "300"}, st.Days.GIDs)
	assert.Equal(t, 0, st.Days.Index)

	require.NotNil(t, st.Agenda.Personal)
	assert.Equal(t, "555", st.Agenda.Personal.GID)
	assert.Equal(t, "私人清單", st.Agenda.Personal.Title)
	require.NotNil(t, st.Agenda.Note)
	assert.Equal(t, "666", st.Agenda.Note.GID)

	assert.NotEqual(t, "", st.LoadID.String())
	assert.Same(t, st, svc.Current())
	mockFetcher.AssertExpectations(t)
}

func TestService_Load_FetchError(t *testing.T) {
	svc, mockFetcher := setupServiceTest()
	ctx := context.Background()

	mockFetcher.On("FetchCSV", mock.Anything, "doc1", "").
		Return("", errors.New("boom")).Once()

	st, err := svc.Load(ctx, "doc1", "")
	require.Error(t, err)
	assert.Nil(t, st)
	assert.Nil(t, svc.Current(), "a failed load must not install state")
}

func TestService_Load_EmptyPayload(t *testing.T) {
	svc, mockFetcher := setupServiceTest()
	ctx := context.Background()

	mockFetcher.On("FetchCSV", mock.Anything, "doc1", "").Return("", nil).Once()

	_, err := svc.Load(ctx, "doc1", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrEmptyCSV)
}

func TestService_SwitchView(t *testing.T) {
	svc, mockFetcher := setupServiceTest()
	ctx := context.Background()

	_, err := svc.SwitchView(view.List)
	assert.ErrorIs(t, err, common.ErrNoSheet)

	mockFetcher.On("FetchCSV", mock.Anything, "doc1", "100").Return(scheduleCSV, nil).Once()
	mockFetcher.On("FetchCSV", mock.Anything, "doc1", "555").Return(personalTabCSV, nil).Once()
	mockFetcher.On("FetchCSV", mock.Anything, "doc1", "666").Return(noteTabCSV, nil).Once()
	_, err = svc.Load(ctx, "doc1", "100")
	require.NoError(t, err)

	st, err := svc.SetAllDays(true)
	require.NoError(t, err)
	assert.True(t, st.AllDays)

	st, err = svc.SwitchView(view.List)
	require.NoError(t, err)
	assert.Equal(t, view.List, st.View.Current)
	assert.False(t, st.AllDays, "leaving schedule must drop the all-days aggregate")

	_, err = svc.SetAllDays(true)
	assert.ErrorIs(t, err, common.ErrViewUnavailable, "all-days is a schedule-only toggle")

	_, err = svc.SwitchView(view.Grid)
	assert.ErrorIs(t, err, common.ErrViewUnavailable)
}

func TestService_NavigateDay(t *testing.T) {
	svc, mockFetcher := setupServiceTest()
	ctx := context.Background()

	_, err := svc.NavigateDay(ctx, 1)
	assert.ErrorIs(t, err, common.ErrNoSheet)

	day2CSV := "模式,行程\n" +
		"日程表,\"100,200,300\"\n" +
		"時刻表,地點\n" +
		"10:00,公園\n"

	mockFetcher.On("FetchCSV", mock.Anything, "doc1", "100").Return(scheduleCSV, nil).Once()
	mockFetcher.On("FetchCSV", mock.Anything, "doc1", "555").Return(personalTabCSV, nil).Once()
	mockFetcher.On("FetchCSV", mock.Anything, "doc1", "666").Return(noteTabCSV, nil).Once()
	first, err := svc.Load(ctx, "doc1", "100")
	require.NoError(t, err)

	// Already at the first day; stepping back clamps and skips the reload.
	st, err := svc.NavigateDay(ctx, -1)
	require.NoError(t, err)
	assert.Same(t, first, st)

	mockFetcher.On("FetchCSV", mock.Anything, "doc1", "200").Return(day2CSV, nil).Once()
	st, err = svc.NavigateDay(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "200", st.GID)
	assert.Equal(t, 1, st.Days.Index)
	assert.Equal(t, []string{"100", "200", "300"}, st.Days.GIDs)

	mockFetcher.AssertExpectations(t)
}

func TestService_Load_SupersededBeforeFirstInstall(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	entered := make(chan string, 2)
	release := map[string]chan struct{}{
		"1": make(chan struct{}),
		"2": make(chan struct{}),
	}
	csvFor := map[string]string{
		"1": "模式,one\ncol a,col b\n1,2\n",
		"2": "模式,two\ncol a,col b\n3,4\n",
	}

	svc := NewService(fetcherFunc(func(ctx context.Context, docID, gid string) (string, error) {
		entered <- gid
		<-release[gid]
		return csvFor[gid], nil
	}), logger)

	type result struct {
		st  *AppState
		err error
	}
	load := func(gid string) chan result {
		ch := make(chan result)
		go func() {
			st, err := svc.Load(context.Background(), "doc1", gid)
			ch <- result{st, err}
		}()
		return ch
	}

	// The older load finishes while the newer one is still in flight and
	// nothing has ever installed.
	older := load("1")
	require.Equal(t, "1", <-entered)
	newer := load("2")
	require.Equal(t, "2", <-entered)

	close(release["1"])
	got := <-older
	require.NoError(t, got.err)
	require.NotNil(t, got.st, "a superseded load must still yield a usable state")
	assert.Equal(t, "1", got.st.GID)
	assert.Nil(t, svc.Current(), "a superseded load must not install")

	close(release["2"])
	got = <-newer
	require.NoError(t, got.err)
	assert.Equal(t, "2", got.st.GID)
	assert.Same(t, got.st, svc.Current())
}

func TestService_Load_LastLoadWins(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	slowEntered := make(chan struct{})
	slowRelease := make(chan struct{})

	fastCSV := "模式,fast\ncol a,col b\n1,2\n"
	slowCSV := "模式,slow\ncol a,col b\n3,4\n"

	svc := NewService(fetcherFunc(func(ctx context.Context, docID, gid string) (string, error) {
		if gid == "slow" {
			close(slowEntered)
			<-slowRelease
			return slowCSV, nil
		}
		return fastCSV, nil
	}), logger)

	type result struct {
		st  *AppState
		err error
	}
	done := make(chan result)
	go func() {
		st, err := svc.Load(context.Background(), "doc1", "slow")
		done <- result{st, err}
	}()

	<-slowEntered
	fast, err := svc.Load(context.Background(), "doc1", "fast")
	require.NoError(t, err)

	close(slowRelease)
	slow := <-done
	require.NoError(t, slow.err)
	got := slow.st

	assert.Same(t, fast, got, "the stale load must yield the winner's state")
	assert.Same(t, fast, svc.Current())
	assert.Equal(t, "fast", svc.Current().GID)
}
