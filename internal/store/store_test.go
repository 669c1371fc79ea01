package store_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/stereoscope/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "run.db")
	s, err := store.Open(path, false)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesMissingParentDirectory(t *testing.T) {
	openTestStore(t)
}

func TestRecordRunAndHistory(t *testing.T) {
	s := openTestStore(t)

	run := &store.RunRecord{
		StartedAt:      time.Now(),
		InputPath:      "/src",
		OutputPath:     "/out",
		LargeClassSize: 21,
		ClassCount:     2,
		MethodCount:    5,
		ClassRows: []store.ClassStereotypeRow{
			{ClassName: "Account", Stereotypes: "entity"},
		},
		MethodRows: []store.MethodStereotypeRow{
			{ClassName: "Account", MethodName: "getBalance", Stereotypes: "get"},
		},
	}

	require.NoError(t, s.RecordRun(run))
	assert.NotZero(t, run.ID)

	runs, err := s.History(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "/src", runs[0].InputPath)
}

func TestRunDetail_PreloadsChildRows(t *testing.T) {
	s := openTestStore(t)

	run := &store.RunRecord{
		StartedAt:  time.Now(),
		InputPath:  "/src",
		OutputPath: "/out",
		ClassRows:  []store.ClassStereotypeRow{{ClassName: "Account", Stereotypes: "entity"}},
		MethodRows: []store.MethodStereotypeRow{{ClassName: "Account", MethodName: "getBalance", Stereotypes: "get"}},
	}
	require.NoError(t, s.RecordRun(run))

	detail, err := s.RunDetail(run.ID)
	require.NoError(t, err)
	require.Len(t, detail.ClassRows, 1)
	require.Len(t, detail.MethodRows, 1)
	assert.Equal(t, "Account", detail.ClassRows[0].ClassName)
}

func TestHistory_OrdersNewestFirst(t *testing.T) {
	s := openTestStore(t)

	older := &store.RunRecord{StartedAt: time.Now().Add(-time.Hour), InputPath: "/old", OutputPath: "/old-out"}
	newer := &store.RunRecord{StartedAt: time.Now(), InputPath: "/new", OutputPath: "/new-out"}
	require.NoError(t, s.RecordRun(older))
	require.NoError(t, s.RecordRun(newer))

	runs, err := s.History(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "/new", runs[0].InputPath)
}
