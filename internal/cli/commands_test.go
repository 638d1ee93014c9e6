package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"

	"wallet/internal/charts"
	"wallet/internal/config"
	"wallet/internal/core"
	applog "wallet/internal/log"
	"wallet/internal/store/memory"
)

func newTestApp(seed ...core.Expense) (*App, *bytes.Buffer, *memory.Store) {
	out := &bytes.Buffer{}
	s := memory.New(seed...)
	app := NewApp(s, config.DefaultCategories, out, applog.Discard())
	app.Now = func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.Local) }
	return app, out, s
}

func TestRunWithoutCommand(t *testing.T) {
	app, out, _ := newTestApp()
	err := app.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, out.String(), "usage: wallet")

	err = app.Run(context.Background(), []string{"frobnicate"})
	assert.ErrorIs(t, err, ErrUsage)
}

func TestAdd(t *testing.T) {
	ctx := context.Background()
	app, out, s := newTestApp()

	err := app.Run(ctx, []string{"add", "-category", "밥", "-amount", "12,000원", "-place", " 김밥천국 ", "-desc", "점심"})
	require.NoError(t, err)

	all := s.GetAllExpenses(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, core.ExpenseInput{Date: "2024-03-15", Category: "밥", Amount: 12000, Place: "김밥천국", Description: "점심"}, all[0].Input())
	assert.Contains(t, out.String(), "지출이 추가되었습니다!")
	assert.Contains(t, out.String(), "12,000원")
}

func TestAddRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	tests := map[string][]string{
		"zero amount":      {"add", "-category", "밥", "-amount", "0"},
		"missing amount":   {"add", "-category", "밥"},
		"garbage amount":   {"add", "-category", "밥", "-amount", "lots"},
		"decimal amount":   {"add", "-category", "밥", "-amount", "3.50"},
		"unknown category": {"add", "-category", "pizza", "-amount", "100"},
		"bad date":         {"add", "-date", "2024-02-30", "-category", "밥", "-amount", "100"},
		"stray argument":   {"add", "-category", "밥", "-amount", "100", "extra"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			app, _, s := newTestApp()
			err := app.Run(ctx, args)
			assert.ErrorIs(t, err, ErrUsage)
			assert.Empty(t, s.GetAllExpenses(ctx))
		})
	}
}

func seedExpenses() []core.Expense {
	return []core.Expense{
		{ID: 1, Date: "2024-01-05", Category: "밥", Amount: 8000},
		{ID: 2, Date: "2024-02-10", Category: "커피", Amount: 4500, Place: "카페"},
		{ID: 3, Date: "2024-03-01", Category: "밥", Amount: 9000},
		{ID: 4, Date: "2024-03-14", Category: "농구", Amount: 1},
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()

	t.Run("all with totals", func(t *testing.T) {
		app, out, _ := newTestApp(seedExpenses()...)
		require.NoError(t, app.Run(ctx, []string{"list"}))
		assert.Contains(t, out.String(), "총 지출: 21,501원")
		assert.Contains(t, out.String(), "지출 건수: 4건")
		assert.Contains(t, out.String(), "평균 지출: 5,375원")
	})

	t.Run("limit keeps newest", func(t *testing.T) {
		app, out, _ := newTestApp(seedExpenses()...)
		require.NoError(t, app.Run(ctx, []string{"list", "-limit", "1"}))
		assert.Contains(t, out.String(), "2024-03-14")
		assert.NotContains(t, out.String(), "2024-01-05")
	})

	t.Run("date range defaults to last 30 days", func(t *testing.T) {
		app, out, _ := newTestApp(seedExpenses()...)
		require.NoError(t, app.Run(ctx, []string{"list", "-to", "2024-03-15"}))
		assert.Contains(t, out.String(), "2024-03-01")
		assert.NotContains(t, out.String(), "2024-02-10")
	})

	t.Run("old end date looks back from itself", func(t *testing.T) {
		app, out, _ := newTestApp(seedExpenses()...)
		require.NoError(t, app.Run(ctx, []string{"list", "-to", "2024-01-31"}))
		assert.Contains(t, out.String(), "2024-01-05")
		assert.Contains(t, out.String(), "지출 건수: 1건")
	})

	t.Run("start date runs until today", func(t *testing.T) {
		app, out, _ := newTestApp(seedExpenses()...)
		require.NoError(t, app.Run(ctx, []string{"list", "-from", "2024-02-01"}))
		assert.Contains(t, out.String(), "지출 건수: 3건")
		assert.NotContains(t, out.String(), "2024-01-05")
	})

	t.Run("category", func(t *testing.T) {
		app, out, _ := newTestApp(seedExpenses()...)
		require.NoError(t, app.Run(ctx, []string{"list", "-category", "커피"}))
		assert.Contains(t, out.String(), "카페")
		assert.Contains(t, out.String(), "지출 건수: 1건")
	})

	t.Run("range and category conflict", func(t *testing.T) {
		app, _, _ := newTestApp(seedExpenses()...)
		assert.ErrorIs(t, app.Run(ctx, []string{"list", "-from", "2024-01-01", "-category", "밥"}), ErrUsage)
	})

	t.Run("empty", func(t *testing.T) {
		app, out, _ := newTestApp()
		require.NoError(t, app.Run(ctx, []string{"list"}))
		assert.Contains(t, out.String(), "지출 내역이 없습니다.")
	})
}

func TestUpdateOverlaysGivenFlags(t *testing.T) {
	ctx := context.Background()
	app, out, s := newTestApp(seedExpenses()...)

	require.NoError(t, app.Run(ctx, []string{"update", "-id", "2", "-amount", "5,000", "-place", ""}))
	assert.Contains(t, out.String(), "수정되었습니다!")

	all := s.GetAllExpenses(ctx)
	got := all[2]
	require.Equal(t, int64(2), got.ID)
	assert.Equal(t, core.Expense{ID: 2, Date: "2024-02-10", Category: "커피", Amount: 5000}, got)
}

func TestUpdateErrors(t *testing.T) {
	ctx := context.Background()
	app, _, _ := newTestApp(seedExpenses()...)

	assert.ErrorIs(t, app.Run(ctx, []string{"update"}), ErrUsage)
	assert.ErrorIs(t, app.Run(ctx, []string{"update", "-id", "1", "-category", "pizza"}), ErrUsage)
	assert.ErrorIs(t, app.Run(ctx, []string{"update", "-id", "1", "-date", "yesterday"}), ErrUsage)

	err := app.Run(ctx, []string{"update", "-id", "99", "-amount", "1"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUsage))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	app, out, s := newTestApp(seedExpenses()...)

	require.NoError(t, app.Run(ctx, []string{"delete", "-id", "3"}))
	assert.Contains(t, out.String(), "삭제되었습니다!")
	assert.Len(t, s.GetAllExpenses(ctx), 3)

	assert.Error(t, app.Run(ctx, []string{"delete", "-id", "3"}))
	assert.ErrorIs(t, app.Run(ctx, []string{"delete"}), ErrUsage)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	app, out, _ := newTestApp(seedExpenses()...)

	require.NoError(t, app.Run(ctx, []string{"stats"}))
	text := out.String()
	assert.Contains(t, text, "전체 통계")
	assert.Contains(t, text, "17,000원")
	assert.Contains(t, text, "2024년 3월 통계")
	assert.Contains(t, text, "이번 달 총 지출: 9,001원")
	assert.Contains(t, text, "100.0%")

	// overall rows are ordered by total
	assert.Less(t, strings.Index(text, "17,000원"), strings.Index(text, "4,500원"))
}

func TestStatsEmptyMonth(t *testing.T) {
	app, out, _ := newTestApp(seedExpenses()...)
	require.NoError(t, app.Run(context.Background(), []string{"stats", "-year", "2023", "-month", "12"}))
	assert.Contains(t, out.String(), "2023년 12월 지출 내역이 없습니다.")
	assert.ErrorIs(t, app.Run(context.Background(), []string{"stats", "-month", "13"}), ErrUsage)
}

func asciiExpenses() []core.Expense {
	return []core.Expense{
		{ID: 1, Date: "2024-02-03", Category: "food", Amount: 8000},
		{ID: 2, Date: "2024-02-10", Category: "coffee", Amount: 4500},
	}
}

func TestStatsWritesCharts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	app, out, _ := newTestApp(asciiExpenses()...)

	require.NoError(t, app.Run(context.Background(), []string{"stats", "-year", "2024", "-month", "2", "-chart-dir", dir}))

	for _, name := range []string{"summary.png", "summary-2024-02.png"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size())
	}
	assert.Contains(t, out.String(), "chart: ")
}

func TestStatsChartsUseConfiguredFont(t *testing.T) {
	tmp := t.TempDir()
	fontPath := filepath.Join(tmp, "go.ttf")
	require.NoError(t, os.WriteFile(fontPath, goregular.TTF, 0644))

	dir := filepath.Join(tmp, "charts")
	app, _, _ := newTestApp(asciiExpenses()...)
	app.ChartFont = fontPath

	require.NoError(t, app.Run(context.Background(), []string{"stats", "-year", "2024", "-month", "2", "-chart-dir", dir}))
	_, err := os.Stat(filepath.Join(dir, "summary.png"))
	assert.NoError(t, err)

	app.ChartFont = filepath.Join(tmp, "missing.ttf")
	assert.Error(t, app.Run(context.Background(), []string{"stats", "-chart-dir", dir}))
}

func TestStatsChartsFailWithoutHangulFont(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	app, out, _ := newTestApp(seedExpenses()...)

	err := app.Run(context.Background(), []string{"stats", "-year", "2024", "-month", "3", "-chart-dir", dir})
	require.ErrorIs(t, err, charts.ErrMissingGlyphs)
	assert.Contains(t, err.Error(), "WALLET_CHART_FONT")
	// the text report is still printed
	assert.Contains(t, out.String(), "2024년 3월 통계")
	assert.NotContains(t, out.String(), "chart: ")
}

func TestCategories(t *testing.T) {
	app, out, _ := newTestApp()
	require.NoError(t, app.Run(context.Background(), []string{"categories"}))
	assert.Equal(t, strings.Join(config.DefaultCategories, "\n")+"\n", out.String())
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, percentage(5, 0))
	assert.InDelta(t, 25.0, percentage(1, 4), 0.001)
}
