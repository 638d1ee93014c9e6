package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"wallet/internal/charts"
	"wallet/internal/core"
	applog "wallet/internal/log"
	"wallet/internal/store"
)

// ErrUsage marks a malformed command line.
var ErrUsage = errors.New("usage error")

const (
	recentLimit  = 5
	lookbackDays = 30
)

const usage = `usage: wallet <command> [flags]

commands:
  add         -date YYYY-MM-DD -category NAME -amount N [-place P] [-desc D]
  list        [-from YYYY-MM-DD] [-to YYYY-MM-DD] | [-category NAME] [-limit N]
  update      -id N [-date ...] [-category ...] [-amount ...] [-place ...] [-desc ...]
  delete      -id N
  stats       [-year YYYY] [-month M] [-chart-dir DIR]
  categories
`

// App is the command-line presentation layer over a store.Store.
type App struct {
	Store      store.Store
	Categories []string
	Out        io.Writer
	Logger     *applog.Logger
	Now        func() time.Time
	// ChartFont is a TrueType file for chart labels; empty uses the built-in font.
	ChartFont string
}

// NewApp wires an App writing to out.
func NewApp(s store.Store, categories []string, out io.Writer, logger *applog.Logger) *App {
	if logger == nil {
		logger = applog.Default(applog.ComponentCLI)
	}
	return &App{
		Store:      s,
		Categories: categories,
		Out:        out,
		Logger:     logger.WithComponent(applog.ComponentCLI),
		Now:        time.Now,
	}
}

// Run executes one command. Errors wrapping ErrUsage come from bad arguments.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.Out, usage)
		return ErrUsage
	}

	logger := a.Logger.With(applog.FieldRunID, uuid.NewString())
	ctx = applog.NewContext(ctx, logger)
	logger.DebugContext(ctx, "Running command", "command", args[0])

	start := time.Now()
	err := a.dispatch(ctx, args[0], args[1:])
	logger.DebugContext(ctx, "Command finished",
		"command", args[0],
		applog.FieldSuccess, err == nil,
		applog.FieldDurationMs, time.Since(start).Milliseconds())
	return err
}

func (a *App) dispatch(ctx context.Context, cmd string, rest []string) error {
	switch cmd {
	case "add":
		return a.add(ctx, rest)
	case "list":
		return a.list(ctx, rest)
	case "update":
		return a.update(ctx, rest)
	case "delete":
		return a.delete(ctx, rest)
	case "stats":
		return a.stats(ctx, rest)
	case "categories":
		return a.categories()
	case "help", "-h", "--help":
		fmt.Fprint(a.Out, usage)
		return nil
	default:
		fmt.Fprint(a.Out, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

func (a *App) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Out)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected arguments %v", ErrUsage, fs.Args())
	}
	return nil
}

func (a *App) today() core.Date {
	return core.DateOf(a.Now())
}

func (a *App) checkCategory(category string) error {
	if slices.Contains(a.Categories, category) {
		return nil
	}
	return fmt.Errorf("%w: unknown category %q (choose one of %s)", ErrUsage, category, strings.Join(a.Categories, ", "))
}

func (a *App) add(ctx context.Context, args []string) error {
	fs := a.flagSet("add")
	date := fs.String("date", string(a.today()), "expense date (YYYY-MM-DD)")
	category := fs.String("category", "", "category")
	amount := fs.String("amount", "", "amount, e.g. 12,000")
	place := fs.String("place", "", "where the money was spent")
	desc := fs.String("desc", "", "free text description")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	d, err := core.ParseDate(*date)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if err := a.checkCategory(*category); err != nil {
		return err
	}
	value, err := core.ParseAmount(*amount)
	if err != nil || value <= 0 {
		return fmt.Errorf("%w: 금액을 입력해주세요", ErrUsage)
	}

	in := core.ExpenseInput{
		Date:        d,
		Category:    *category,
		Amount:      value,
		Place:       strings.TrimSpace(*place),
		Description: strings.TrimSpace(*desc),
	}
	if !a.Store.AddExpense(ctx, in) {
		return errors.New("지출 추가에 실패했습니다")
	}
	fmt.Fprintln(a.Out, "지출이 추가되었습니다!")
	fmt.Fprintln(a.Out)

	fmt.Fprintf(a.Out, "최근 지출 내역 (%d개)\n", recentLimit)
	recent := a.Store.GetAllExpenses(ctx)
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	a.printExpenses(recent)
	return nil
}

func (a *App) list(ctx context.Context, args []string) error {
	fs := a.flagSet("list")
	from := fs.String("from", "", "start date, inclusive")
	to := fs.String("to", "", "end date, inclusive")
	category := fs.String("category", "", "only this category")
	limit := fs.Int("limit", 0, "show at most N records, 0 for all")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *limit < 0 {
		return fmt.Errorf("%w: -limit must not be negative", ErrUsage)
	}

	ranged := *from != "" || *to != ""
	var items []core.Expense
	switch {
	case ranged && *category != "":
		return fmt.Errorf("%w: use either a date range or -category", ErrUsage)
	case ranged:
		start, end, err := a.dateRange(*from, *to)
		if err != nil {
			return err
		}
		items = a.Store.GetExpensesByDateRange(ctx, start, end)
	case *category != "":
		if err := a.checkCategory(*category); err != nil {
			return err
		}
		items = a.Store.GetExpensesByCategory(ctx, *category)
	default:
		items = a.Store.GetAllExpenses(ctx)
	}

	if len(items) == 0 {
		fmt.Fprintln(a.Out, "지출 내역이 없습니다.")
		return nil
	}

	var total int64
	for _, e := range items {
		total += e.Amount
	}
	fmt.Fprintf(a.Out, "총 지출: %s  지출 건수: %d건  평균 지출: %s\n\n",
		core.FormatAmount(total), len(items), core.FormatAmount(total/int64(len(items))))

	if *limit > 0 && len(items) > *limit {
		items = items[:*limit]
	}
	a.printExpenses(items)
	return nil
}

// dateRange fills a missing bound: -to alone looks back 30 days from that
// date, -from alone runs until today.
func (a *App) dateRange(from, to string) (core.Date, core.Date, error) {
	end := a.today()
	if to != "" {
		d, err := core.ParseDate(to)
		if err != nil {
			return "", "", fmt.Errorf("%w: -to: %v", ErrUsage, err)
		}
		end = d
	}
	if from != "" {
		start, err := core.ParseDate(from)
		if err != nil {
			return "", "", fmt.Errorf("%w: -from: %v", ErrUsage, err)
		}
		return start, end, nil
	}
	t, err := end.Time()
	if err != nil {
		return "", "", fmt.Errorf("%w: -to: %v", ErrUsage, err)
	}
	return core.DateOf(t.AddDate(0, 0, -lookbackDays)), end, nil
}

func (a *App) update(ctx context.Context, args []string) error {
	fs := a.flagSet("update")
	id := fs.Int64("id", 0, "expense id")
	date := fs.String("date", "", "new date")
	category := fs.String("category", "", "new category")
	amount := fs.String("amount", "", "new amount")
	place := fs.String("place", "", "new place")
	desc := fs.String("desc", "", "new description")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("%w: -id is required", ErrUsage)
	}

	all := a.Store.GetAllExpenses(ctx)
	i := store.FindByID(all, *id)
	if i < 0 {
		return fmt.Errorf("expense %d not found", *id)
	}
	in := all[i].Input()

	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		if flagErr != nil {
			return
		}
		switch f.Name {
		case "date":
			in.Date, flagErr = core.ParseDate(*date)
		case "category":
			flagErr = a.checkCategory(*category)
			in.Category = *category
		case "amount":
			in.Amount, flagErr = core.ParseAmount(*amount)
		case "place":
			in.Place = strings.TrimSpace(*place)
		case "desc":
			in.Description = strings.TrimSpace(*desc)
		}
	})
	if flagErr != nil {
		if errors.Is(flagErr, ErrUsage) {
			return flagErr
		}
		return fmt.Errorf("%w: %v", ErrUsage, flagErr)
	}

	if !a.Store.UpdateExpense(ctx, *id, in) {
		return errors.New("수정에 실패했습니다")
	}
	fmt.Fprintln(a.Out, "수정되었습니다!")
	return nil
}

func (a *App) delete(ctx context.Context, args []string) error {
	fs := a.flagSet("delete")
	id := fs.Int64("id", 0, "expense id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("%w: -id is required", ErrUsage)
	}
	if !a.Store.DeleteExpense(ctx, *id) {
		return errors.New("삭제에 실패했습니다")
	}
	fmt.Fprintln(a.Out, "삭제되었습니다!")
	return nil
}

func (a *App) stats(ctx context.Context, args []string) error {
	now := a.Now()
	fs := a.flagSet("stats")
	year := fs.Int("year", now.Year(), "year of the monthly summary")
	month := fs.Int("month", int(now.Month()), "month of the monthly summary (1-12)")
	chartDir := fs.String("chart-dir", "", "write PNG bar charts into this directory")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if _, _, err := core.MonthRange(*year, *month); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	var overall, monthly []core.CategorySummary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		overall = a.Store.GetCategorySummary(gctx)
		return nil
	})
	g.Go(func() error {
		monthly = a.Store.GetMonthlySummary(gctx, *year, *month)
		return nil
	})
	_ = g.Wait()

	fmt.Fprintln(a.Out, "전체 통계")
	if len(overall) == 0 {
		fmt.Fprintln(a.Out, "아직 통계 데이터가 없습니다.")
	} else {
		w := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "카테고리\t총 지출\t건수")
		for _, r := range overall {
			fmt.Fprintf(w, "%s\t%s\t%d건\n", r.Category, core.FormatAmount(r.Total), r.Count)
		}
		w.Flush()
	}
	fmt.Fprintln(a.Out)

	fmt.Fprintf(a.Out, "%d년 %d월 통계\n", *year, *month)
	if len(monthly) == 0 {
		fmt.Fprintf(a.Out, "%d년 %d월 지출 내역이 없습니다.\n", *year, *month)
	} else {
		total := core.SummaryTotal(monthly)
		fmt.Fprintf(a.Out, "이번 달 총 지출: %s\n", core.FormatAmount(total))
		w := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "카테고리\t총 지출\t비율")
		for _, r := range monthly {
			fmt.Fprintf(w, "%s\t%s\t%.1f%%\n", r.Category, core.FormatAmount(r.Total), percentage(r.Total, total))
		}
		w.Flush()
	}

	if *chartDir == "" {
		return nil
	}
	return a.writeCharts(ctx, *chartDir, overall, monthly, *year, *month)
}

func (a *App) writeCharts(ctx context.Context, dir string, overall, monthly []core.CategorySummary, year, month int) error {
	var font *truetype.Font
	if a.ChartFont != "" {
		f, err := charts.LoadFont(a.ChartFont)
		if err != nil {
			return err
		}
		font = f
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create chart directory: %w", err)
	}

	logger := applog.FromContext(ctx).WithComponent(applog.ComponentCharts)
	targets := []struct {
		name, title string
		rows        []core.CategorySummary
	}{
		{"summary.png", "all time", overall},
		{fmt.Sprintf("summary-%04d-%02d.png", year, month), fmt.Sprintf("%04d-%02d", year, month), monthly},
	}
	written := make([]string, len(targets))

	var g errgroup.Group
	for i, c := range targets {
		i, c := i, c
		g.Go(func() error {
			img, err := charts.RenderCategoryBars(font, c.title, c.rows)
			if err != nil || img == nil {
				return err
			}
			path := filepath.Join(dir, c.name)
			if err := os.WriteFile(path, img, 0644); err != nil {
				return fmt.Errorf("write chart: %w", err)
			}
			written[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, path := range written {
		if path == "" {
			continue
		}
		logger.InfoContext(ctx, "Chart written", "path", path)
		fmt.Fprintf(a.Out, "chart: %s\n", path)
	}
	return nil
}

func (a *App) categories() error {
	for _, c := range a.Categories {
		fmt.Fprintln(a.Out, c)
	}
	return nil
}

func (a *App) printExpenses(items []core.Expense) {
	if len(items) == 0 {
		fmt.Fprintln(a.Out, "아직 지출 내역이 없습니다.")
		return
	}
	w := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\t날짜\t항목\t금액\t지출처\t내용")
	for _, e := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Date, e.Category, core.FormatAmount(e.Amount), e.Place, e.Description)
	}
	w.Flush()
}

func percentage(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
