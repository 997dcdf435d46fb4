// Package cli は社員名簿のコマンドライン入出力を担います。
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ogurasousui/codex-roster/internal/core/employee"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Usage は引数なしで起動した場合に表示する書式です。
const Usage = `Usage: roster [-list | -titles | -list "search_term" | -add]`

const (
	msgInvalidCommand = "Invalid command. Use -list, -titles, or -add"
	msgAppError       = "Application error"
)

// Opener は名簿サービスを開き、解放用の関数と共に返します。
type Opener func(ctx context.Context) (employee.UseCase, func(), error)

// App はコマンドの解釈と実行を行います。
type App struct {
	open   Opener
	stdin  io.Reader
	stdout io.Writer
	log    *zap.Logger

	svc   employee.UseCase
	close func()
}

// NewApp は App を生成します。log が nil の場合は出力しません。
func NewApp(open Opener, stdin io.Reader, stdout io.Writer, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{open: open, stdin: stdin, stdout: stdout, log: log}
}

// Run は args を実行し、プロセスの終了コードを返します。
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 || isHelp(args[0]) {
		fmt.Fprintln(a.stdout, Usage)
		return 0
	}

	normalized, ok := normalizeArgs(args)
	if !ok {
		fmt.Fprintln(a.stdout, msgInvalidCommand)
		return 0
	}

	root := a.rootCommand()
	root.SetArgs(normalized)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stdout)

	if err := root.ExecuteContext(ctx); err != nil {
		a.log.Error("command failed", zap.Strings("args", args), zap.Error(err))
		fmt.Fprintln(a.stdout, msgAppError)
		return 1
	}
	return 0
}

// normalizeArgs は -list 形式の指定をサブコマンド名に変換します。
func normalizeArgs(args []string) ([]string, bool) {
	command := strings.ToLower(strings.TrimSpace(args[0]))
	command = strings.TrimLeft(command, "-")

	switch command {
	case "list", "titles", "add":
	default:
		return nil, false
	}

	out := make([]string, 0, len(args))
	out = append(out, command)
	if command == "list" {
		// 検索語は "-" で始まっていてもフラグとして扱わない
		out = append(out, "--")
	}
	return append(out, args[1:]...), true
}

func isHelp(arg string) bool {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "-h", "--help", "help", "-help":
		return true
	}
	return false
}

func (a *App) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "roster",
		Short:         "Manage the employee roster and salary assignments",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeFn, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			a.svc = svc
			a.close = closeFn
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.close != nil {
				a.close()
			}
		},
	}
	root.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), Usage)
	})
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		&cobra.Command{
			Use:   "list [search_term]",
			Short: "List employees with an active salary assignment, optionally filtered by name or title",
			Args:  cobra.ArbitraryArgs,
			RunE:  a.runList,
		},
		&cobra.Command{
			Use:   "titles",
			Short: "Show salary ranges for active titles",
			Args:  cobra.ArbitraryArgs,
			RunE:  a.runTitles,
		},
		&cobra.Command{
			Use:   "add",
			Short: "Add an employee interactively",
			Args:  cobra.ArbitraryArgs,
			RunE:  a.runAdd,
		},
	)
	return root
}

func (a *App) runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	term := ""
	if len(args) > 0 {
		term = strings.TrimSpace(args[0])
	}

	result, err := a.svc.Search(ctx, term)
	if err != nil {
		if errors.Is(err, employee.ErrSearchTermTooLong) {
			fmt.Fprintln(out, "Search term too long")
			return nil
		}
		a.log.Error("list employees", zap.String("kind", string(employee.ClassifySearch(term))), zap.Error(err))
		fmt.Fprintln(out, listFailureMessage(term))
		return nil
	}

	a.log.Debug("listed employees", zap.String("kind", string(result.Kind)), zap.Int("rows", len(result.Rows)))

	switch result.Kind {
	case employee.SearchAll:
		renderRoster(out, result.Rows)
	case employee.SearchTitle:
		if len(result.Rows) == 0 {
			fmt.Fprintln(out, "No employees found with that title")
			return nil
		}
		renderSummary(out, result.Rows)
	default:
		if len(result.Rows) == 0 {
			fmt.Fprintln(out, "No employees found")
			return nil
		}
		renderSummary(out, result.Rows)
	}
	return nil
}

func (a *App) runTitles(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	ranges, err := a.svc.TitleRanges(cmd.Context())
	if err != nil {
		a.log.Error("title salary ranges", zap.Error(err))
		fmt.Fprintln(out, "Error retrieving title data")
		return nil
	}

	if len(ranges) == 0 {
		fmt.Fprintln(out, "No active titles found")
		return nil
	}
	renderTitleRanges(out, ranges)
	return nil
}

func (a *App) runAdd(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	prompter := newLinePrompter(cmd.InOrStdin(), out)

	hired, err := employee.NewHireWorkflow(a.svc, prompter).Run(cmd.Context())
	if err != nil {
		a.log.Warn("add employee aborted", zap.Error(err))
		fmt.Fprintln(out, addFailureMessage(err))
		return nil
	}

	a.log.Info("employee added",
		zap.Int64("employee_id", hired.Employee.ID),
		zap.Int64("assignment_id", hired.Assignment.ID))
	fmt.Fprintln(out, "Employee added successfully!")
	return nil
}

func listFailureMessage(term string) string {
	switch employee.ClassifySearch(term) {
	case employee.SearchTitle:
		return "Error searching by title"
	case employee.SearchName:
		return "Error searching employees"
	default:
		return "Error retrieving employee data"
	}
}

func addFailureMessage(err error) string {
	switch {
	case errors.Is(err, employee.ErrDuplicateSSN):
		return "Error: SSN already exists"
	case errors.Is(err, employee.ErrTooManyInvalidAttempts):
		return "Error: Too many invalid attempts. Employee not added."
	case errors.Is(err, io.EOF):
		return "Error: Input ended before all fields were entered"
	default:
		return "Error: Failed to add employee"
	}
}

type linePrompter struct {
	r *bufio.Reader
	w io.Writer
}

func newLinePrompter(r io.Reader, w io.Writer) *linePrompter {
	return &linePrompter{r: bufio.NewReader(r), w: w}
}

func (p *linePrompter) Ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fmt.Fprint(p.w, prompt)
	line, err := p.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *linePrompter) Reject(_ context.Context, _, reason string) {
	fmt.Fprintln(p.w, reason)
}
