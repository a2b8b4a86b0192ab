// Package main provides the CLI entrypoint for spelldaily.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"spelldaily/internal/config"
	"spelldaily/internal/model"
	"spelldaily/internal/puzzle"
	"spelldaily/internal/record"
	"spelldaily/internal/remote"
	"spelldaily/internal/session"
	"spelldaily/internal/stats"
	"spelldaily/internal/statsui"
	"spelldaily/internal/store"
	"spelldaily/internal/tui"
)

const (
	defaultUser        = "player"
	defaultTimeoutSecs = 5
	defaultHistoryLast = 10
)

var (
	playUser      string
	playDate      string
	playNew       bool
	playServer    string
	playPuzzleDir string

	statsUser   string
	statsServer string

	historyUser   string
	historyLast   int
	historyServer string

	leaderboardServer string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "spelldaily",
		Short:         "Daily word puzzle in the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().StringVar(&playUser, "user", "", "player name (default: OS user)")
	rootCmd.Flags().StringVar(&playDate, "date", "", "puzzle date (YYYY-MM-DD, default: today)")
	rootCmd.Flags().BoolVar(&playNew, "new", false, "start a fresh random puzzle instead of today's")
	rootCmd.Flags().StringVar(&playServer, "server", "", "sync server base URL")
	rootCmd.Flags().StringVar(&playPuzzleDir, "puzzle-dir", "", "directory with puzzle files")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newPuzzlesCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newLeaderboardCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "user", &playUser, fileCfg.Game.User)
	applyStringConfig(cmd, "puzzle-dir", &playPuzzleDir, fileCfg.Game.PuzzleDir)
	applyStringConfig(cmd, "server", &playServer, fileCfg.Sync.ServerURL)

	userID := resolveUser(playUser)
	puzzleDir := playPuzzleDir
	if puzzleDir == "" {
		puzzleDir = config.DefaultPuzzleDir()
	}

	key := playDate
	if key == "" {
		key = time.Now().Format(model.DateLayout)
	} else if _, err := time.ParseInLocation(model.DateLayout, key, time.Local); err != nil {
		return fmt.Errorf("invalid --date value: %w", err)
	}

	provider := puzzle.NewDir(puzzleDir)
	var p model.Puzzle
	if playNew {
		p, err = provider.ForceNew()
	} else {
		p, err = provider.Get(key)
	}
	if err != nil {
		return puzzleLoadError(key, puzzleDir, err)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	records := newRecordStore(st, playServer, fileCfg)
	defer records.Close()

	sess := session.New(userID, p)
	prev, err := records.Load(context.Background(), userID, p.ID)
	if err != nil {
		logErrf("failed to load saved progress: %v\n", err)
	}
	sess.Resume(prev)

	gameModel := tui.NewModel(sess, records, provider)
	program := tea.NewProgram(gameModel, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show progress and streaks",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsUser, "user", "", "player name (default: OS user)")
	cmd.Flags().StringVar(&statsServer, "server", "", "sync server base URL")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "user", &statsUser, fileCfg.Game.User)
	applyStringConfig(cmd, "server", &statsServer, fileCfg.Sync.ServerURL)
	userID := resolveUser(statsUser)

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	records := newRecordStore(st, statsServer, fileCfg)
	defer records.Close()

	// Piped output gets a plain summary instead of the TUI.
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return printSummary(cmd, records, userID)
	}

	var board statsui.LeaderboardSource
	if client := newRemoteClient(statsServer, fileCfg); client != nil {
		board = client
	}

	statsModel := statsui.NewModel(records, board, userID)
	program := tea.NewProgram(statsModel, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func printSummary(cmd *cobra.Command, records *record.Store, userID string) error {
	ctx := context.Background()
	history, err := records.History(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	snapshot, err := records.Stats(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to compute stats: %w", err)
	}
	if err := stats.RenderSummary(cmd.OutOrStdout(), snapshot, history); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print recent games",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyUser, "user", "", "player name (default: OS user)")
	cmd.Flags().IntVar(&historyLast, "last", defaultHistoryLast, "limit to last N games (0 for all)")
	cmd.Flags().StringVar(&historyServer, "server", "", "sync server base URL")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "user", &historyUser, fileCfg.Game.User)
	applyStringConfig(cmd, "server", &historyServer, fileCfg.Sync.ServerURL)
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	userID := resolveUser(historyUser)

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	records := newRecordStore(st, historyServer, fileCfg)
	defer records.Close()

	history, err := records.History(context.Background(), userID)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if remoteHistory, rerr := records.RemoteHistory(context.Background(), userID); rerr != nil {
		logErrf("failed to fetch remote history: %v\n", rerr)
	} else if remoteHistory != nil {
		history = stats.MergeRecords(history, remoteHistory)
	}

	var buf bytes.Buffer
	if err := stats.RenderHistory(&buf, history, historyLast); err != nil {
		return fmt.Errorf("failed to render history: %w", err)
	}
	return writeClamped(cmd, buf.String())
}

func newLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print cross-player standings",
		Args:  cobra.NoArgs,
		RunE:  runLeaderboardCmd,
	}
	cmd.Flags().StringVar(&leaderboardServer, "server", "", "sync server base URL")
	return cmd
}

func runLeaderboardCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "server", &leaderboardServer, fileCfg.Sync.ServerURL)

	client := newRemoteClient(leaderboardServer, fileCfg)
	if client == nil {
		return fmt.Errorf("leaderboard requires a sync server (set --server or server-url in config)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout(fileCfg))
	defer cancel()
	entries, err := client.Leaderboard(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch leaderboard: %w", err)
	}

	var buf bytes.Buffer
	if err := stats.RenderLeaderboard(&buf, entries); err != nil {
		return fmt.Errorf("failed to render leaderboard: %w", err)
	}
	return writeClamped(cmd, buf.String())
}

func newPuzzlesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "puzzles",
		Short: "List installed puzzles",
		Args:  cobra.NoArgs,
		RunE:  runPuzzlesCmd,
	}
	cmd.Flags().StringVar(&playPuzzleDir, "puzzle-dir", "", "directory with puzzle files")
	return cmd
}

func runPuzzlesCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "puzzle-dir", &playPuzzleDir, fileCfg.Game.PuzzleDir)
	puzzleDir := playPuzzleDir
	if puzzleDir == "" {
		puzzleDir = config.DefaultPuzzleDir()
	}

	ids, err := puzzle.NewDir(puzzleDir).List()
	if err != nil {
		logErrf("Put puzzle files under: %s\n", puzzleDir)
		return err
	}
	for _, id := range ids {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), id); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// newRecordStore wires the local SQLite store with an optional remote
// sync client behind the combined record store.
func newRecordStore(st *store.Store, serverURL string, fileCfg config.FileConfig) *record.Store {
	var rem record.Remote
	if client := newRemoteClient(serverURL, fileCfg); client != nil {
		rem = client
	}
	return record.New(st, rem, record.WithTimeout(syncTimeout(fileCfg)))
}

func newRemoteClient(serverURL string, fileCfg config.FileConfig) *remote.Client {
	url := strings.TrimSpace(serverURL)
	if url == "" {
		return nil
	}
	return remote.New(url, syncTimeout(fileCfg))
}

func syncTimeout(fileCfg config.FileConfig) time.Duration {
	secs := defaultTimeoutSecs
	if fileCfg.Sync.TimeoutSeconds != nil && *fileCfg.Sync.TimeoutSeconds > 0 {
		secs = *fileCfg.Sync.TimeoutSeconds
	}
	return time.Duration(secs) * time.Second
}

func resolveUser(name string) string {
	name = strings.TrimSpace(name)
	if name != "" {
		return name
	}
	if current, err := user.Current(); err == nil && current.Username != "" {
		return current.Username
	}
	return defaultUser
}

// writeClamped truncates table lines to the terminal width when stdout
// is a terminal, so wide tables do not wrap mid-row.
func writeClamped(cmd *cobra.Command, out string) error {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if width, _, err := term.GetSize(fd); err == nil && width > 0 {
			lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
			for i, line := range lines {
				runes := []rune(line)
				if len(runes) > width {
					lines[i] = string(runes[:width])
				}
			}
			out = strings.Join(lines, "\n") + "\n"
		}
	}
	if _, err := fmt.Fprint(cmd.OutOrStdout(), out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func puzzleLoadError(key, dir string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load puzzle: %v", err),
		fmt.Sprintf("expected puzzle at: %s", filepath.Join(dir, key+".toml")),
		"List installed puzzles: spelldaily puzzles",
		"Play a random installed puzzle: spelldaily --new",
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# spelldaily configuration
# Uncomment a value to enable it. CLI flags override config values.

[game]
# user = %q              # Player name (default: OS user)
# puzzle-dir = ""        # Directory with puzzle files

[sync]
# server-url = ""        # Sync server base URL, e.g. http://localhost:8787
# timeout-seconds = %d   # Sync request timeout
`,
		defaultUser,
		defaultTimeoutSecs,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
