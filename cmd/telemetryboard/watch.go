package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jpalmerr/telemetryboard"
	"github.com/jpalmerr/telemetryboard/config"
	"github.com/spf13/cobra"
)

const commandTimeout = 10 * time.Second

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show the dashboard in the terminal",
	Long: `Poll the backend and show the live readings in the terminal.

No HTTP server is started. Keys:
  c / a / n   toggle the common, arduino or nodemcu relays
  + / -       widen or narrow the history window
  q           quit

Example:
  telemetryboard watch -c config.yaml
  telemetryboard watch -c config.yaml --log-file watch.log`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	watchCmd.Flags().String("log-file", "", "write JSON logs to this file")
	_ = watchCmd.MarkFlagRequired("config")
}

func runWatch(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// the terminal belongs to the TUI
	var logOut io.Writer = io.Discard
	if path, _ := cmd.Flags().GetString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := slog.New(slog.NewJSONHandler(logOut, nil))

	opts, err := config.BuildOptions(cfg)
	if err != nil {
		return fmt.Errorf("failed to build options: %w", err)
	}

	var program *tea.Program
	opts = append(opts,
		telemetryboard.WithHeadless(),
		telemetryboard.WithLogger(logger),
		telemetryboard.WithWidgetCallback(func(w telemetryboard.WidgetUpdate) {
			program.Send(widgetMsg(w))
		}),
	)

	tb, err := telemetryboard.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create TelemetryBoard: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	program = tea.NewProgram(newWatchModel(tb, cfg.Title), tea.WithAltScreen(), tea.WithContext(ctx))

	errChan := make(chan error, 1)
	go func() {
		errChan <- tb.Start(ctx)
	}()

	_, runErr := program.Run()
	stop()
	if err := <-errChan; err != nil {
		return fmt.Errorf("board error: %w", err)
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal error: %w", runErr)
	}
	return nil
}

// relayController is the part of the board the terminal view drives.
type relayController interface {
	SetRelay(ctx context.Context, scope telemetryboard.Scope, on bool) (telemetryboard.CommandOutcome, error)
	SetHistoryWindow(minutes int) error
	HistoryWindow() int
}

type widgetMsg telemetryboard.WidgetUpdate

type relayResultMsg struct {
	scope   telemetryboard.Scope
	on      bool
	outcome telemetryboard.CommandOutcome
	err     error
}

var watchScopes = []struct {
	key   string
	scope telemetryboard.Scope
	label string
}{
	{"c", telemetryboard.ScopeCommon, "Common"},
	{"a", telemetryboard.ScopeArduino, "Arduino"},
	{"n", telemetryboard.ScopeNodeMCU, "NodeMCU"},
}

// watchModel is the Bubble Tea model of the terminal dashboard.
type watchModel struct {
	ctl     relayController
	title   string
	widgets map[string]telemetryboard.WidgetUpdate

	// relays holds the last acknowledged position per scope
	relays   map[telemetryboard.Scope]bool
	status   string
	quitting bool
}

func newWatchModel(ctl relayController, title string) watchModel {
	if title == "" {
		title = "TelemetryBoard"
	}
	return watchModel{
		ctl:     ctl,
		title:   title,
		widgets: make(map[string]telemetryboard.WidgetUpdate),
		relays:  make(map[telemetryboard.Scope]bool),
	}
}

func (m watchModel) Init() tea.Cmd {
	return nil
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case widgetMsg:
		m.widgets[msg.ID] = telemetryboard.WidgetUpdate(msg)

	case relayResultMsg:
		switch {
		case msg.err != nil:
			m.status = msg.err.Error()
		case msg.outcome == telemetryboard.OutcomeAcknowledged:
			m.relays[msg.scope] = msg.on
			m.status = fmt.Sprintf("%s relay %s", msg.scope, onOff(msg.on))
		default:
			m.status = fmt.Sprintf("%s relay command %s", msg.scope, msg.outcome)
		}
	}
	return m, nil
}

func (m watchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "+", "=":
		m.status = m.shiftWindow(2)
		return m, nil

	case "-":
		m.status = m.shiftWindow(-2)
		return m, nil

	default:
		for _, s := range watchScopes {
			if key == s.key {
				return m, m.toggle(s.scope)
			}
		}
	}
	return m, nil
}

// shiftWindow doubles or halves the history window.
func (m watchModel) shiftWindow(factor int) string {
	cur := m.ctl.HistoryWindow()
	next := cur * factor
	if factor < 0 {
		next = cur / -factor
	}
	if err := m.ctl.SetHistoryWindow(next); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("history window %d minutes", next)
}

func (m watchModel) toggle(scope telemetryboard.Scope) tea.Cmd {
	on := !m.relays[scope]
	ctl := m.ctl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		outcome, err := ctl.SetRelay(ctx, scope, on)
		return relayResultMsg{scope: scope, on: on, outcome: outcome, err: err}
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)
	labelStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	valueStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	connectedStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	disconnectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	pendingStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	boxStyle          = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")).
				Padding(0, 1)
)

func (m watchModel) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render(m.title))
	s.WriteString("\n\n")

	banner := m.widgets["connection-status"]
	bannerStyle := disconnectedStyle
	if banner.Class == "status-connected" {
		bannerStyle = connectedStyle
	}
	s.WriteString(bannerStyle.Render(orWaiting(banner.Text)))
	s.WriteString("  ")
	s.WriteString(labelStyle.Render(m.widgets["nodemcu-ip-display"].Text))
	s.WriteString("\n\n")

	sensors := lipgloss.JoinVertical(lipgloss.Left,
		m.row("Arduino IR1", "arduino_ir1"),
		m.row("Arduino IR2", "arduino_ir2"),
		m.row("NodeMCU IR1", "nodemcu_ir1"),
		m.row("NodeMCU IR2", "nodemcu_ir2"),
		m.row("Latency", "latency_diff"),
	)
	gauges := lipgloss.JoinVertical(lipgloss.Left,
		m.gaugeRow("Speed", "speed", "speed-gauge", "km/h"),
		m.gaugeRow("Piezo", "piezo-value", "piezo-gauge", ""),
	)
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxStyle.Render(sensors), " ", boxStyle.Render(gauges)))
	s.WriteString("\n")

	var relays []string
	for _, sc := range watchScopes {
		relays = append(relays, m.relayCell(sc.key, sc.label, sc.scope))
	}
	s.WriteString(boxStyle.Render(strings.Join(relays, "   ")))
	s.WriteString("\n")

	s.WriteString(labelStyle.Render(fmt.Sprintf("history %d min  [c/a/n] relays  [+/-] window  [q] quit", m.ctl.HistoryWindow())))
	if m.status != "" {
		s.WriteString("\n")
		s.WriteString(valueStyle.Render(m.status))
	}
	return s.String()
}

func (m watchModel) row(label, id string) string {
	return labelStyle.Render(fmt.Sprintf("%-12s", label)) + valueStyle.Render(orWaiting(m.widgets[id].Text))
}

func (m watchModel) gaugeRow(label, valueID, gaugeID, unit string) string {
	value := orWaiting(m.widgets[valueID].Text)
	if unit != "" && m.widgets[valueID].Text != "" {
		value += " " + unit
	}
	style := valueStyle
	if c := m.widgets[gaugeID].GaugeColor; c != "" {
		style = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(c))
	}
	return labelStyle.Render(fmt.Sprintf("%-7s", label)) + style.Render(value)
}

func (m watchModel) relayCell(key, label string, scope telemetryboard.Scope) string {
	text := fmt.Sprintf("[%s] %s %s", key, label, onOff(m.relays[scope]))
	if w, ok := m.widgets[switchID(scope)]; ok && w.Disabled {
		return pendingStyle.Render(text + " …")
	}
	return valueStyle.Render(text)
}

func switchID(scope telemetryboard.Scope) string {
	return string(scope) + "Switch"
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func orWaiting(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
