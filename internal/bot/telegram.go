package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"taa-signals/internal/domain"
	"taa-signals/internal/preferences"
	"taa-signals/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

type SignalSource interface {
	SignalsOrDemo(ctx context.Context, prefs preferences.Preferences) []domain.TrendSignal
}

type BacktestRunner interface {
	Run(ctx context.Context, req service.BacktestRequest) domain.BacktestResult
}

type PreferenceLoader interface {
	Load(ctx context.Context, userID string) (preferences.Preferences, error)
}

// Commands answers chat commands. The chat's own id is used as the user id
// unless one is given as the last argument.
type Commands struct {
	Signals   SignalSource
	Backtests BacktestRunner
	Prefs     PreferenceLoader
	Timeout   time.Duration
}

func StartTelegramBot(token string, logger *zap.Logger, cmds *Commands) (*tele.Bot, error) {
	if token == "" {
		logger.Info("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil, nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("create Telegram bot: %w", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})
	b.Handle("/signals", func(c tele.Context) error {
		return c.Send(cmds.SignalsReply(chatUser(c), c.Args()))
	})
	b.Handle("/backtest", func(c tele.Context) error {
		return c.Send(cmds.BacktestReply(chatUser(c), c.Args()))
	})

	logger.Info("Telegram bot started")
	go b.Start()
	return b, nil
}

func chatUser(c tele.Context) string {
	if chat := c.Chat(); chat != nil {
		return strconv.FormatInt(chat.ID, 10)
	}
	return ""
}

func (c *Commands) withTimeout() (context.Context, context.CancelFunc) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

func (c *Commands) load(ctx context.Context, userID string) preferences.Preferences {
	prefs, err := c.Prefs.Load(ctx, userID)
	if err != nil {
		return preferences.Default()
	}
	return prefs
}

// SignalsReply formats "/signals [user]".
func (c *Commands) SignalsReply(chatUserID string, args []string) string {
	ctx, cancel := c.withTimeout()
	defer cancel()

	userID := chatUserID
	if len(args) > 0 {
		userID = args[len(args)-1]
	}
	prefs := c.load(ctx, userID)
	signals := c.Signals.SignalsOrDemo(ctx, prefs)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Trend signals (%d-Month %s)\n", prefs.Period, prefs.TrendType)
	if len(signals) > 0 && signals[0].IsMock {
		sb.WriteString("DEMO DATA: live prices unavailable\n")
	}
	for _, s := range signals {
		fmt.Fprintf(&sb, "%s %s: $%.2f vs $%.2f (%+.2f%%)\n", s.Symbol, s.Status, s.Price, s.Trend, s.Buffer)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// BacktestReply formats "/backtest [years] [user]".
func (c *Commands) BacktestReply(chatUserID string, args []string) string {
	ctx, cancel := c.withTimeout()
	defer cancel()

	req := service.BacktestRequest{Years: 10}
	userID := chatUserID
	for _, a := range args {
		if n, err := strconv.Atoi(a); err == nil {
			if n != 1 && n != 3 && n != 10 {
				return "Usage: /backtest [1|3|10] [user_id]"
			}
			req.Years = n
			continue
		}
		userID = a
	}
	req.Prefs = c.load(ctx, userID)

	res := c.Backtests.Run(ctx, req)
	if res.Error != "" {
		return "Backtest failed: " + res.Error
	}
	p, b := res.Performance, res.BenchmarkPerformance
	return fmt.Sprintf(
		"Backtest %dy (%s, K=%d)\nCAGR: %.2f%% vs %.2f%%\nSharpe: %.2f vs %.2f\nMax drawdown: %.2f%% vs %.2f%%\nVolatility: %.2f%% vs %.2f%%",
		req.Years, req.Prefs.Rebalance, req.Prefs.Concentration,
		p.CAGR, b.CAGR, p.Sharpe, b.Sharpe, p.MaxDrawdown, b.MaxDrawdown, p.Volatility, b.Volatility,
	)
}
