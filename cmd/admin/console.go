// Package admin implements the operator console for inspecting and driving guild lotteries.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"lotteryledger/application"
	"lotteryledger/bot/common"
	"lotteryledger/domain/entities"

	"github.com/pterm/pterm"
)

var (
	errNoGuild   = errors.New("no guild selected, use: guild <id>")
	errQuit      = errors.New("quit")
	errNoLottery = errors.New("guild has no lottery")
)

// Console runs admin commands against one guild at a time
type Console struct {
	uowFactory application.UnitOfWorkFactory
	guildID    int64
}

// NewConsole creates a console with no guild selected
func NewConsole(uowFactory application.UnitOfWorkFactory) *Console {
	return &Console{uowFactory: uowFactory}
}

// Execute runs a single command line
func (c *Console) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	name, args := strings.ToLower(fields[0]), fields[1:]
	switch name {
	case "help":
		c.printHelp()
		return nil
	case "exit", "quit":
		return errQuit
	case "guild":
		return c.selectGuild(args)
	case "lotteries":
		return c.listLotteries(ctx)
	}

	if c.guildID == 0 {
		return errNoGuild
	}

	switch name {
	case "status":
		return c.status(ctx)
	case "participants":
		return c.participants(ctx)
	case "history":
		limit, err := optionalInt(args, 0, common.DefaultHistoryLimit)
		if err != nil {
			return err
		}
		return c.history(ctx, int(limit))
	case "balance":
		if len(args) != 1 {
			return errors.New("usage: balance <discord id>")
		}
		discordID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid discord id: %w", err)
		}
		return c.balance(ctx, discordID)
	case "start":
		return c.start(ctx)
	case "reset":
		return c.reset(ctx, args)
	default:
		return fmt.Errorf("unknown command %q, type help", name)
	}
}

func (c *Console) printHelp() {
	_ = pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Command", "Description"},
		{"guild <id>", "Select the guild to operate on"},
		{"lotteries", "List every guild's lottery"},
		{"status", "Show the selected guild's lottery"},
		{"participants", "List ticket holders of the current round"},
		{"history [n]", "Show the last n settlements"},
		{"balance <discord id>", "Show a member's balance and recent changes"},
		{"start", "Open ticket sales as the owner"},
		{"reset [price] [capacity]", "Start a new round as the owner, keeping unset values"},
		{"exit", "Leave the console"},
	}).Render()
}

func (c *Console) selectGuild(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: guild <id>")
	}
	guildID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || guildID <= 0 {
		return fmt.Errorf("invalid guild id %q", args[0])
	}

	c.guildID = guildID
	pterm.Success.Printfln("Selected guild %d", guildID)
	return nil
}

// withUnitOfWork runs fn for the selected guild; commit only happens when write is set
func (c *Console) withUnitOfWork(ctx context.Context, guildID int64, write bool, fn func(uow application.UnitOfWork) error) error {
	uow := c.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		return err
	}

	if write {
		if err := uow.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
	}
	return nil
}

func (c *Console) loadLottery(ctx context.Context) (*entities.Lottery, error) {
	var lottery *entities.Lottery
	err := c.withUnitOfWork(ctx, c.guildID, false, func(uow application.UnitOfWork) error {
		var err error
		lottery, err = application.NewLotteryService(uow, c.guildID).GetLottery(ctx)
		return err
	})
	if errors.Is(err, entities.ErrLotteryNotFound) {
		return nil, errNoLottery
	}
	return lottery, err
}

func (c *Console) listLotteries(ctx context.Context) error {
	var lotteries []*entities.Lottery
	err := c.withUnitOfWork(ctx, c.guildID, false, func(uow application.UnitOfWork) error {
		var err error
		lotteries, err = uow.LotteryRepository().ListAll(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to list lotteries: %w", err)
	}

	if len(lotteries) == 0 {
		pterm.Info.Println("No lotteries yet")
		return nil
	}

	data := pterm.TableData{{"Guild", "Round", "State", "Price", "Capacity", "Owner"}}
	for _, l := range lotteries {
		data = append(data, []string{
			strconv.FormatInt(l.GuildID, 10),
			strconv.FormatInt(l.Round, 10),
			string(l.State),
			common.FormatBalance(l.TicketPrice),
			strconv.FormatInt(l.MaxTicketCount, 10),
			strconv.FormatInt(l.OwnerDiscordID, 10),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func (c *Console) status(ctx context.Context) error {
	lottery, err := c.loadLottery(ctx)
	if err != nil {
		return err
	}

	pterm.DefaultBox.WithTitle(fmt.Sprintf("Guild %d - round %d", lottery.GuildID, lottery.Round)).Println(describeLottery(lottery))
	return nil
}

func describeLottery(lottery *entities.Lottery) string {
	lines := []string{
		fmt.Sprintf("State:   %s", common.FormatLotteryState(lottery.State)),
		fmt.Sprintf("Owner:   %d", lottery.OwnerDiscordID),
		fmt.Sprintf("Price:   %s bits", common.FormatBalance(lottery.TicketPrice)),
		fmt.Sprintf("Tickets: %d / %d", lottery.TicketCount(), lottery.MaxTicketCount),
		fmt.Sprintf("Pool:    %s bits", common.FormatBalance(lottery.Stakes())),
	}
	if lottery.HasMessage() {
		lines = append(lines, fmt.Sprintf("Message: %d in channel %d", *lottery.MessageID, *lottery.ChannelID))
	}
	return strings.Join(lines, "\n")
}

func (c *Console) participants(ctx context.Context) error {
	var lottery *entities.Lottery
	var summary []*entities.LotteryParticipantInfo
	err := c.withUnitOfWork(ctx, c.guildID, false, func(uow application.UnitOfWork) error {
		var err error
		lottery, err = application.NewLotteryService(uow, c.guildID).GetLottery(ctx)
		if err != nil {
			return err
		}
		summary, err = uow.LotteryTicketRepository().GetParticipantSummary(ctx, lottery.ID, lottery.Round)
		return err
	})
	if errors.Is(err, entities.ErrLotteryNotFound) {
		return errNoLottery
	}
	if err != nil {
		return err
	}

	if len(summary) == 0 {
		pterm.Info.Println("No tickets sold this round")
		return nil
	}

	return pterm.DefaultTable.WithHasHeader().WithData(participantTable(summary, lottery.TicketPrice)).Render()
}

// participantTable lists ticket holders in order of their first purchase
func participantTable(summary []*entities.LotteryParticipantInfo, ticketPrice int64) pterm.TableData {
	data := pterm.TableData{{"Discord ID", "Tickets", "Paid"}}
	for _, p := range summary {
		data = append(data, []string{
			strconv.FormatInt(p.DiscordID, 10),
			strconv.FormatInt(p.TicketCount, 10),
			common.FormatBalance(p.TicketCount * ticketPrice),
		})
	}
	return data
}

func (c *Console) history(ctx context.Context, limit int) error {
	if limit < 1 || limit > common.MaxHistoryLimit {
		return fmt.Errorf("limit must be between 1 and %d", common.MaxHistoryLimit)
	}

	var settlements []*entities.LotterySettlement
	err := c.withUnitOfWork(ctx, c.guildID, false, func(uow application.UnitOfWork) error {
		var err error
		settlements, err = application.NewLotteryService(uow, c.guildID).GetSettlements(ctx, limit)
		return err
	})
	if errors.Is(err, entities.ErrLotteryNotFound) {
		return errNoLottery
	}
	if err != nil {
		return err
	}

	if len(settlements) == 0 {
		pterm.Info.Println("No rounds settled yet")
		return nil
	}

	data := pterm.TableData{{"Round", "Payee", "Amount", "Tickets", "Settled"}}
	for _, s := range settlements {
		data = append(data, []string{
			strconv.FormatInt(s.Round, 10),
			strconv.FormatInt(s.PayeeDiscordID, 10),
			common.FormatBalance(s.Amount),
			strconv.FormatInt(s.TicketCount, 10),
			s.SettledAt.Format("2006-01-02 15:04:05"),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func (c *Console) balance(ctx context.Context, discordID int64) error {
	var user *entities.User
	var history []*entities.BalanceHistory
	err := c.withUnitOfWork(ctx, c.guildID, false, func(uow application.UnitOfWork) error {
		var err error
		user, err = uow.UserRepository().GetByDiscordID(ctx, discordID)
		if err != nil {
			return err
		}
		if user == nil {
			return entities.ErrUserNotFound
		}
		history, err = uow.BalanceHistoryRepository().GetByUser(ctx, discordID, common.DefaultHistoryLimit)
		return err
	})
	if err != nil {
		return err
	}

	pterm.Info.Printfln("%s (%d): %s bits", user.Username, user.DiscordID, common.FormatBalance(user.Balance))
	if len(history) == 0 {
		return nil
	}

	data := pterm.TableData{{"Change", "Balance", "Type", "When"}}
	for _, h := range history {
		data = append(data, []string{
			common.FormatBalance(h.ChangeAmount),
			common.FormatBalance(h.BalanceAfter),
			h.GetTransactionDescription(),
			h.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// start opens ticket sales on behalf of the lottery owner
func (c *Console) start(ctx context.Context) error {
	lottery, err := c.loadLottery(ctx)
	if err != nil {
		return err
	}

	err = c.withUnitOfWork(ctx, c.guildID, true, func(uow application.UnitOfWork) error {
		lottery, err = application.NewLotteryService(uow, c.guildID).StartLottery(ctx, lottery.OwnerDiscordID)
		return err
	})
	if err != nil {
		return err
	}

	pterm.Success.Printfln("Round %d started", lottery.Round)
	return nil
}

// reset starts a new round on behalf of the owner; omitted values keep the previous round's
func (c *Console) reset(ctx context.Context, args []string) error {
	lottery, err := c.loadLottery(ctx)
	if err != nil {
		return err
	}

	price, err := optionalInt(args, 0, lottery.TicketPrice)
	if err != nil {
		return err
	}
	capacity, err := optionalInt(args, 1, lottery.MaxTicketCount)
	if err != nil {
		return err
	}

	err = c.withUnitOfWork(ctx, c.guildID, true, func(uow application.UnitOfWork) error {
		lottery, err = application.NewLotteryService(uow, c.guildID).ResetLottery(ctx, lottery.OwnerDiscordID, price, capacity)
		return err
	})
	if err != nil {
		return err
	}

	pterm.Success.Printfln("Round %d created: %s bits per ticket, %d tickets", lottery.Round, common.FormatBalance(lottery.TicketPrice), lottery.MaxTicketCount)
	return nil
}

func optionalInt(args []string, index int, fallback int64) (int64, error) {
	if len(args) <= index {
		return fallback, nil
	}
	v, err := strconv.ParseInt(args[index], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", args[index])
	}
	return v, nil
}
