package admin

import (
	"context"
	"errors"
	"fmt"

	"lotteryledger/config"
	"lotteryledger/database"
	"lotteryledger/domain/interfaces"
	"lotteryledger/infrastructure"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
	log "github.com/sirupsen/logrus"
)

// Run connects to the database and reads commands until exit or ctx is cancelled
func Run(ctx context.Context) error {
	cfg := config.Get()

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Owner actions taken here still reach the bot when NATS is configured
	var publisher interfaces.EventPublisher = infrastructure.NewNoopEventPublisher()
	if cfg.NATSServers != "" {
		natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			log.Warnf("NATS unavailable, lottery events from the console will not be published: %v", err)
		} else {
			defer natsClient.Close()
			publisher = infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper())
		}
	}

	console := NewConsole(infrastructure.NewUnitOfWorkFactory(db, publisher))

	title, _ := pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("Lottery", pterm.FgYellow.ToStyle()),
		putils.LettersFromStringWithStyle("Ledger", pterm.FgDarkGray.ToStyle()),
	).Srender()
	pterm.Print(title)
	pterm.Info.Println("Type help for commands")

	for ctx.Err() == nil {
		line, err := pterm.DefaultInteractiveTextInput.WithDefaultText("admin").Show()
		if err != nil {
			return fmt.Errorf("failed to read command: %w", err)
		}

		if err := console.Execute(ctx, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			pterm.Error.Println(err.Error())
		}
	}

	return nil
}
