package bot

import (
	"context"
	"fmt"
)

// Run opens the gateway, registers commands, starts the sweeps and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.Dispatcher.Attach(b.Session)

	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	if err := b.RefreshCommands(); err != nil {
		// Existing commands keep working; the bot stays up without the refresh.
		b.Logger.Error("failed to register commands", "error", err)
	}

	b.Scheduler.Start(ctx)

	b.Logger.Info("bot is now running, press CTRL-C to exit", "jobs", b.Scheduler.Jobs())
	b.Audit.LogInfo("System", "Startup", "Bot has started successfully.")

	<-ctx.Done()
	return nil
}
