package picker

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Run drives c without a terminal. It executes cmd and every command the
// controller returns, feeding each message back into Update until no command
// is left. observe, when set, sees every message before Update does.
func Run(ctx context.Context, c *Controller, cmd tea.Cmd, observe func(tea.Msg)) error {
	msgs := make(chan tea.Msg)
	pending := 0

	launch := func(cmd tea.Cmd) {
		if cmd == nil {
			return
		}
		pending++
		go func() {
			msg := cmd()
			select {
			case msgs <- msg:
			case <-ctx.Done():
			}
		}()
	}

	launch(cmd)
	for pending > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-msgs:
			pending--
			switch msg := msg.(type) {
			case nil:
				continue
			case tea.BatchMsg:
				for _, sub := range msg {
					launch(sub)
				}
				continue
			}
			if observe != nil {
				observe(msg)
			}
			launch(c.Update(msg))
		}
	}
	return nil
}
