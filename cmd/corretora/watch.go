package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JaimeStill/corretora/internal/anotacoes"
	"github.com/JaimeStill/corretora/internal/api"
	"github.com/JaimeStill/corretora/internal/infrastructure"
	"github.com/JaimeStill/corretora/internal/realtime"
	"github.com/JaimeStill/corretora/internal/seguros"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <collection>",
		Short: "Print realtime change events of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection := args[0]
			if !watchable(collection) {
				return fmt.Errorf("unknown collection %q", collection)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			infra, err := infrastructure.New(cfg)
			if err != nil {
				return err
			}
			defer infra.Database.Connection().Close()

			domain := api.NewDomain(api.NewRuntime(cfg, infra), cfg)
			listener := realtime.NewListener(
				cfg.Database.URL(),
				infra.Hub,
				domain.Resolvers(),
				cfg.Realtime.ReconnectDelayDuration(),
				infra.Logger,
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sub := infra.Hub.Subscribe(collection)
			defer sub.Close()

			go func() {
				listener.Run(ctx)
				infra.Hub.Close()
			}()

			return printEvents(ctx, cmd.OutOrStdout(), sub.Events())
		},
	}
}

func watchable(collection string) bool {
	if collection == anotacoes.Collection {
		return true
	}
	_, ok := seguros.Lookup(collection)
	return ok
}

// watched is the part of any record the reducer needs.
type watched struct {
	ID        uuid.UUID `json:"id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// printEvents reduces events into a local list and prints one line per
// change until ctx ends or events closes.
func printEvents(ctx context.Context, w io.Writer, events <-chan realtime.Event) error {
	state := realtime.NewState(nil,
		func(r watched) uuid.UUID { return r.ID },
		func(r watched) time.Time { return r.UpdatedAt },
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-events:
			if !ok {
				return nil
			}

			changed, err := state.Apply(e)
			if err != nil {
				fmt.Fprintf(w, "%s %s %s: %v\n", e.Timestamp.Format(time.RFC3339), e.Action, e.RecordID, err)
				continue
			}

			line := fmt.Sprintf("%s %s %s changed=%t held=%d",
				e.Timestamp.Format(time.RFC3339), e.Action, e.RecordID, changed, state.Len())
			if len(e.Record) > 0 {
				var compact bytes.Buffer
				if err := json.Compact(&compact, e.Record); err != nil {
					line += fmt.Sprintf(" record unreadable: %v", err)
				} else {
					line += " " + compact.String()
				}
			}
			fmt.Fprintln(w, line)
		}
	}
}
