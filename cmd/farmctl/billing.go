package main

import (
	"errors"
	"fmt"

	"github.com/aussiebroadwan/farmstead/pkg/bus"
	"github.com/aussiebroadwan/farmstead/pkg/farmsdk"
	"github.com/aussiebroadwan/farmstead/pkg/idx"
	"github.com/spf13/cobra"
)

func newBillingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billing",
		Short: "Billing integration tooling",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newBillingEmitCommand())
	return cmd
}

// newBillingEmitCommand sends a plan-change event the way the billing
// provider would, over JetStream or the webhook.
func newBillingEmitCommand() *cobra.Command {
	var (
		ev      farmsdk.BillingEvent
		natsURL string
		subject string
		apiURL  string
		secret  string
	)

	cmd := &cobra.Command{
		Use:   "emit",
		Short: "Publish a plan-change event",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ev.ID == "" {
				ev.ID = "evt_" + idx.New().String()
			}
			ev.Type = "plan.changed"

			switch {
			case apiURL != "":
				out, err := farmsdk.NewClient(apiURL).SendBillingEvent(ctx, secret, ev)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "event %s delivered (applied=%t)\n", ev.ID, out.Applied)
			case natsURL != "":
				b, err := bus.New(natsURL)
				if err != nil {
					return err
				}
				defer b.Close()
				if err := b.Publish(ctx, subject, ev.ID, ev); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "event %s published to %s\n", ev.ID, subject)
			default:
				return errors.New("one of --api or --nats is required")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ev.ID, "id", "", "Event id (default: generated)")
	cmd.Flags().StringVar(&ev.UserID, "user", "", "User id")
	cmd.Flags().StringVar(&ev.Plan, "plan", "", "Plan tier (free, pro, agribusiness)")
	cmd.Flags().StringVar(&ev.Status, "status", "active", "Subscription status")
	cmd.Flags().StringVar(&natsURL, "nats", "", "NATS server URL")
	cmd.Flags().StringVar(&subject, "subject", "billing.plan.changed", "JetStream subject")
	cmd.Flags().StringVar(&apiURL, "api", "", "Farm service base URL (uses the webhook)")
	cmd.Flags().StringVar(&secret, "secret", "", "Webhook shared secret")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("plan")
	return cmd
}
