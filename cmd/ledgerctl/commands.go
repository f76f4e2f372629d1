package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/domain"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/service"
	"github.com/aussiebroadwan/quoteledger/pkg/idx"
	"github.com/aussiebroadwan/quoteledger/pkg/slogx"
)

func creditsCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credits",
		Short: "Inspect and grant credits",
	}
	cmd.AddCommand(creditsBalanceCmd(open), creditsGrantCmd(open))
	return cmd
}

func creditsBalanceCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <user-id>",
		Short: "Show a user's credit balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := open()
			if err != nil {
				return err
			}
			defer st.Close()

			svc := &service.CreditService{Store: st}
			bal, err := svc.Balance(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printBalance(cmd, bal)
			return nil
		},
	}
}

func creditsGrantCmd(open opener) *cobra.Command {
	var (
		reason    string
		expiresIn time.Duration
	)

	cmd := &cobra.Command{
		Use:   "grant <user-id> <credits>",
		Short: "Grant credits to a user (audited)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			credits, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil || credits <= 0 {
				return fmt.Errorf("credits must be a positive integer, got %q", args[1])
			}
			reason = strings.TrimSpace(reason)
			if reason == "" {
				return errors.New("--reason is required")
			}

			st, err := open()
			if err != nil {
				return err
			}
			defer st.Close()

			now := time.Now().UTC()
			var expiresAt *time.Time
			if expiresIn > 0 {
				exp := now.Add(expiresIn)
				expiresAt = &exp
			}

			svc := &service.CreditService{Store: st}
			ctx := slogx.WithContext(cmd.Context(), slogx.Discard())
			res, err := svc.Grant(ctx, service.GrantRequest{
				UserID:     args[0],
				Credits:    credits,
				ExpiresAt:  expiresAt,
				ExternalID: "admin:" + idx.NewAt(now).String(),
				Source:     domain.GrantSourceAdmin,
				ActorID:    operatorActor,
				Reason:     reason,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "granted %d credits\n", res.CreditsAdded)
			printBalance(cmd, res.Balance)
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "reason recorded in the audit log")
	cmd.Flags().DurationVar(&expiresIn, "expires-in", 0, "credit lifetime, e.g. 2160h (0 means the balance never expires)")
	return cmd
}

func printBalance(cmd *cobra.Command, bal service.Balance) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "credits:   %d\n", bal.Credits)
	fmt.Fprintf(out, "effective: %d\n", bal.Effective)
	if bal.ExpiresAt != nil {
		fmt.Fprintf(out, "expires:   %s\n", bal.ExpiresAt.Format(time.RFC3339))
	}
}

func auditCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Read the audit log",
	}

	var filter domain.AuditFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List audit entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if filter.Limit <= 0 || filter.Limit > 500 {
				return errors.New("--limit must be between 1 and 500")
			}

			st, err := open()
			if err != nil {
				return err
			}
			defer st.Close()

			entries, err := st.AuditLogs().ListAuditLogs(cmd.Context(), filter)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tACTOR\tTARGET\tACTION\tREASON")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.ID, e.CreatedAt.Format(time.RFC3339), e.ActorID, e.TargetUserID, e.Action, e.Reason)
			}
			return w.Flush()
		},
	}
	list.Flags().StringVar(&filter.TargetUserID, "target", "", "only entries about this user")
	list.Flags().StringVar(&filter.ActorID, "actor", "", "only entries by this actor")
	list.Flags().StringVar(&filter.Action, "action", "", "only this action, e.g. credits.grant")
	list.Flags().StringVar(&filter.Before, "before", "", "entries older than this id")
	list.Flags().IntVar(&filter.Limit, "limit", 50, "maximum entries")

	cmd.AddCommand(list)
	return cmd
}

func invitesCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invites",
		Short: "Manage team invites",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Delete expired, unaccepted invites now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := open()
			if err != nil {
				return err
			}
			defer st.Close()

			hk := service.NewHousekeepingService(st, slogx.Discard(), 0)
			n, err := hk.Cleanup(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d expired invites\n", n)
			return nil
		},
	})
	return cmd
}
