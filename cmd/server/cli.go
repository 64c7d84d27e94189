package main

import (
	"context"

	"fivechairs_admin/internal/models"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var (
		period string
		source string
		charts bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the stats payload (or chart bundle) as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := configFrom(cmd)
			if cfg == nil {
				return errNoConfig
			}
			a, err := newApp(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()

			filters := models.StatsFilters{Period: models.ParsePeriod(period), Source: source}
			if charts {
				b, err := a.stats.FetchCharts(cmd.Context(), filters)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), b)
			}

			p, err := a.stats.FetchStats(cmd.Context(), filters)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}

	cmd.Flags().StringVar(&period, "period", string(models.DefaultPeriod), "today|3d|7d|30d|all")
	cmd.Flags().StringVar(&source, "source", "", "keep only this acquisition source")
	cmd.Flags().BoolVar(&charts, "charts", false, "print chart-ready series instead of the raw payload")
	return cmd
}

func newMessagesCmd() *cobra.Command {
	var (
		filters models.MessageFilters
		period  string
		cursor  string
		all     bool
		details string
	)

	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Print a page of the outbound message log (or one message) as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := configFrom(cmd)
			if cfg == nil {
				return errNoConfig
			}
			a, err := newApp(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if details != "" {
				d, err := a.messages.FetchMessageDetails(cmd.Context(), details)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), d)
			}

			filters.Period = models.Period(period)
			if !all {
				resp, err := a.messages.FetchMessages(cmd.Context(), filters, cursor)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), resp)
			}

			resp, err := fetchAllPages(cmd.Context(), a, filters, cursor)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	f := cmd.Flags()
	f.StringVar(&period, "period", string(models.DefaultPeriod), "today|3d|7d|30d|all")
	f.StringVar(&filters.Module, "module", "all", "user_bot|automation|admin_bot|all")
	f.StringVar(&filters.Status, "status", "all", "queued|sent|failed|canceled|all")
	f.StringVar(&filters.Type, "type", "all", "text|photo|video|document|invoice|media_group|audio|voice|sticker|all")
	f.StringVar(&filters.Source, "source", "", "acquisition source substring")
	f.StringVar(&filters.UserID, "user-id", "", "user id or username substring")
	f.StringVar(&filters.Search, "search", "", "text/caption substring")
	f.StringVar(&cursor, "cursor", "", "opaque cursor from a previous page")
	f.BoolVar(&all, "all", false, "follow nextCursor and print every page as one response")
	f.StringVar(&details, "id", "", "print details of one message instead of a page")
	return cmd
}

// fetchAllPages склеивает страницы, пока есть nextCursor.
func fetchAllPages(ctx context.Context, a *app, filters models.MessageFilters, cursor string) (*models.MessagesResponse, error) {
	out := &models.MessagesResponse{Items: []models.MessageItem{}}
	for {
		resp, err := a.messages.FetchMessages(ctx, filters, cursor)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, resp.Items...)
		out.Total = resp.Total
		if resp.NextCursor == "" {
			return out, nil
		}
		cursor = resp.NextCursor
	}
}
