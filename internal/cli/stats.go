package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/roach88/plenar/internal/joinkey"
	"github.com/roach88/plenar/internal/store"
)

// StatsOptions holds flags for the stats command.
type StatsOptions struct {
	*RootOptions
	Limit int
}

// StatsResult is the JSON payload of the stats command.
type StatsResult struct {
	Counts      store.Counts     `json:"counts"`
	Protocols   []store.Protocol `json:"protocols"`
	AgendaItems []AgendaItemLink `json:"agenda_items"`
	Speeches    []store.Speech   `json:"speeches"`
	Speakers    []store.Speaker  `json:"speakers"`
}

// AgendaItemLink is an agenda item with the number of speeches that
// join it through match_ag.
type AgendaItemLink struct {
	Item     store.AgendaItem `json:"item"`
	Key      string           `json:"key,omitempty"`
	Speeches int              `json:"speeches"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show row counts and recent rows",
		Long: `Show how many rows each table holds, followed by the most recent
protocols, agenda items with the speeches joined to them, speeches
and speakers.

Example:
  plenar stats --limit 10
  plenar stats --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 5, "rows to show per table")
	return cmd
}

func runStats(opts *StatsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	if opts.Limit < 1 {
		return fail(formatter, ExitCommandError, ErrCodeGeneric, "invalid limit",
			fmt.Errorf("--limit must be positive, got %d", opts.Limit))
	}

	rt, err := openRuntime(cmd, opts.RootOptions, formatter, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	var res StatsResult
	if res.Counts, err = rt.store.Counts(ctx); err == nil {
		if res.Protocols, err = rt.store.Protocols(ctx, opts.Limit); err == nil {
			if res.AgendaItems, err = agendaItemLinks(ctx, rt.store, opts.Limit); err == nil {
				if res.Speeches, err = rt.store.Speeches(ctx, opts.Limit); err == nil {
					res.Speakers, err = rt.store.Speakers(ctx, opts.Limit)
				}
			}
		}
	}
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeStore, "failed to read store", store.Describe(err))
	}

	if opts.Format == "json" {
		return formatter.Success(res)
	}
	renderStats(formatter.Writer, res)
	return nil
}

// agendaItemLinks counts the speeches joined to each agenda item. The
// key is rebuilt from the item's period, number and order, so items the
// backfill has not reached yet are linked as well.
func agendaItemLinks(ctx context.Context, st *store.Store, limit int) ([]AgendaItemLink, error) {
	items, err := st.AgendaItems(ctx, limit)
	if err != nil {
		return nil, err
	}
	links := make([]AgendaItemLink, 0, len(items))
	for _, item := range items {
		link := AgendaItemLink{Item: item}
		if key, ok := joinkey.FromInts(item.LegislaturePeriod, item.Number, item.ItemOrder); ok {
			speeches, err := st.SpeechesByMatchKey(ctx, key)
			if err != nil {
				return nil, err
			}
			link.Key = key.String()
			link.Speeches = len(speeches)
		}
		links = append(links, link)
	}
	return links, nil
}

func renderStats(w io.Writer, res StatsResult) {
	counts := newTable(w, "table", "rows")
	counts.Append([]string{"protocol", humanize.Comma(res.Counts.Protocols)})
	counts.Append([]string{"agenda_item", humanize.Comma(res.Counts.AgendaItems)})
	counts.Append([]string{"speaker", humanize.Comma(res.Counts.Speakers)})
	counts.Append([]string{"speech", humanize.Comma(res.Counts.Speeches)})
	counts.Render()

	if len(res.Protocols) > 0 {
		fmt.Fprintln(w, "\nRecent protocols")
		t := newTable(w, "id", "date", "period", "number", "title")
		for _, p := range res.Protocols {
			date := ""
			if p.Date != nil {
				date = p.Date.Format("2006-01-02")
			}
			t.Append([]string{p.ID, date, intCell(p.LegislaturePeriod), intCell(p.Number), truncate(textCell(p.Title), 48)})
		}
		t.Render()
	}

	if len(res.AgendaItems) > 0 {
		fmt.Fprintln(w, "\nAgenda items")
		t := newTable(w, "id", "protocol", "match_ag", "speeches", "title")
		for _, link := range res.AgendaItems {
			key := link.Key
			if key == "" {
				key = "-"
			}
			t.Append([]string{link.Item.ID, textCell(link.Item.ProtocolID), key,
				humanize.Comma(int64(link.Speeches)), truncate(textCell(link.Item.Title), 40)})
		}
		t.Render()
	}

	if len(res.Speeches) > 0 {
		fmt.Fprintln(w, "\nRecent speeches")
		t := newTable(w, "id", "speaker", "match_ag", "summary")
		for _, s := range res.Speeches {
			t.Append([]string{s.ID, textCell(s.SpeakerID), textCell(s.MatchAg), truncate(textCell(s.AbstractSummary), 48)})
		}
		t.Render()
	}

	if len(res.Speakers) > 0 {
		fmt.Fprintln(w, "\nSpeakers")
		t := newTable(w, "id", "name", "party", "fraction")
		for _, s := range res.Speakers {
			t.Append([]string{s.SpeakerID, textCell(s.FullName), textCell(s.Party), textCell(s.Fraction)})
		}
		t.Render()
	}
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetBorder(false)
	return t
}

func textCell(v *string) string {
	if v == nil {
		return "-"
	}
	return *v
}

func intCell(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
