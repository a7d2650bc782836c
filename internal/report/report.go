// Package report renders harvested channel member lists.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"

	"ircnames/internal/session"
	"ircnames/internal/store"
)

// Header is the column header of the table and XLSX outputs.
var Header = []string{"server:port/channel", "users"}

// Row is one user of one channel.
type Row struct {
	ChannelLabel string `json:"channel"`
	Username     string `json:"user"`
}

// Rows flattens results into one row per user, in result order.
func Rows(results []session.Result) []Row {
	var rows []Row
	for _, r := range results {
		for _, u := range r.Usernames {
			rows = append(rows, Row{ChannelLabel: r.ChannelLabel, Username: u})
		}
	}
	return rows
}

// Profiles derives one profile per row.
func Profiles(results []session.Result) []store.Profile {
	rows := Rows(results)
	out := make([]store.Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, store.Profile{
			Username: row.Username,
			Resource: store.Resource,
			URL:      "irc://" + row.ChannelLabel,
		})
	}
	return out
}

// WriteTable prints rows as an aligned two-column table.
func WriteTable(w io.Writer, rows []Row) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", Header[0], Header[1])
	fmt.Fprintf(tw, "%s\t%s\n", strings.Repeat("-", len(Header[0])), strings.Repeat("-", len(Header[1])))
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r.ChannelLabel, r.Username)
	}
	return tw.Flush()
}

// WriteJSON writes results as an indented JSON array.
func WriteJSON(w io.Writer, results []session.Result) error {
	if results == nil {
		results = []session.Result{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
