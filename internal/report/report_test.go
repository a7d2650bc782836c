package report

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ircnames/internal/session"
	"ircnames/internal/store"
)

var results = []session.Result{
	{ChannelLabel: "192.0.2.10:6667/#go", Usernames: []string{"alice", "@bob"}},
	{ChannelLabel: "irc.example.net:6697/#go", Usernames: []string{"carol"}},
	{ChannelLabel: "192.0.2.11:6667/#go", Usernames: nil},
}

func TestRows(t *testing.T) {
	assert.Equal(t, []Row{
		{ChannelLabel: "192.0.2.10:6667/#go", Username: "alice"},
		{ChannelLabel: "192.0.2.10:6667/#go", Username: "@bob"},
		{ChannelLabel: "irc.example.net:6697/#go", Username: "carol"},
	}, Rows(results))
	assert.Empty(t, Rows(nil))
}

func TestProfiles(t *testing.T) {
	got := Profiles(results)
	require.Len(t, got, 3)
	assert.Equal(t, store.Profile{
		Username: "@bob",
		Resource: "irc",
		URL:      "irc://192.0.2.10:6667/#go",
	}, got[1])
	assert.Equal(t, "irc://irc.example.net:6697/#go", got[2].URL)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, Rows(results)))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "server:port/channel"))
	assert.True(t, strings.HasSuffix(lines[0], "users"))
	assert.True(t, strings.HasPrefix(lines[2], "192.0.2.10:6667/#go"))
	assert.True(t, strings.HasSuffix(lines[4], "carol"))

	// Second column is aligned.
	col := strings.Index(lines[0], "users")
	assert.Equal(t, col, strings.Index(lines[2], "alice"))
	assert.Equal(t, col, strings.Index(lines[4], "carol"))
}

func TestWriteTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, nil))
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, results[:1]))

	var got []session.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, results[:1], got)
	assert.Contains(t, buf.String(), `"channel": "192.0.2.10:6667/#go"`)
}

func TestWriteJSON_Nil(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.xlsx")
	require.NoError(t, WriteXLSX(path, Rows(results)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(sheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"server:port/channel", "users"},
		{"192.0.2.10:6667/#go", "alice"},
		{"192.0.2.10:6667/#go", "@bob"},
		{"irc.example.net:6697/#go", "carol"},
	}, got)
}
