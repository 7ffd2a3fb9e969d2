package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dori/sweet/internal/model"
)

const testAddress = "0x1234567890abcdef1234567890abcdef12345678"

var cliNow = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "data_dir: " + filepath.Join(dir, "data") + "\nnotifications: false\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "sweet v"+version+"\n", out)
}

func TestConnectAddList(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, "--config", cfg, "list")
	assert.ErrorIs(t, err, errNotConnected)

	out, err := run(t, "--config", cfg, "connect", testAddress)
	require.NoError(t, err)
	assert.Contains(t, out, "Connected as 0x1234...5678")

	out, err = run(t, "--config", cfg, "add", "Review", "PR", "@Work", "!high")
	require.NoError(t, err)
	assert.Contains(t, out, "Created: Review PR")
	assert.Contains(t, out, "Priority: high")
	assert.Contains(t, out, "Tags: Work")

	_, err = run(t, "--config", cfg, "add", "Water plants")
	require.NoError(t, err)

	out, err = run(t, "--config", cfg, "list", "--sort", "priority")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "[ ] Review PR"))
	assert.True(t, strings.HasPrefix(lines[1], "[ ] Water plants"))

	out, err = run(t, "--config", cfg, "list", "--tag", "@Work")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n"))

	out, err = run(t, "--config", cfg, "disconnect")
	require.NoError(t, err)
	assert.Equal(t, "Disconnected\n", out)

	_, err = run(t, "--config", cfg, "add", "after disconnect")
	assert.ErrorIs(t, err, errNotConnected)
}

func TestConnectRejectsInvalidAddress(t *testing.T) {
	cfg := writeConfig(t)
	_, err := run(t, "--config", cfg, "connect", "0xnope")
	assert.ErrorContains(t, err, "invalid wallet address")
}

func TestListOptionsApply(t *testing.T) {
	prefs := model.DefaultPreferences()

	got, err := listOptions{filter: "all", sort: "dueDate", tag: "@Study"}.apply(prefs)
	require.NoError(t, err)
	assert.Equal(t, model.FilterAll, got.Filter)
	assert.Equal(t, model.SortDueDate, got.Sort)
	assert.Equal(t, "Study", got.Tag())

	_, err = listOptions{filter: "someday"}.apply(prefs)
	assert.Error(t, err)
	_, err = listOptions{sort: "alphabetical"}.apply(prefs)
	assert.Error(t, err)

	got, err = listOptions{}.apply(prefs)
	require.NoError(t, err)
	assert.Equal(t, prefs, got)
}

func TestFormatTaskLine(t *testing.T) {
	yesterday := model.DateOf(cliNow).AddDays(-1)
	task := model.Task{
		Text:      "Pay rent",
		Priority:  model.PriorityHigh,
		DueDate:   &yesterday,
		Tags:      []string{"Personal"},
		Pomodoros: 2,
	}
	assert.Equal(t, "[ ] Pay rent  !high  due:Thu, May 9 (overdue)  @Personal  ✨2", formatTaskLine(task, cliNow))

	done := model.Task{Text: "Stretch", Priority: model.PriorityMedium, Completed: true, Tags: []string{}}
	assert.Equal(t, "[x] Stretch", formatTaskLine(done, cliNow))
}

func TestPrintCreated(t *testing.T) {
	tomorrow := model.DateOf(cliNow).AddDays(1)
	var out bytes.Buffer
	printCreated(&out, model.Task{Text: "Call mom", Priority: model.PriorityMedium, DueDate: &tomorrow}, cliNow)
	assert.Equal(t, "Created: Call mom\nDue: tomorrow\n", out.String())
}
