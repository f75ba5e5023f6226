package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pomodoro/internal/db/migrations"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCommand(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	err := newApp(&out).Run(context.Background(), []string{"migrate", "create", "-m", "add task tags", "--dir", dir})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "0001_add_task_tags_up.sql"))
	assert.FileExists(t, filepath.Join(dir, "0001_add_task_tags_down.sql"))
	assert.Contains(t, out.String(), "0001_add_task_tags_up.sql")
}

func TestCreateCommandRequiresMessage(t *testing.T) {
	var out bytes.Buffer

	err := newApp(&out).Run(context.Background(), []string{"migrate", "create", "--dir", t.TempDir()})
	assert.Error(t, err)
}

func TestPrintStatus(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	var out bytes.Buffer

	err := printStatus(&out, []migrations.Status{
		{Migration: migrations.Migration{Version: 1, Name: "create_users_and_tasks"}, Applied: true, AppliedAt: &at},
		{Migration: migrations.Migration{Version: 2, Name: "create_pomodoro"}},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"VERSION", "NAME", "APPLIED"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"0001", "create_users_and_tasks", "2025-03-01", "09:30:00"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"0002", "create_pomodoro", "no"}, strings.Fields(lines[2]))
}
