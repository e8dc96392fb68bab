package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func Test_lineWriter(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	w := &lineWriter{logger: zap.New(core), level: zap.InfoLevel}

	_, _ = w.Write([]byte("first\nsec"))
	_, _ = w.Write([]byte("ond\r\n\n  \nthi"))
	assert.Equal(t, []string{"first", "second"}, messages(logs))

	w.Flush()
	assert.Equal(t, []string{"first", "second", "thi"}, messages(logs))
	for _, e := range logs.All() {
		assert.Equal(t, zap.InfoLevel, e.Level)
	}
}

func Test_RunCommand(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(t.TempDir(), "cmd")
	content := "#!/bin/sh\npwd\nprintf 'no newline' >&2\n"
	require.NoError(t, os.WriteFile(script, []byte(content), 0755))

	core, logs := observer.New(zap.DebugLevel)
	err := RunCommand(context.Background(), CommandLogger{
		RootLogger:  zap.New(core).Named("tool"),
		StdoutLevel: zap.DebugLevel,
		StderrLevel: zap.WarnLevel,
		Dir:         dir,
	}, script)
	require.NoError(t, err)

	stdout := byLogger(logs, "tool.stdout")
	require.Len(t, stdout, 1)
	wantDir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	gotDir, err := filepath.EvalSymlinks(stdout[0].Message)
	require.NoError(t, err)
	assert.Equal(t, wantDir, gotDir)

	stderr := byLogger(logs, "tool.stderr")
	require.Len(t, stderr, 1)
	assert.Equal(t, "no newline", stderr[0].Message)
	assert.Equal(t, zap.WarnLevel, stderr[0].Level)
}

func messages(logs *observer.ObservedLogs) []string {
	var msgs []string
	for _, e := range logs.All() {
		msgs = append(msgs, e.Message)
	}
	return msgs
}

func byLogger(logs *observer.ObservedLogs, name string) []observer.LoggedEntry {
	var entries []observer.LoggedEntry
	for _, e := range logs.All() {
		if e.LoggerName == name {
			entries = append(entries, e)
		}
	}
	return entries
}
