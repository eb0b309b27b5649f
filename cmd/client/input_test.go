package main

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pipedStdin(t *testing.T) {
	t.Helper()
	orig := isTerminal
	isTerminal = func() bool { return false }
	t.Cleanup(func() { isTerminal = orig })
}

func TestPromptSecret_PipedKeepsSurroundingSpaces(t *testing.T) {
	pipedStdin(t)

	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader(" pass word \r\n  tail  "))

	got, err := promptSecret(r, &out, "Password")
	require.NoError(t, err)
	assert.Equal(t, " pass word ", got)
	assert.Equal(t, "Password: ", out.String())

	got, err = promptSecret(r, &out, "Confirm password")
	require.NoError(t, err)
	assert.Equal(t, "  tail  ", got)

	_, err = promptSecret(r, &out, "Again")
	assert.ErrorIs(t, err, io.EOF)
}

func TestPromptSecret_TerminalUsesReadPassword(t *testing.T) {
	origTerm, origRead := isTerminal, readPassword
	isTerminal = func() bool { return true }
	readPassword = func(int) ([]byte, error) { return []byte(" s3cret "), nil }
	t.Cleanup(func() { isTerminal, readPassword = origTerm, origRead })

	var out bytes.Buffer
	got, err := promptSecret(bufio.NewReader(strings.NewReader("")), &out, "Password")
	require.NoError(t, err)
	assert.Equal(t, " s3cret ", got)
	assert.Equal(t, "Password: \n", out.String())
}

func TestPrompt_TrimsPlainFields(t *testing.T) {
	var out bytes.Buffer
	got, err := prompt(bufio.NewReader(strings.NewReader("  Ann  \n")), &out, "Name")
	require.NoError(t, err)
	assert.Equal(t, "Ann", got)
}
