package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quadstore/internal/quadstore"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success("ignored in json", CountResult{Count: 3})
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   CountResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, int64(3), resp.Data.Count)
	assert.NotContains(t, buf.String(), "ignored")
}

func TestOutputFormatter_JSONDoesNotEscapeIRIs(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success("", map[string]string{"subject": "<ex:hello>"}))
	assert.Contains(t, buf.String(), `"<ex:hello>"`)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(CodeStorage, "add failed", nil)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeStorage, resp.Error.Code)
	assert.Equal(t, "add failed", resp.Error.Message)
}

func TestOutputFormatter_JSONErrorWithDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	details := map[string]string{"file": "people.nq", "line": "42"}
	require.NoError(t, formatter.Error(CodeInput, "syntax error", details))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("added 2 quads", CountResult{Count: 2})
	require.NoError(t, err)
	assert.Equal(t, "added 2 quads\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:    "text",
		Writer:    buf,
		ErrWriter: errBuf,
	}

	require.NoError(t, formatter.Error(CodeConnection, "size failed", nil))
	assert.Empty(t, buf.String())
	assert.Contains(t, errBuf.String(), "Error [E_CONNECTION]")
	assert.Contains(t, errBuf.String(), "size failed")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	details := map[string]string{"file": "people.nq"}
	require.NoError(t, formatter.Error(CodeInput, "syntax error", details))
	assert.Contains(t, buf.String(), "Error [E_INPUT]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_Fail(t *testing.T) {
	errBuf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: &bytes.Buffer{}, ErrWriter: errBuf}

	exitErr := WrapExitError(ExitFailure, "match failed", errors.New("disk full"))
	err := formatter.Fail(CodeStorage, exitErr)

	assert.Same(t, exitErr, err)
	assert.Contains(t, errBuf.String(), "Error [E_STORAGE]: match failed: disk full")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			formatter.VerboseLog("read %d quads", 3)

			if tt.wantLog {
				assert.Contains(t, buf.String(), "read 3 quads")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))

	wrapped := fmt.Errorf("outer: %w", NewExitError(ExitCommandError, "inner"))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
}

func TestStoreExitError(t *testing.T) {
	tests := []struct {
		code     quadstore.ErrorCode
		wantExit int
		wantCode string
		wantMsg  string
	}{
		{quadstore.ErrCodeValidation, ExitCommandError, CodeValidation, "add rejected"},
		{quadstore.ErrCodeConnection, ExitFailure, CodeConnection, "add failed"},
		{quadstore.ErrCodeStorage, ExitFailure, CodeStorage, "add failed"},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			storeErr := &quadstore.Error{Code: tt.code, Op: "add", Message: "boom"}
			exitErr, code := storeExitError("add", storeErr)

			assert.Equal(t, tt.wantExit, exitErr.Code)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantMsg, exitErr.Message)
			assert.ErrorIs(t, exitErr, storeErr)
		})
	}
}

func TestCLIError_JSON(t *testing.T) {
	cliErr := CLIError{
		Code:    CodeValidation,
		Message: "add rejected",
		Details: []string{"subject must not be a literal"},
	}

	data, err := json.Marshal(cliErr)
	require.NoError(t, err)

	var decoded CLIError
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, CodeValidation, decoded.Code)
	assert.Equal(t, "add rejected", decoded.Message)
}

func TestReported(t *testing.T) {
	formatter := &OutputFormatter{Format: "text", Writer: &bytes.Buffer{}}

	plain := NewExitError(ExitCommandError, "bad flag")
	assert.False(t, Reported(plain))

	err := formatter.Fail(CodeInput, NewExitError(ExitCommandError, "bad file"))
	assert.True(t, Reported(err))
	assert.True(t, Reported(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, Reported(errors.New("plain")))
}
