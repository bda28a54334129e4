package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestOutputFormatterSuccessText(t *testing.T) {
	var buf bytes.Buffer
	out := &OutputFormatter{Format: "text", Writer: &buf}

	if err := out.Success("pasted 1 -> 2"); err != nil {
		t.Fatalf("Success() failed: %v", err)
	}
	if got := buf.String(); got != "pasted 1 -> 2\n" {
		t.Errorf("output = %q", got)
	}
}

func TestOutputFormatterSuccessJSON(t *testing.T) {
	var buf bytes.Buffer
	out := &OutputFormatter{Format: "json", Writer: &buf}

	if err := out.Success("done"); err != nil {
		t.Fatalf("Success() failed: %v", err)
	}

	var resp CLIResponse
	if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if resp.Status != "ok" || resp.Data != "done" {
		t.Errorf("response = %+v", resp)
	}
}

func TestOutputFormatterErrorText(t *testing.T) {
	var buf bytes.Buffer
	out := &OutputFormatter{Format: "text", Writer: &buf}

	if err := out.Error("NO_SOURCE_HISTORY", "nothing to copy"); err != nil {
		t.Fatalf("Error() failed: %v", err)
	}
	if got := buf.String(); got != "Error [NO_SOURCE_HISTORY]: nothing to copy\n" {
		t.Errorf("output = %q", got)
	}
}

func TestOutputFormatterErrorJSON(t *testing.T) {
	var buf bytes.Buffer
	out := &OutputFormatter{Format: "json", Writer: &buf}

	if err := out.Error("STORE_ERROR", "disk full"); err != nil {
		t.Fatalf("Error() failed: %v", err)
	}

	var resp CLIResponse
	if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if resp.Status != "error" || resp.Error == nil {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Error.Code != "STORE_ERROR" || resp.Error.Message != "disk full" {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestGetExitCode(t *testing.T) {
	if got := GetExitCode(NewExitError(ExitCommandError, "bad flag")); got != ExitCommandError {
		t.Errorf("GetExitCode() = %d, want %d", got, ExitCommandError)
	}
	if got := GetExitCode(errors.New("plain")); got != ExitFailure {
		t.Errorf("GetExitCode(plain) = %d, want %d", got, ExitFailure)
	}

	wrapped := WrapExitError(ExitCommandError, "open database", errors.New("no such file"))
	if got := GetExitCode(wrapped); got != ExitCommandError {
		t.Errorf("GetExitCode(wrapped) = %d, want %d", got, ExitCommandError)
	}
	if !strings.Contains(wrapped.Error(), "no such file") {
		t.Errorf("wrapped message = %q", wrapped.Error())
	}
}

func TestIsValidFormat(t *testing.T) {
	for _, f := range ValidFormats {
		if !isValidFormat(f) {
			t.Errorf("isValidFormat(%q) = false", f)
		}
	}
	if isValidFormat("xml") {
		t.Error("isValidFormat(xml) = true")
	}
}

func TestParseItemIDs(t *testing.T) {
	ids, err := parseItemIDs([]string{"1", "42"})
	if err != nil {
		t.Fatalf("parseItemIDs() failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 42 {
		t.Errorf("ids = %v", ids)
	}

	if _, err := parseItemIDs([]string{"1", "two"}); err == nil {
		t.Fatal("expected error for non-numeric id")
	}
	var exitErr *ExitError
	_, err = parseItemIDs([]string{"x"})
	if !errors.As(err, &exitErr) || exitErr.Code != ExitCommandError {
		t.Errorf("error = %v, want ExitError with command-error code", err)
	}
}
