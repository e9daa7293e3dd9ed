package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/contentstack/contentstack-management-go/pkg/auth"
	"github.com/contentstack/contentstack-management-go/pkg/oauth"
)

// OutputFormat selects how command results are printed.
type OutputFormat string

const (
	// OutputFormatTable prints a human readable table.
	OutputFormatTable OutputFormat = "table"
	// OutputFormatJSON prints indented JSON.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML prints YAML converted from the JSON form.
	OutputFormatYAML OutputFormat = "yaml"
)

// ValidateOutputFormat returns an error for unsupported formats.
func ValidateOutputFormat(format string) error {
	switch OutputFormat(format) {
	case OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %q (valid: table, json, yaml)", format)
	}
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

// WriteStatus prints the session status. Token values are never part of
// a Status, so every format is safe to share.
func WriteStatus(w io.Writer, status auth.Status, format OutputFormat, now time.Time) error {
	switch format {
	case OutputFormatJSON, OutputFormatYAML:
		return writeStructured(w, status, format)
	}

	t := newTable(w)
	t.AppendHeader(table.Row{text.FgHiCyan.Sprint("FIELD"), text.FgHiCyan.Sprint("VALUE")})
	t.AppendRow(table.Row{"Status", stateText(status.State)})
	if status.State == auth.StateNotConfigured {
		t.Render()
		return nil
	}
	t.AppendRow(table.Row{"App", status.AppID})
	t.AppendRow(table.Row{"Client", status.ClientID})
	t.AppendRow(table.Row{"Flow", status.Flow})
	t.AppendRow(table.Row{"Token URL", status.TokenURL})
	if !status.ExpiresAt.IsZero() {
		t.AppendRow(table.Row{"Expires", formatExpiry(status.ExpiresAt, now)})
	}
	t.AppendRow(table.Row{"Refresh token", yesNo(status.HasRefreshToken)})
	if status.OrganizationUID != "" {
		t.AppendRow(table.Row{"Organization", status.OrganizationUID})
	}
	if status.UserUID != "" {
		t.AppendRow(table.Row{"User", status.UserUID})
	}
	t.Render()
	return nil
}

func stateText(state string) string {
	switch state {
	case auth.StateAuthenticated:
		return text.FgGreen.Sprint("Authenticated")
	case auth.StateExpired:
		return text.FgYellow.Sprint("Expired")
	case auth.StateNotConfigured:
		return text.FgHiBlack.Sprint("Not configured")
	default:
		return text.FgRed.Sprint("Not logged in")
	}
}

func formatExpiry(expiresAt, now time.Time) string {
	stamp := expiresAt.Local().Format(time.RFC3339)
	remaining := expiresAt.Sub(now).Round(time.Second)
	if remaining <= 0 {
		return fmt.Sprintf("%s (%s ago)", stamp, (-remaining).String())
	}
	return fmt.Sprintf("%s (in %s)", stamp, remaining.String())
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// WriteAuthorizations prints the authorizations of an app.
func WriteAuthorizations(w io.Writer, auths []oauth.Authorization, format OutputFormat) error {
	switch format {
	case OutputFormatJSON, OutputFormatYAML:
		if auths == nil {
			auths = []oauth.Authorization{}
		}
		return writeStructured(w, auths, format)
	}

	if len(auths) == 0 {
		_, err := fmt.Fprintf(w, "%s\n", text.FgYellow.Sprint("No authorizations found"))
		return err
	}

	t := newTable(w)
	t.AppendHeader(table.Row{text.FgHiCyan.Sprint("AUTHORIZATION"), text.FgHiCyan.Sprint("USER")})
	for _, a := range auths {
		t.AppendRow(table.Row{a.AuthorizationUID, a.User.UID})
	}
	t.AppendFooter(table.Row{"Total", len(auths)})
	t.Render()
	return nil
}

// WriteBody prints an API response body. JSON bodies are indented, or
// converted for yaml; anything else is copied as is.
func WriteBody(w io.Writer, body []byte, format OutputFormat) error {
	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		_, err := w.Write(body)
		return err
	}

	if format == OutputFormatYAML {
		return writeStructured(w, data, format)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}

func writeStructured(w io.Writer, v interface{}, format OutputFormat) error {
	if format == OutputFormatYAML {
		// Go through JSON so the json tags decide the field names.
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic interface{}
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		out, err := yaml.Marshal(generic)
		if err != nil {
			return fmt.Errorf("failed to convert to YAML: %w", err)
		}
		_, err = w.Write(out)
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
