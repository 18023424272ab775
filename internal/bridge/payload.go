package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"

	"github.com/agbruneau/hookorder/internal/format"
	"github.com/agbruneau/hookorder/pkg/models"
)

const (
	// ScriptID is the id of the script element carrying the payload.
	ScriptID = "server-logs-injector"
	// DefaultVar is the global the payload is assigned to.
	DefaultVar = "__SERVER_LOGS__"
)

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// RenderPayload writes the script element that assigns entries to
// window.<varName>. Nothing is written when entries is empty. encoding/json
// escapes <, > and &, so the payload cannot close the script element early.
// An entry whose raw arguments cannot be encoded is sent with each argument
// replaced by its formatted text; the other entries are unaffected.
func RenderPayload(w io.Writer, entries []models.LogEntry, varName string) error {
	if len(entries) == 0 {
		return nil
	}
	if varName == "" {
		varName = DefaultVar
	}
	if !identRe.MatchString(varName) {
		return fmt.Errorf("invalid payload variable %q", varName)
	}
	data, err := encodeEntries(entries)
	if err != nil {
		return fmt.Errorf("encode server logs: %w", err)
	}
	if _, err := fmt.Fprintf(w, `<script id="%s">window.%s = %s;</script>`, ScriptID, varName, data); err != nil {
		return fmt.Errorf("write server logs: %w", err)
	}
	return nil
}

func encodeEntries(entries []models.LogEntry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		data, err := json.Marshal(e)
		if err != nil {
			data, err = json.Marshal(degradeArgs(e))
			if err != nil {
				return nil, err
			}
		}
		buf.Write(data)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// degradeArgs replaces every argument with its rendering by format.Arg.
func degradeArgs(e models.LogEntry) models.LogEntry {
	args := make([]any, len(e.Args))
	for i, a := range e.Args {
		args[i] = format.Arg(a)
	}
	e.Args = args
	return e
}

// ExtractPayload finds the JSON assigned by RenderPayload inside page.
func ExtractPayload(page []byte, varName string) ([]byte, bool) {
	if varName == "" {
		varName = DefaultVar
	}
	open := []byte(`<script id="` + ScriptID + `">`)
	i := bytes.Index(page, open)
	if i < 0 {
		return nil, false
	}
	rest := page[i+len(open):]
	end := bytes.Index(rest, []byte("</script>"))
	if end < 0 {
		return nil, false
	}
	body := bytes.TrimSpace(rest[:end])
	prefix := []byte("window." + varName + " = ")
	if !bytes.HasPrefix(body, prefix) {
		return nil, false
	}
	body = bytes.TrimSuffix(bytes.TrimPrefix(body, prefix), []byte(";"))
	return bytes.TrimSpace(body), true
}
