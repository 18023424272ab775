package format

import (
	"strings"

	"github.com/agbruneau/hookorder/pkg/models"
)

// hookPatterns is checked in order; the first match wins.
var hookPatterns = []struct {
	needles []string
	hook    models.HookType
}{
	{[]string{"usestate"}, models.HookUseState},
	{[]string{"usereducer"}, models.HookUseReducer},
	{[]string{"usememo"}, models.HookUseMemo},
	{[]string{"usecallback"}, models.HookUseCallback},
	{[]string{"useeffect"}, models.HookUseEffect},
	{[]string{"uselayouteffect"}, models.HookUseLayoutEffect},
	{[]string{"usetransition"}, models.HookUseTransition},
	{[]string{"useoptimistic"}, models.HookUseOptimistic},
	{[]string{"usecontext"}, models.HookUseContext},
	{[]string{"useref"}, models.HookUseRef},
	{[]string{"ref callback", "refcallback"}, models.HookRefCallback},
}

// DetectHookType guesses which lifecycle hook emitted a formatted log line.
// It is a case-insensitive substring heuristic, not a parser. "render" only
// matches when the text contains neither "rendered" nor "rendering".
func DetectHookType(formatted string) models.HookType {
	lower := strings.ToLower(formatted)
	for _, p := range hookPatterns {
		for _, n := range p.needles {
			if strings.Contains(lower, n) {
				return p.hook
			}
		}
	}
	if strings.Contains(lower, "render") &&
		!strings.Contains(lower, "rendered") &&
		!strings.Contains(lower, "rendering") {
		return models.HookRender
	}
	return models.HookOther
}
