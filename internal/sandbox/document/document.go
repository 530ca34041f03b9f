package document

import (
	"strings"

	"github.com/GriffinCanCode/PostFrame/internal/domain/post"
)

// Synthesize builds the complete document for one sandbox. Fragments are
// embedded verbatim; nil fragments render as empty and an empty script
// fragment produces no fragment script block.
func Synthesize(pair post.FragmentPair, id string, opts Options) string {
	opts = opts.normalized()
	markup := pair.MarkupText()
	script := pair.ScriptText()

	var b strings.Builder
	b.Grow(len(markup) + len(script) + 2048)

	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString("<html lang=\"en\">\n")
	b.WriteString("<head>\n")
	b.WriteString("  <meta charset=\"UTF-8\">\n")
	b.WriteString("  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	b.WriteString("  <script src=\"" + attrValue(opts.CSSFrameworkURL) + "\"></script>\n")
	if opts.IncludeDrawingLibrary {
		b.WriteString("  <script src=\"" + attrValue(opts.DrawingLibraryURL) + "\"></script>\n")
	}
	b.WriteString("  <style>html,body{margin:0;padding:" + cssValue(opts.Padding) +
		";overflow:" + cssValue(opts.Overflow) + "}</style>\n")
	b.WriteString("</head>\n")
	b.WriteString("<body>\n")

	if markup != "" {
		b.WriteString(markup)
		b.WriteString("\n")
	}
	if strings.TrimSpace(script) != "" {
		b.WriteString("<script>\n")
		b.WriteString(EscapeScript(script))
		b.WriteString("\n</script>\n")
	}

	b.WriteString("<script>\n")
	b.WriteString(measurementRuntime(id, opts))
	b.WriteString("</script>\n")
	b.WriteString("</body>\n")
	b.WriteString("</html>\n")

	return b.String()
}
