package ansihtml

import (
	"html"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/ansi/parser"
)

const esc = 0x1b

// Anomaly is an escape sequence that was written out as literal text
// instead of being applied.
type Anomaly struct {
	// Offset is the byte offset of the sequence in the source frame.
	Offset int
	// Sequence is the raw sequence, including the ESC byte.
	Sequence string
	Reason   string
}

// Result is the outcome of translating one frame.
type Result struct {
	HTML      string
	Anomalies []Anomaly
}

// Clean reports whether every escape sequence was applied.
func (r Result) Clean() bool {
	return len(r.Anomalies) == 0
}

// Translate converts the SGR sequences in frame to inline-styled spans.
// Text is HTML-escaped. It never fails; see Anomaly.
func Translate(frame string) Result {
	t := translator{src: frame}
	t.translate()
	return Result{HTML: t.out.String(), Anomalies: t.anomalies}
}

// Wrap places translated markup inside the fixed dark container.
func Wrap(body string) string {
	return "<pre><style>body { background-color: " + BackgroundColor + "; }</style>" + body + "</pre>"
}

// Render translates frame and wraps the result.
func Render(frame string) (string, Result) {
	res := Translate(frame)
	return Wrap(res.HTML), res
}

type translator struct {
	src       string
	out       strings.Builder
	cur       style
	run       strings.Builder
	anomalies []Anomaly
}

func (t *translator) translate() {
	p := ansi.GetParser()
	defer ansi.PutParser(p)
	// The parser indexes its params buffer without a bound check and keeps
	// one slot spare, so size it for the worst case in this frame.
	if n := strings.Count(t.src, ";") + strings.Count(t.src, ":") + 2; n > parser.MaxParamsSize {
		p.SetParamsSize(n)
	}

	i := 0
	for i < len(t.src) {
		next := strings.IndexByte(t.src[i:], esc)
		if next < 0 {
			t.text(t.src[i:])
			break
		}
		t.text(t.src[i : i+next])
		i += next
		i = t.escape(p, i)
	}
	t.flush()
}

// escape decodes the sequence starting at src[start] (an ESC byte) and
// returns the offset just past it.
func (t *translator) escape(p *ansi.Parser, start int) int {
	seq, _, n, state := ansi.DecodeSequence(t.src[start:], ansi.NormalState, p)
	if n == 0 {
		n = 1
	}
	end := start + n
	cmd := ansi.Cmd(p.Command())

	switch {
	case state != ansi.NormalState:
		t.literal(start, end, "truncated escape sequence")
		return end
	case !ansi.HasCsiPrefix(seq):
		t.literal(start, end, "unsupported escape")
		return end
	case cmd.Final() == 0:
		// CSI interrupted by a byte that cannot continue it.
		t.literal(start, end, "truncated escape sequence")
		return end
	case cmd.Final() != 'm' || cmd.Prefix() != 0 || cmd.Intermediate() != 0:
		t.literal(start, end, "unsupported control sequence")
		return end
	}

	params, ok := sgrParams(p.Params())
	if !ok {
		t.literal(start, end, "malformed SGR parameters")
		return end
	}
	next, err := t.cur.apply(params)
	if err != nil {
		t.literal(start, end, err.Error())
		return end
	}
	t.setStyle(next)
	return end
}

// sgrParams flattens decoded parameters. Missing entries count as 0, so
// "ESC[m" and "ESC[;m" both mean reset. Colon sub-parameters are rejected.
func sgrParams(ps ansi.Params) ([]int, bool) {
	if len(ps) == 0 {
		return []int{0}, true
	}
	params := make([]int, 0, len(ps))
	for _, v := range ps {
		if v.HasMore() {
			return nil, false
		}
		params = append(params, v.Param(0))
	}
	return params, true
}

func (t *translator) literal(start, end int, reason string) {
	seq := t.src[start:end]
	t.anomalies = append(t.anomalies, Anomaly{Offset: start, Sequence: seq, Reason: reason})
	t.text(seq)
}

func (t *translator) text(s string) {
	if s == "" {
		return
	}
	t.run.WriteString(html.EscapeString(s))
}

func (t *translator) setStyle(s style) {
	if s == t.cur {
		return
	}
	t.flush()
	t.cur = s
}

// flush writes the pending run with the current style.
func (t *translator) flush() {
	if t.run.Len() == 0 {
		return
	}
	if t.cur.isDefault() {
		t.out.WriteString(t.run.String())
	} else {
		t.out.WriteString(`<span style="`)
		t.out.WriteString(t.cur.css())
		t.out.WriteString(`">`)
		t.out.WriteString(t.run.String())
		t.out.WriteString("</span>")
	}
	t.run.Reset()
}
