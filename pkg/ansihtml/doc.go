// Package ansihtml converts ANSI SGR styling in ASCII-art frames into HTML.
//
// Translation is best effort. Sequences that cannot be represented are
// written to the output as literal text and reported as [Anomaly] values,
// so a malformed frame degrades instead of failing:
//
//	res := ansihtml.Translate("\x1b[31mA\x1b[0m")
//	// res.HTML == `<span style="color:#bb0000">A</span>`
//	// res.Clean() == true
//
// [Wrap] places translated markup in the fixed dark container the display
// surface expects, and [Render] does both steps.
package ansihtml
