// Package report renders the post-run summary.
package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/nkale/blockpi/internal/engine"
)

var superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴',
	'5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹', '-': '⁻',
}

func superscript(n int) string {
	var b strings.Builder
	for _, r := range fmt.Sprintf("%d", n) {
		b.WriteRune(superscripts[r])
	}
	return b.String()
}

// FormatScientific renders v as "c.ccc × 10ⁿ" when the exponent leaves
// [-3, 3] (or when forced), and as a grouped plain decimal otherwise.
func FormatScientific(v float64, force bool) string {
	if v == 0 {
		return "0"
	}

	exponent := int(math.Floor(math.Log10(math.Abs(v))))
	coefficient := v / math.Pow(10, float64(exponent))

	if force || exponent > 3 || exponent < -3 {
		return fmt.Sprintf("%.3f × 10%s", coefficient, superscript(exponent))
	}
	return groupThousands(fmt.Sprintf("%.3f", v))
}

// groupThousands inserts commas into the integer part of a fixed-point
// decimal string.
func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := b.String()
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

// GroupInt renders n with thousands separators.
func GroupInt(n int) string {
	return groupThousands(fmt.Sprintf("%d", n))
}

// Render produces the simulation report: totals, the smallest inter-event
// interval, wall-clock duration, and the final state of both blocks.
func Render(res *engine.Result, wallClock time.Duration) string {
	var b strings.Builder

	fmt.Fprintln(&b, "------------- Simulation Report -------------")
	fmt.Fprintf(&b, "Total Collisions   : %s\n", GroupInt(res.Collisions))
	fmt.Fprintf(&b, "Smallest Interval  : %s s\n", FormatScientific(res.SmallestInterval, true))
	fmt.Fprintf(&b, "Simulated Time     : %s s\n", FormatScientific(res.Elapsed, true))
	fmt.Fprintf(&b, "Wall-Clock Time    : %v\n\n", wallClock)

	renderBlock(&b, "Block 1", res.Block1)
	fmt.Fprintln(&b)
	renderBlock(&b, "Block 2", res.Block2)

	return b.String()
}

func renderBlock(b *strings.Builder, name string, blk engine.Block) {
	fmt.Fprintf(b, "%s:\n", name)
	fmt.Fprintf(b, "  - Position   : %.3f m\n", blk.Pos)
	fmt.Fprintf(b, "  - Mass       : %s kg\n", FormatScientific(blk.Mass, false))
	fmt.Fprintf(b, "  - Velocity   : %.3f m/s\n", blk.Vel)
	fmt.Fprintf(b, "  - Momentum   : %.3f kg·m/s\n", blk.Momentum())
}
