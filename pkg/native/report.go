package native

import (
	"fmt"
	"strconv"
	"strings"
)

// Report renders the text report of a run: kernel, accepted resolutions,
// best of bests and one row per scanned height.
func (r *Result) Report() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Resize Kernel: %s\n", r.Kernel)

	res := make([]string, len(r.Resolutions))
	for i, v := range r.Resolutions {
		res[i] = strconv.Itoa(v)
	}
	fmt.Fprintf(&sb, "Native resolution(s) (best guess): %sp. Best of bests: %dp, mae: %v\n",
		strings.Join(res, "p, "), r.Height, r.Error)
	sb.WriteString("Please check the graph manually for more accurate results\n\n")

	sb.WriteString("Raw data:\nResolution\t | Relative Error\t | Relative difference from last\n")
	rows := make([]string, len(r.Heights))
	for i, h := range r.Heights {
		rows[i] = fmt.Sprintf("%4d\t\t | %.10f\t\t | %.2f", h, r.Curve[i], r.Ratios[i])
	}
	sb.WriteString(strings.Join(rows, "\n"))
	return sb.String()
}

// Summary is the one-line result printed after each kernel. AR is the ratio
// of the reported width and height, which differs from the refined aspect
// ratio when the width was rounded or capped at the source width.
func (r *Result) Summary() string {
	ar := float64(r.Width) / float64(r.Height)
	return fmt.Sprintf("%s AR: %.2f %d x %d MAE: %v", r.Kernel, ar, r.Width, r.Height, r.Error)
}
