package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/guiyumin/vthumb/internal/i18n"
	"github.com/guiyumin/vthumb/internal/thumbnail"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printCandidates(res *thumbResult, t *i18n.Translations) {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	red := color.New(color.FgRed, color.Bold)
	dim := color.New(color.FgHiBlack)

	bold.Printf("Video: ")
	cyan.Println(res.VideoID)
	fmt.Println(strings.Repeat("-", 60))

	if len(res.Visible) == 0 {
		fmt.Println(t.Thumbs.NoneValid)
		fmt.Println(strings.Repeat("-", 60))
		return
	}

	verdicts := make(map[thumbnail.Resolution]thumbnail.Outcome, len(res.Outcomes))
	for _, o := range res.Outcomes {
		verdicts[o.Resolution] = o
	}

	for i, c := range res.Visible {
		bold.Printf("%-9s", c.Tag)
		fmt.Printf(" %-20s %s", c.Label, c.Size())
		if i == 0 {
			red.Printf("  %s", t.Thumbs.Master)
		}
		if o, ok := verdicts[c.Resolution]; ok && o.Verdict == thumbnail.Pending {
			dim.Printf("  (%s)", t.Thumbs.Pending)
		}
		fmt.Println()
		dim.Printf("          %s\n", c.URL)
	}

	fmt.Println(strings.Repeat("-", 60))
	if len(res.Invalid) > 0 {
		dim.Printf("%s: %s\n", t.Thumbs.Invalid, strings.Join(res.Invalid, ", "))
	}
}
