package theme

import (
	"fmt"
)

// Banner returns the redditscout startup banner.
func Banner() string {
	const orange = "\033[38;5;208m"
	const cyan = "\033[36m"
	const reset = "\033[0m"

	art := "" +
		orange + "  ╭─────────────────────────────╮\n" + reset +
		orange + "  │  " + reset + "redditscout" + orange + "  ◉_◉          │\n" + reset +
		orange + "  ╰─────────────────────────────╯\n" + reset +
		cyan + "   engagement analytics for Reddit communities\n" + reset
	return art
}

// PrintBanner prints the banner to stdout.
func PrintBanner() {
	fmt.Print(Banner())
}
