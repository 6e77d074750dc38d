package commands

import (
	"fmt"

	"github.com/simonhull/firebird-suite/plume/input"
)

// interactive reports whether prompts can be shown. Tests replace it.
var interactive = input.IsInteractive

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
