package display

import (
	"fmt"
	"io"

	"github.com/backmassage/ps3check/internal/term"
)

// PrintBanner prints the ASCII art banner and version; cyan if colors are enabled.
func PrintBanner(w io.Writer, version string) {
	fmt.Fprint(w, term.Cyan)
	fmt.Fprint(w, ` ____  ____ _____       _               _
|  _ \/ ___|___ /   ___| |__   ___  ___| | __
| |_) \___ \ |_ \  / __| '_ \ / _ \/ __| |/ /
|  __/ ___) |__) || (__| | | |  __/ (__|   <
|_|   |____/____/  \___|_| |_|\___|\___|_|\_\
`)
	fmt.Fprint(w, term.NC)
	fmt.Fprintf(w, "%sPS3 media checker%s %s\n\n", term.Bold, term.NC, version)
}
