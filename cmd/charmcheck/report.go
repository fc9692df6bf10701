package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"charm/internal/engine"
)

const width = 120

var divider = strings.Repeat("-", width)

func reportPass(name string) {
	fmt.Printf("  [%s] %s\n", color.GreenString("passed"), name)
}

func reportError(name, format string, args ...any) {
	fmt.Println(divider)
	fmt.Printf("  [%s] %s\n", color.RedString("failed"), name)
	fmt.Printf(format+"\n", args...)
	fmt.Println(divider)
}

// reportDiff mirrors the teacher's compare.go: expected/actual lines
// side by side, one per row.
func reportDiff(name, expected, actual string) {
	fmt.Println(divider)
	fmt.Printf("  [%s] %s\n", color.RedString("failed"), name)

	half := width / 2
	header := "Expected stdout"
	spacing := strings.Repeat(" ", half-len(header))
	fmt.Printf("%s%sActual stdout\n", header, spacing)

	expLines := strings.Split(expected, "\n")
	actLines := strings.Split(actual, "\n")
	for i := 0; i < len(expLines) || i < len(actLines); i++ {
		var e, a string
		if i < len(expLines) {
			e = expLines[i]
		}
		if i < len(actLines) {
			a = actLines[i]
		}
		pad := half - len(e)
		if pad < 1 {
			pad = 1
		}
		fmt.Printf("%s%s%s\n", e, strings.Repeat(" ", pad), a)
	}
	fmt.Println(divider)
}

func reportMismatch(name string, mismatches []engine.GlobalMismatch) {
	fmt.Println(divider)
	fmt.Printf("  [%s] %s\n", color.RedString("failed"), name)
	for _, m := range mismatches {
		fmt.Println(" ", m.String())
	}
	fmt.Println(divider)
}
