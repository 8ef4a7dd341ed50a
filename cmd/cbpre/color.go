package main

import (
	"github.com/fatih/color"
)

// Colors follow the terminal: fatih/color disables itself when stdout is not
// a TTY or NO_COLOR is set.

func cyan(s string) string {
	return color.New(color.FgHiCyan).SprintFunc()(s)
}

func green(s string) string {
	return color.New(color.FgHiGreen).SprintFunc()(s)
}

func yellow(s string) string {
	return color.New(color.FgHiYellow).SprintFunc()(s)
}

func red(s string) string {
	return color.New(color.FgHiRed).SprintFunc()(s)
}
