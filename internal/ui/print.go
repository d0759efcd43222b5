package ui

import (
	"fmt"
	"os"
	"strings"
)

// Puts prints a styled line to stdout.
func Puts(s string) {
	fmt.Println(s)
}

// Putsf prints a formatted styled line to stdout.
func Putsf(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
}

// Warn prints a warning message.
func Warn(msg string) {
	fmt.Println(Warning.Render(IconWarn + msg))
}

// Err prints an error message to stderr.
func Err(msg string) {
	styled := Error.Bold(true).Render(IconError + msg)
	fmt.Fprintln(os.Stderr, styled)
}

// Ok prints a success message.
func Ok(msg string) {
	fmt.Println(Success.Render(IconOk + msg))
}

// Inf prints an info message.
func Inf(msg string) {
	fmt.Println(Info.Render("  " + msg))
}

// Header prints a section header.
func Header(s string) {
	fmt.Println()
	fmt.Println(Title.Render(s))
	fmt.Println(Muted.Render(strings.Repeat("─", len([]rune(s))+2)))
}

// Tip prints a helpful tip.
func Tip(msg string) {
	fmt.Println()
	fmt.Println(Muted.Render("  tip: " + msg))
}

// Kv prints a key-value pair, padded.
func Kv(key string, value string) {
	k := KeyStyle.Render(fmt.Sprintf("  %-12s", key))
	v := ValueStyle.Render(value)
	fmt.Printf("%s %s\n", k, v)
}

// Greet returns the greeting shown above the daily overview.
func Greet(name string) string {
	if name == "" {
		return IconRack + "Here's your day."
	}
	return fmt.Sprintf("%sHey %s, here's your day.", IconRack, name)
}

// Minutes formats a duration in minutes as "45m", "2h" or "1h 30m".
func Minutes(m int) string {
	sign := ""
	if m < 0 {
		sign, m = "-", -m
	}
	h, rem := m/60, m%60
	switch {
	case h == 0:
		return fmt.Sprintf("%s%dm", sign, rem)
	case rem == 0:
		return fmt.Sprintf("%s%dh", sign, h)
	}
	return fmt.Sprintf("%s%dh %dm", sign, h, rem)
}

// Bar renders a fill gauge of width cells for used out of total.
func Bar(used, total, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if total > 0 {
		filled = min(width, max(0, used*width/total))
	}
	style := Success
	if total > 0 && used > total {
		style = Error
	} else if total > 0 && used*10 >= total*9 {
		style = Warning
	}
	return style.Render(strings.Repeat("█", filled)) + Muted.Render(strings.Repeat("░", width-filled))
}
