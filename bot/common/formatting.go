package common

import (
	"fmt"
	"time"

	"lotto/service"
)

// Embed colors
const (
	ColorPrimary = 0x5865F2
	ColorSuccess = 0x57F287
	ColorDanger  = 0xED4245
	ColorNeutral = 0x99AAB5
)

// FormatBalance formats a balance amount with thousand separators
func FormatBalance(balance int64) string {
	return service.FormatAmount(balance)
}

// FormatPlayTime renders a play time the way commands accept it back
func FormatPlayTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05.000000")
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}
