package cel

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// celErrorRegex extracts position information from CEL compilation errors.
	celErrorRegex = regexp.MustCompile(`ERROR:\s+<input>:(\d+):(\d+):\s+(.+)`)
)

// extractErrorPosition returns the line and column of a CEL error, or (0, 0).
func extractErrorPosition(err error) (line, column int) {
	if err == nil {
		return 0, 0
	}

	matches := celErrorRegex.FindStringSubmatch(err.Error())
	if len(matches) >= 4 {
		if l, parseErr := strconv.Atoi(matches[1]); parseErr == nil {
			line = l
		}
		if c, parseErr := strconv.Atoi(matches[2]); parseErr == nil {
			column = c
		}
	}
	return line, column
}

// formatFilterError turns a CEL error into a message an agent can act on:
// position, the short cause, and the fields it may use.
func formatFilterError(err error) string {
	if err == nil {
		return "Invalid filter expression"
	}

	line, column := extractErrorPosition(err)
	errMsg := simplifyErrorMessage(err.Error())

	var msg strings.Builder
	if column > 0 {
		msg.WriteString(fmt.Sprintf("Invalid filter at line %d, column %d: %s", line, column, errMsg))
	} else {
		msg.WriteString(fmt.Sprintf("Invalid filter: %s", errMsg))
	}

	msg.WriteString(". Available fields: ")
	msg.WriteString(strings.Join(activityFieldNames(), ", "))
	msg.WriteString(`. Example: activity.sport.startsWith("cycling") && activity.duration > 3600`)

	return msg.String()
}

// simplifyErrorMessage strips CEL prefixes and multi-line source context.
func simplifyErrorMessage(celError string) string {
	msg := celError

	msg = strings.ReplaceAll(msg, "ERROR: <input>:", "")

	if idx := strings.Index(msg, ": "); idx != -1 && idx < 10 {
		parts := strings.SplitN(msg, ": ", 2)
		if len(parts) == 2 {
			msg = parts[1]
		}
	}

	if idx := strings.Index(msg, "\n"); idx != -1 {
		msg = msg[:idx]
	}

	return strings.TrimSpace(msg)
}
