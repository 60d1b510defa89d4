package bot

import (
	"fmt"
	"time"
)

// The direct message sent to a member when the away role is applied
func AwayNotice(roleName string, threshold time.Duration, keyword string, leaveChannel string) string {
	days := int(threshold.Hours() / 24)
	content := fmt.Sprintf("You have been marked as %s due to %d days of inactivity. ", roleName, days)
	content += "Send a message in any game channel or join a voice channel to remove this status."
	if leaveChannel != "" {
		content += fmt.Sprintf(" If you are away on purpose, post `%s` in #%s and you will be left alone.", keyword, leaveChannel)
	}
	return content
}
