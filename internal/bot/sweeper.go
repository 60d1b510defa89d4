package bot

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// How many recent messages of the on-leave channel are scanned for the
// exemption keyword
const messageLookback = 100

// Discord serves at most this many members per request
const memberPageSize = 1000

// sweep runs one full inactivity pass over the guild members: every
// non-bot member without the away role whose last activity is older than
// the threshold gets the role and a direct message, unless the member
// posted the exemption keyword in the on-leave channel recently.
// One member failing must not abort the rest of the sweep
func (bot *Bot) sweep() {
	logger := log.With().Str("sweep", uuid.New().String()).Logger()

	guildid := bot.guild()
	start := time.Now()
	logger.Info().Msg(fmt.Sprintf("Starting inactivity sweep of guild %s", guildid))

	// Without the away role there is nothing to apply; abort the cycle
	roleid, err := findRole(bot.session, guildid, bot.cfg.Away.RoleName)
	if err != nil {
		logger.Error().Msg(fmt.Sprintf("Aborting sweep: %s", err))
		return
	}
	bot.setAwayRole(roleid)

	exempt := bot.exemptions(guildid, logger)

	members, err := listMembers(bot.session, guildid)
	if err != nil {
		logger.Error().Msg(fmt.Sprintf("Aborting sweep: %s", err))
		return
	}

	threshold := bot.cfg.Away.Threshold()
	notice := AwayNotice(bot.cfg.Away.RoleName, threshold, bot.cfg.Away.ExemptKeyword, bot.cfg.Away.LeaveChannel)
	var seen, marked, exempted, failures int
	for _, member := range members {

		// Bots and members already away are never evaluated
		if member.User == nil || member.User.Bot || slices.Contains(member.Roles, roleid) {
			continue
		}
		seen++

		userid := member.User.ID
		if _, ok := exempt[userid]; ok {
			exempted++
			logger.Debug().Msg(fmt.Sprintf("User %s is on leave, skipping", userid))
			continue
		}
		if time.Since(bot.store.LastSeen(userid)) <= threshold {
			continue
		}

		if err := bot.markAway(guildid, userid, roleid, notice); err != nil {
			failures++
			logger.Error().Msg(fmt.Sprintf("Could not mark user %s as away: %s", userid, err))
			continue
		}
		marked++
		logger.Info().Msg(fmt.Sprintf("User %s marked as %s after inactivity", userid, bot.cfg.Away.RoleName))
	}

	logger.Info().Msg(fmt.Sprintf("Sweep finished in %s: %d members seen, %d marked away, %d on leave, %d failures",
		time.Since(start).Round(time.Millisecond), seen, marked, exempted, failures))
}

// Apply the away role and notify the member.
// A failed notification does not undo the role
func (bot *Bot) markAway(guildid string, userid string, roleid string, notice string) error {
	if err := bot.session.GuildMemberRoleAdd(guildid, userid, roleid); err != nil {
		return fmt.Errorf("could not add role: %w", err)
	}

	// Pace the notifications so a large backlog does not burst DMs
	bot.dmPacer.Wait()
	if err := bot.session.SendDM(userid, notice); err != nil {
		return fmt.Errorf("could not notify: %w", err)
	}
	return nil
}

// The set of users who posted the exemption keyword in the on-leave
// channel recently. A missing channel just means nobody is exempt
// this cycle, not an error
func (bot *Bot) exemptions(guildid string, logger zerolog.Logger) map[string]struct{} {
	exempt := map[string]struct{}{}

	channelid, err := findChannel(bot.session, guildid, bot.cfg.Away.LeaveChannel)
	if err != nil {
		logger.Warn().Msg(fmt.Sprintf("Skipping exemptions this cycle: %s", err))
		return exempt
	}
	messages, err := bot.session.ChannelMessages(channelid, messageLookback)
	if err != nil {
		logger.Warn().Msg(fmt.Sprintf("Could not fetch messages of channel %s, skipping exemptions: %s",
			bot.cfg.Away.LeaveChannel, err))
		return exempt
	}

	for _, message := range messages {
		if message.Author != nil && strings.Contains(message.Content, bot.cfg.Away.ExemptKeyword) {
			exempt[message.Author.ID] = struct{}{}
		}
	}
	return exempt
}

// Page through the full member list of the guild
func listMembers(session Session, guildid string) ([]*discordgo.Member, error) {
	var members []*discordgo.Member
	after := ""
	for {
		page, err := session.GuildMembers(guildid, after, memberPageSize)
		if err != nil {
			return nil, fmt.Errorf("could not list members of guild %s: %w", guildid, err)
		}
		members = append(members, page...)
		if len(page) < memberPageSize {
			return members, nil
		}
		after = page[len(page)-1].User.ID
	}
}
