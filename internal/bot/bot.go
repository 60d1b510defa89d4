package bot

import (
	"fmt"
	"os"
	"os/signal"
	"slices"
	"sync"
	"time"

	"miabot/internal/activity"
	"miabot/internal/common"
	"miabot/internal/config"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// How often the main loop wakes up to offer the sweep executor a run
const mainCycle = time.Minute

type Bot struct {
	token   string
	cfg     config.Config
	store   *activity.Store
	tracker Tracker
	session Session

	sweepExecutor common.TimedExecutor
	dmPacer       *common.Pacer

	mu         sync.Mutex
	guildid    string
	awayRoleid string

	// Written by the ready handler, read by the run loop
	ready chan string
}

func CreateBot(token string, cfg config.Config, store *activity.Store) *Bot {
	bot := &Bot{
		token:   token,
		cfg:     cfg,
		store:   store,
		tracker: NewTracker(cfg.Tracking.Categories),
		dmPacer: common.NewPacer(common.Restriction{Requests: 5, Window: 10 * time.Second}),
		ready:   make(chan string, 1),
	}
	bot.sweepExecutor = common.NewTimedExecutor(cfg.Away.SweepInterval(), bot.sweep)
	return bot
}

func (bot *Bot) Run() error {

	// Create session
	discord, err := discordgo.New("Bot " + bot.token)
	if err != nil {
		return fmt.Errorf("could not create discord session: %w", err)
	}
	discord.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMembers |
		discordgo.IntentMessageContent

	// Event handlers
	discord.AddHandler(bot.onReady)
	discord.AddHandler(bot.onMessage)
	discord.AddHandler(bot.onVoiceStateUpdate)

	bot.session = &discordSession{discord}

	// Open session
	if err := discord.Open(); err != nil {
		return fmt.Errorf("could not open discord session: %w", err)
	}
	defer discord.Close()

	// Keep the bot running until there is an os interruption (ctrl + C).
	// Sweeps only ever run on this goroutine, so two cycles can never overlap
	ticker := time.NewTicker(mainCycle)
	defer ticker.Stop()
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	for {
		select {
		case guildid := <-bot.ready:
			bot.setGuild(guildid)
			bot.sweepExecutor.Execute()
		case <-ticker.C:
			if bot.guild() != "" {
				bot.sweepExecutor.Execute()
			}
		case <-interrupt:
			log.Info().Msg("Interrupt received, shutting down")
			return nil
		}
	}
}

func (bot *Bot) onReady(discord *discordgo.Session, ready *discordgo.Ready) {
	log.Info().Msg(fmt.Sprintf("Logged in as %s", ready.User.Username))
	if len(ready.Guilds) == 0 {
		log.Error().Msg("Bot is not a member of any guild")
		return
	}

	// Single guild assumption: operate on the first guild
	select {
	case bot.ready <- ready.Guilds[0].ID:
	default:
	}
}

func (bot *Bot) onMessage(discord *discordgo.Session, message *discordgo.MessageCreate) {

	// Reject bot messages, my own included
	if message.Author == nil || message.Author.Bot {
		return
	}

	// Ignore messages from private channels
	if message.GuildID == "" {
		return
	}

	bot.handleMessage(message)
}

func (bot *Bot) handleMessage(message *discordgo.MessageCreate) {
	if !bot.trackedChannel(message.ChannelID) {
		return
	}
	log.Debug().Msg(fmt.Sprintf("Recording message activity for user %s", message.Author.ID))
	bot.recordActivity(message.Author.ID)
}

func (bot *Bot) onVoiceStateUpdate(discord *discordgo.Session, state *discordgo.VoiceStateUpdate) {
	bot.handleVoiceState(state)
}

func (bot *Bot) handleVoiceState(state *discordgo.VoiceStateUpdate) {

	// Only joining a channel counts as activity, leaving does not
	if state.ChannelID == "" {
		return
	}
	if !bot.trackedChannel(state.ChannelID) {
		return
	}
	log.Debug().Msg(fmt.Sprintf("Recording voice activity for user %s", state.UserID))
	bot.recordActivity(state.UserID)
}

// Update the activity store and, if the user had been silent long enough
// to carry the away role, clear that role: the notification promises that
// coming back removes the status, so the bot honours it
func (bot *Bot) recordActivity(userid string) {
	previous := bot.store.LastSeen(userid)
	bot.store.Record(userid, time.Now())
	if time.Since(previous) > bot.cfg.Away.Threshold() {
		bot.clearAway(userid)
	}
}

func (bot *Bot) trackedChannel(channelid string) bool {
	channel, err := bot.session.Channel(channelid)
	if err != nil {
		log.Debug().Msg(fmt.Sprintf("Could not resolve channel %s: %s", channelid, err))
		return false
	}
	if channel.ParentID == "" {
		return false
	}
	parent, err := bot.session.Channel(channel.ParentID)
	if err != nil {
		log.Debug().Msg(fmt.Sprintf("Could not resolve parent category of channel %s: %s", channel.Name, err))
		return false
	}
	tracked := bot.tracker.Tracked(channel, parent)
	log.Debug().Msg(fmt.Sprintf("Checking channel %s, tracked: %t", channel.Name, tracked))
	return tracked
}

// Remove the away role from a member who has just shown activity
func (bot *Bot) clearAway(userid string) {
	guildid := bot.guild()
	if guildid == "" {
		return
	}
	roleid, err := bot.awayRole(guildid)
	if err != nil {
		log.Warn().Msg(fmt.Sprintf("Could not resolve the away role: %s", err))
		return
	}
	member, err := bot.session.GuildMember(guildid, userid)
	if err != nil {
		log.Warn().Msg(fmt.Sprintf("Could not fetch member %s: %s", userid, err))
		return
	}
	if !slices.Contains(member.Roles, roleid) {
		return
	}
	if err := bot.session.GuildMemberRoleRemove(guildid, userid, roleid); err != nil {
		log.Error().Msg(fmt.Sprintf("Could not remove the away role from user %s: %s", userid, err))
		return
	}
	log.Info().Msg(fmt.Sprintf("User %s is active again, away role removed", userid))
}

// The id of the away role, resolved by name once and cached.
// The sweep refreshes the cache every cycle in case the role was recreated
func (bot *Bot) awayRole(guildid string) (string, error) {
	bot.mu.Lock()
	roleid := bot.awayRoleid
	bot.mu.Unlock()
	if roleid != "" {
		return roleid, nil
	}

	roleid, err := findRole(bot.session, guildid, bot.cfg.Away.RoleName)
	if err != nil {
		return "", err
	}
	bot.setAwayRole(roleid)
	return roleid, nil
}

func (bot *Bot) setAwayRole(roleid string) {
	bot.mu.Lock()
	bot.awayRoleid = roleid
	bot.mu.Unlock()
}

func (bot *Bot) guild() string {
	bot.mu.Lock()
	defer bot.mu.Unlock()
	return bot.guildid
}

func (bot *Bot) setGuild(guildid string) {
	bot.mu.Lock()
	bot.guildid = guildid
	bot.mu.Unlock()
}

func findRole(session Session, guildid string, name string) (string, error) {
	roles, err := session.GuildRoles(guildid)
	if err != nil {
		return "", fmt.Errorf("could not list roles of guild %s: %w", guildid, err)
	}
	for _, role := range roles {
		if role.Name == name {
			return role.ID, nil
		}
	}
	return "", fmt.Errorf("no role named %q in guild %s", name, guildid)
}

func findChannel(session Session, guildid string, name string) (string, error) {
	channels, err := session.GuildChannels(guildid)
	if err != nil {
		return "", fmt.Errorf("could not list channels of guild %s: %w", guildid, err)
	}
	for _, channel := range channels {
		if channel.Name == name {
			return channel.ID, nil
		}
	}
	return "", fmt.Errorf("no channel named %q in guild %s", name, guildid)
}
