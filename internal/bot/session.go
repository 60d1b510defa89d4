package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Session is the slice of the discord session this bot needs.
// Keeping it an interface lets the tests substitute a fake for the
// real connection
type Session interface {
	GuildRoles(guildid string) ([]*discordgo.Role, error)
	GuildChannels(guildid string) ([]*discordgo.Channel, error)
	GuildMembers(guildid string, after string, limit int) ([]*discordgo.Member, error)
	GuildMember(guildid string, userid string) (*discordgo.Member, error)
	GuildMemberRoleAdd(guildid string, userid string, roleid string) error
	GuildMemberRoleRemove(guildid string, userid string, roleid string) error
	Channel(channelid string) (*discordgo.Channel, error)
	ChannelMessages(channelid string, limit int) ([]*discordgo.Message, error)
	SendDM(userid string, content string) error
}

// discordSession adapts a real discordgo session to the Session interface
type discordSession struct {
	discord *discordgo.Session
}

func (s *discordSession) GuildRoles(guildid string) ([]*discordgo.Role, error) {
	return s.discord.GuildRoles(guildid)
}

func (s *discordSession) GuildChannels(guildid string) ([]*discordgo.Channel, error) {
	return s.discord.GuildChannels(guildid)
}

func (s *discordSession) GuildMembers(guildid string, after string, limit int) ([]*discordgo.Member, error) {
	return s.discord.GuildMembers(guildid, after, limit)
}

func (s *discordSession) GuildMember(guildid string, userid string) (*discordgo.Member, error) {
	return s.discord.GuildMember(guildid, userid)
}

func (s *discordSession) GuildMemberRoleAdd(guildid string, userid string, roleid string) error {
	return s.discord.GuildMemberRoleAdd(guildid, userid, roleid)
}

func (s *discordSession) GuildMemberRoleRemove(guildid string, userid string, roleid string) error {
	return s.discord.GuildMemberRoleRemove(guildid, userid, roleid)
}

// The state cache spares a REST call for channels seen before
func (s *discordSession) Channel(channelid string) (*discordgo.Channel, error) {
	if channel, err := s.discord.State.Channel(channelid); err == nil {
		return channel, nil
	}
	return s.discord.Channel(channelid)
}

func (s *discordSession) ChannelMessages(channelid string, limit int) ([]*discordgo.Message, error) {
	return s.discord.ChannelMessages(channelid, limit, "", "", "")
}

// Direct messages go through a dedicated DM channel per user
func (s *discordSession) SendDM(userid string, content string) error {
	channel, err := s.discord.UserChannelCreate(userid)
	if err != nil {
		return fmt.Errorf("could not open DM channel for user %s: %w", userid, err)
	}
	if _, err := s.discord.ChannelMessageSend(channel.ID, content); err != nil {
		return fmt.Errorf("could not send DM to user %s: %w", userid, err)
	}
	return nil
}
