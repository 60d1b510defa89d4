package bot

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"miabot/internal/activity"
	"miabot/internal/config"

	"github.com/bwmarrin/discordgo"
)

type sentDM struct {
	userid  string
	content string
}

// fakeSession records every platform side effect the bot issues
type fakeSession struct {
	roles    []*discordgo.Role
	channels []*discordgo.Channel
	members  []*discordgo.Member
	messages map[string][]*discordgo.Message

	roleAddErr map[string]error
	dmErr      map[string]error

	roleAdds    []string
	roleRemoves []string
	dms         []sentDM
}

func (f *fakeSession) GuildRoles(guildid string) ([]*discordgo.Role, error) {
	return f.roles, nil
}

func (f *fakeSession) GuildChannels(guildid string) ([]*discordgo.Channel, error) {
	return f.channels, nil
}

func (f *fakeSession) GuildMembers(guildid string, after string, limit int) ([]*discordgo.Member, error) {
	if after != "" {
		return nil, nil
	}
	return f.members, nil
}

func (f *fakeSession) GuildMember(guildid string, userid string) (*discordgo.Member, error) {
	for _, member := range f.members {
		if member.User != nil && member.User.ID == userid {
			return member, nil
		}
	}
	return nil, errors.New("member not found")
}

func (f *fakeSession) GuildMemberRoleAdd(guildid string, userid string, roleid string) error {
	if err := f.roleAddErr[userid]; err != nil {
		return err
	}
	f.roleAdds = append(f.roleAdds, userid+":"+roleid)
	return nil
}

func (f *fakeSession) GuildMemberRoleRemove(guildid string, userid string, roleid string) error {
	f.roleRemoves = append(f.roleRemoves, userid+":"+roleid)
	return nil
}

func (f *fakeSession) Channel(channelid string) (*discordgo.Channel, error) {
	for _, channel := range f.channels {
		if channel.ID == channelid {
			return channel, nil
		}
	}
	return nil, errors.New("channel not found")
}

func (f *fakeSession) ChannelMessages(channelid string, limit int) ([]*discordgo.Message, error) {
	return f.messages[channelid], nil
}

func (f *fakeSession) SendDM(userid string, content string) error {
	if err := f.dmErr[userid]; err != nil {
		return err
	}
	f.dms = append(f.dms, sentDM{userid, content})
	return nil
}

func testConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.Tracking.Categories = []string{"APEX LEGENDS", "VALORANT"}
	cfg.Tracking.StoreFile = filepath.Join(t.TempDir(), "activity.json")
	cfg.Away.ThresholdDays = 5
	return cfg
}

func newTestBot(t *testing.T, fake *fakeSession) *Bot {
	cfg := testConfig(t)
	bot := CreateBot("token", cfg, activity.NewStore(cfg.Tracking.StoreFile))
	bot.session = fake
	bot.guildid = "guild"
	return bot
}

func daysAgo(days int) time.Time {
	return time.Now().Add(-time.Duration(days) * 24 * time.Hour)
}
