package discord

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
)

// Bot owns the gateway connection and routes message events to the
// dispatcher.
type Bot struct {
	session    *discordgo.Session
	dispatcher *Dispatcher
}

// NewBot creates a gateway client for the given token. The dispatcher
// is attached afterwards with SetDispatcher because it needs the
// session itself for note posting.
func NewBot(token string) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	b := &Bot{session: session}
	session.AddHandler(b.onMessageCreate)
	return b, nil
}

// Session returns the underlying gateway session.
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

// SetDispatcher attaches the command dispatcher. Messages arriving
// before this is called are dropped.
func (b *Bot) SetDispatcher(d *Dispatcher) {
	b.dispatcher = d
}

// Open connects to the gateway and starts receiving events.
func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening gateway connection: %w", err)
	}
	return nil
}

// Close shuts down the gateway connection.
func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if b.dispatcher == nil {
		return
	}
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	reply, handled := b.dispatcher.Handle(context.Background(), Incoming{
		ServerID:   m.GuildID,
		ChannelID:  m.ChannelID,
		AuthorID:   m.Author.ID,
		AuthorName: m.Author.Username,
		Content:    m.Content,
	})
	if !handled || reply == "" {
		return
	}

	if _, err := s.ChannelMessageSend(m.ChannelID, reply); err != nil {
		log.Printf("replying in channel %s: %v", m.ChannelID, err)
	}
}
