// Package discord adapts a Discord gateway session to the rest of the
// application: the synchronizer's transport, the command dispatcher,
// and remote log forwarding.
package discord

import (
	"context"
	stderrors "errors"
	"net"

	"github.com/bwmarrin/discordgo"

	"github.com/hpungsan/infoboard/internal/errors"
	"github.com/hpungsan/infoboard/internal/syncer"
)

// Session is the minimal surface of a discordgo session that the
// transport and log writer need. *discordgo.Session satisfies it.
type Session interface {
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// fetchBatchSize is the per-request history page size. 100 is the
// Discord API maximum.
const fetchBatchSize = 100

// Transport adapts a Session to the synchronizer's transport contract.
type Transport struct {
	session Session
}

// NewTransport creates a transport over the given session.
func NewTransport(session Session) *Transport {
	return &Transport{session: session}
}

// MessagesBefore returns one page of channel history strictly older
// than beforeID, newest first. An empty beforeID fetches the channel
// tail.
func (t *Transport) MessagesBefore(ctx context.Context, channelID, beforeID string) ([]syncer.Message, error) {
	msgs, err := t.session.ChannelMessages(channelID, fetchBatchSize, beforeID, "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify(err)
	}

	out := make([]syncer.Message, len(msgs))
	for i, m := range msgs {
		out[i] = syncer.Message{ID: m.ID}
	}
	return out, nil
}

// DeleteMessage removes a single message from a channel.
func (t *Transport) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	err := t.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
	return classify(err)
}

// SendMessage posts content to a channel and returns the new message's
// ID.
func (t *Transport) SendMessage(ctx context.Context, channelID, content string) (string, error) {
	msg, err := t.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return "", classify(err)
	}
	return msg.ID, nil
}

// classify maps session errors onto the application error codes the
// synchronizer distinguishes. Network-level failures and server-side
// 5xx responses are recoverable by refetching; everything else is not.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var restErr *discordgo.RESTError
	if stderrors.As(err, &restErr) {
		if restErr.Response != nil && restErr.Response.StatusCode >= 500 {
			return errors.NewTransientDisconnect(err)
		}
		return err
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return errors.NewTransientDisconnect(err)
	}

	return err
}
