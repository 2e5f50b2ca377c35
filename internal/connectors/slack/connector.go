// Package slack implements the Slack source connector. It fetches
// channel histories and thread replies, resolving user IDs to real
// names through a per-run cache.
package slack

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	slackapi "github.com/slack-go/slack"
	"golang.org/x/time/rate"

	"github.com/membox-labs/membox-cli/internal/core/domain"
	"github.com/membox-labs/membox-cli/internal/core/ports/driven"
	"github.com/membox-labs/membox-cli/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

const (
	// DefaultMessageLimit caps messages fetched per channel.
	DefaultMessageLimit = 100

	// DefaultReplyLimit caps replies fetched per thread, to avoid
	// unbounded API calls on long threads.
	DefaultReplyLimit = 20

	// apiRate is the proactive throttle for Slack Web API calls.
	apiRate = 1.0
)

// Config holds the Slack connector configuration.
type Config struct {
	// Token is a bot token (required).
	Token string

	// Channels lists channel IDs to fetch. Empty means every accessible
	// public and private channel.
	Channels []string

	// ReplyLimit caps thread replies per parent message (default 20).
	ReplyLimit int
}

// Connector fetches messages from the Slack Web API.
type Connector struct {
	cfg       Config
	client    *slackapi.Client
	limiter   *rate.Limiter
	userNames map[string]string
}

// New creates a Slack connector.
func New(cfg Config) *Connector {
	return &Connector{
		cfg:       cfg,
		limiter:   rate.NewLimiter(rate.Limit(apiRate), 3),
		userNames: make(map[string]string),
	}
}

// Source returns the slack tag.
func (c *Connector) Source() domain.SourceTag {
	return domain.SourceSlack
}

// Authenticate verifies the token with auth.test. A missing or rejected
// token disables the connector rather than aborting the run.
func (c *Connector) Authenticate(ctx context.Context) (bool, error) {
	if c.cfg.Token == "" {
		logger.Warn("Slack token not provided")
		return false, nil
	}

	c.client = slackapi.New(c.cfg.Token)

	resp, err := c.client.AuthTestContext(ctx)
	if err != nil {
		logger.Warn("Slack authentication failed: %v", err)
		return false, nil
	}

	logger.Info("Connected to Slack as %s in workspace %s", resp.User, resp.Team)
	return true, nil
}

// Fetch retrieves channel messages and thread replies. A failing
// channel degrades to partial results rather than aborting the batch.
func (c *Connector) Fetch(ctx context.Context, params driven.FetchParams) ([]driven.RawRecord, error) {
	if c.client == nil {
		return nil, domain.ErrNotAuthenticated
	}

	perChannel := params.MaxItems
	if perChannel <= 0 {
		perChannel = DefaultMessageLimit
	}

	channels := c.cfg.Channels
	if len(channels) == 0 {
		listed, err := c.listChannels(ctx)
		if err != nil {
			return nil, fmt.Errorf("list channels: %w", err)
		}
		channels = listed
	}

	var records []driven.RawRecord
	for _, channelID := range channels {
		channelRecords, err := c.fetchChannel(ctx, channelID, perChannel)
		if err != nil {
			logger.Warn("Error fetching messages from channel %s: %v", channelID, err)
			continue
		}
		records = append(records, channelRecords...)
	}

	return records, nil
}

// listChannels returns the IDs of all accessible channels.
func (c *Connector) listChannels(ctx context.Context) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	channels, _, err := c.client.GetConversationsContext(ctx, &slackapi.GetConversationsParameters{
		Types: []string{"public_channel", "private_channel"},
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(channels))
	for i, ch := range channels {
		ids[i] = ch.ID
	}
	return ids, nil
}

// fetchChannel collects the history of one channel plus thread replies.
func (c *Connector) fetchChannel(ctx context.Context, channelID string, limit int) ([]driven.RawRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	info, err := c.client.GetConversationInfoContext(ctx, &slackapi.GetConversationInfoInput{
		ChannelID: channelID,
	})
	if err != nil {
		return nil, fmt.Errorf("channel info: %w", err)
	}
	channelName := info.Name

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	history, err := c.client.GetConversationHistoryContext(ctx, &slackapi.GetConversationHistoryParameters{
		ChannelID: channelID,
		Limit:     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("channel history: %w", err)
	}

	var records []driven.RawRecord
	for i := range history.Messages {
		msg := &history.Messages[i]
		if skipMessage(msg) {
			continue
		}

		records = append(records, c.messageRecord(ctx, msg, channelName, ""))

		// Thread parents carry their own ts as thread_ts.
		if msg.ThreadTimestamp != "" && msg.ThreadTimestamp == msg.Timestamp {
			replies, err := c.fetchReplies(ctx, channelID, channelName, msg.Timestamp)
			if err != nil {
				logger.Warn("Error fetching thread replies: %v", err)
				continue
			}
			records = append(records, replies...)
		}
	}

	return records, nil
}

// fetchReplies collects the replies of one thread, excluding the parent.
func (c *Connector) fetchReplies(
	ctx context.Context, channelID, channelName, threadTS string,
) ([]driven.RawRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	replyLimit := c.cfg.ReplyLimit
	if replyLimit <= 0 {
		replyLimit = DefaultReplyLimit
	}

	msgs, _, _, err := c.client.GetConversationRepliesContext(ctx, &slackapi.GetConversationRepliesParameters{
		ChannelID: channelID,
		Timestamp: threadTS,
		Limit:     replyLimit,
	})
	if err != nil {
		return nil, err
	}

	var records []driven.RawRecord
	for i := range msgs {
		// The first message is the parent, already recorded.
		if msgs[i].Timestamp == threadTS {
			continue
		}
		records = append(records, c.messageRecord(ctx, &msgs[i], channelName, threadTS))
	}

	return records, nil
}

// skipMessage filters out system noise without text.
func skipMessage(msg *slackapi.Message) bool {
	switch msg.SubType {
	case "bot_message", "channel_join":
		return msg.Text == ""
	default:
		return false
	}
}

// messageRecord converts one Slack message to a raw record.
func (c *Connector) messageRecord(
	ctx context.Context, msg *slackapi.Message, channelName, parentTS string,
) driven.RawRecord {
	rec := driven.RawRecord{
		"id":        msg.Timestamp,
		"channel":   channelName,
		"sender":    c.userName(ctx, msg.User),
		"timestamp": msg.Timestamp,
		"message":   msg.Text,
		"thread_ts": msg.ThreadTimestamp,
	}
	if parentTS != "" {
		rec["parent_msg_id"] = parentTS
	}
	return rec
}

// userName resolves a user ID to a real name, caching per run.
func (c *Connector) userName(ctx context.Context, userID string) string {
	if userID == "" {
		return "Unknown"
	}
	if name, ok := c.userNames[userID]; ok {
		return name
	}

	name := "Unknown"
	if err := c.limiter.Wait(ctx); err == nil {
		if user, err := c.client.GetUserInfoContext(ctx, userID); err == nil && user.RealName != "" {
			name = user.RealName
		}
	}

	c.userNames[userID] = name
	return name
}

// Normalize converts raw Slack records into canonical documents.
// Message IDs are "slack_<ts>" with dots replaced so they stay valid
// across stores; timestamps become ISO-8601.
func (c *Connector) Normalize(records []driven.RawRecord) []domain.Document {
	docs := make([]domain.Document, 0, len(records))
	for _, rec := range records {
		ts := stringField(rec, "id")

		doc := domain.Document{
			ID:      messageID(ts),
			Source:  domain.SourceSlack,
			Sender:  stringField(rec, "sender"),
			Created: isoTimestamp(stringField(rec, "timestamp")),
			Body:    stringField(rec, "message"),
			Extra: map[string]any{
				"channel": stringField(rec, "channel"),
			},
		}

		if threadTS := stringField(rec, "thread_ts"); threadTS != "" && threadTS != ts {
			doc.Extra["thread_id"] = messageID(threadTS)
		}

		docs = append(docs, doc)
	}
	return docs
}

// messageID builds a store-safe ID from a Slack timestamp.
func messageID(ts string) string {
	return "slack_" + strings.ReplaceAll(ts, ".", "_")
}

// isoTimestamp converts a Slack epoch timestamp to ISO-8601.
// Unparseable input passes through unchanged.
func isoTimestamp(ts string) string {
	if ts == "" {
		return ""
	}
	seconds, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return ts
	}
	return time.Unix(int64(seconds), 0).UTC().Format("2006-01-02T15:04:05")
}

// stringField reads a raw record value as a string.
func stringField(rec driven.RawRecord, key string) string {
	if v, ok := rec[key].(string); ok {
		return v
	}
	return ""
}
