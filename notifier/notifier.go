// Package notifier announces forum activity on Slack through the server's
// hook mechanism.
package notifier

import (
	"fmt"

	"github.com/GunnarEriksson/askme"
	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
)

type SlackNotifier struct {
	client  *slack.Client
	channel string
	baseURL string
	logger  zerolog.Logger
}

func New(token string, channel string, baseURL string, logger zerolog.Logger) *SlackNotifier {
	return &SlackNotifier{
		client:  slack.New(token),
		channel: channel,
		baseURL: baseURL,
		logger:  logger,
	}
}

// QuestionHook returns a hook posting newly asked questions to the channel.
func (n *SlackNotifier) QuestionHook() askme.QuestionHook {
	return func(question *askme.Question) error {
		text := fmt.Sprintf("%v asked: *%v*\n%v/questions/%v",
			question.Author, question.Title, n.baseURL, question.ID)
		_, _, err := n.client.PostMessage(n.channel, slack.MsgOptionText(text, false))
		if err != nil {
			// a chat outage must never fail a submission
			n.logger.Error().Err(err).Msg("failed to post question notification")
		}
		return nil
	}
}

// CommentHook returns a hook posting new comments to the channel.
func (n *SlackNotifier) CommentHook() askme.CommentHook {
	return func(question *askme.Question, comment *askme.Comment) error {
		text := fmt.Sprintf("%v commented on *%v*\n%v/questions/%v",
			comment.Author, question.Title, n.baseURL, question.ID)
		_, _, err := n.client.PostMessage(n.channel, slack.MsgOptionText(text, false))
		if err != nil {
			n.logger.Error().Err(err).Msg("failed to post comment notification")
		}
		return nil
	}
}
