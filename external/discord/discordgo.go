package discord

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/foxseedlab/callinterview/internal/notifier"
)

// SummaryPoster posts finished interviews to a Discord channel. It only uses
// the REST API, so no gateway connection is opened.
type SummaryPoster struct {
	token     string
	channelID string

	mu      sync.Mutex
	session *discordgo.Session
}

func NewSummaryPoster(token, channelID string) *SummaryPoster {
	return &SummaryPoster{token: token, channelID: channelID}
}

func (p *SummaryPoster) NotifyInterviewFinished(ctx context.Context, summary notifier.InterviewSummary) error {
	s, err := p.getSession()
	if err != nil {
		return err
	}
	_, err = s.ChannelMessageSendComplex(p.channelID, &discordgo.MessageSend{
		Content: summaryHeadline(summary),
		Files: []*discordgo.File{
			{Name: summaryFilename(summary), ContentType: "text/plain", Reader: bytes.NewReader([]byte(summary.Text))},
		},
	}, discordgo.WithContext(ctx))
	return err
}

func (p *SummaryPoster) getSession() (*discordgo.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session != nil {
		return p.session, nil
	}
	s, err := discordgo.New("Bot " + p.token)
	if err != nil {
		return nil, err
	}
	p.session = s
	return s, nil
}

func summaryHeadline(s notifier.InterviewSummary) string {
	return fmt.Sprintf("Interview finished: %s (%d/%d answered, call %s)", s.PhoneNumber, s.AnsweredCount, s.QuestionCount, s.CallStatus)
}

func summaryFilename(s notifier.InterviewSummary) string {
	return fmt.Sprintf("interview-%s.txt", s.CallID)
}
