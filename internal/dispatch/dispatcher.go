// Package dispatch turns verified webhook bodies into an immediate
// acknowledgement plus, when warranted, one background reply task.
package dispatch

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"slackbridge/internal/event"
	"slackbridge/internal/log"
)

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Poster delivers a message to a channel.
type Poster interface {
	Post(ctx context.Context, channel, text string) error
}

// Trainer is the optional training-mode flow. Evaluate reports handled=false
// when the message should fall through to normal chat.
type Trainer interface {
	Start(ctx context.Context, user, channel string) error
	Stop(ctx context.Context, user, channel string) error
	Evaluate(ctx context.Context, user, channel, text string) (bool, error)
}

// failSoftNotice is posted to the channel when the reply pipeline breaks,
// instead of dropping the message silently.
const failSoftNotice = "Sorry, something went wrong while handling your message."

// noticeTimeout bounds the fail-soft notice post.
const noticeTimeout = 10 * time.Second

var stopCommands = map[string]struct{}{
	"stop training": {},
	"exit training": {},
	"quit training": {},
	"exit":          {},
}

// Dispatcher classifies verified events and schedules their handling.
type Dispatcher struct {
	sched   Scheduler
	gen     Generator
	post    Poster
	trainer Trainer
	logger  *slog.Logger
}

// New creates a Dispatcher. trainer may be nil, which disables the training
// flow and routes every message to plain chat.
func New(sched Scheduler, gen Generator, post Poster, trainer Trainer) *Dispatcher {
	return &Dispatcher{
		sched:   sched,
		gen:     gen,
		post:    post,
		trainer: trainer,
		logger:  log.WithComponent("dispatch"),
	}
}

// Dispatch handles a verified raw body. It always returns quickly: any
// outbound work is scheduled on the background runner, never awaited here.
func (d *Dispatcher) Dispatch(body []byte) Ack {
	env := event.Parse(body)

	switch env.Classify() {
	case event.TypeURLVerification:
		// Setup handshake: echo the challenge byte-for-byte, nothing else.
		return AckChallenge(env.Challenge)

	case event.TypeEventCallback:
		d.handleCallback(env)
		return AckOK()

	default:
		return AckOK()
	}
}

func (d *Dispatcher) handleCallback(env event.Envelope) {
	ev := env.Event

	if ev.FromBot() {
		// Replying to bot traffic would loop two bots at each other forever.
		d.logger.Debug("ignoring bot-originated event", "channel", ev.Channel)
		return
	}
	if ev.Channel == "" {
		d.logger.Debug("ignoring event without channel", "event_id", env.EventID)
		return
	}

	text := event.StripMention(ev.Text)
	if text == "" {
		d.logger.Debug("ignoring event without extractable text", "channel", ev.Channel)
		return
	}

	task := ReplyTask{
		Kind:    classifyCommand(text, d.trainer != nil),
		User:    ev.User,
		Channel: ev.Channel,
		Prompt:  text,
	}
	task.ID = d.sched.Submit(string(task.Kind), func(ctx context.Context) error {
		return d.execute(ctx, task)
	})

	d.logger.Info("task scheduled",
		"task_id", task.ID, "kind", task.Kind, "channel", task.Channel, "user", task.User)
}

func classifyCommand(text string, trainingEnabled bool) Kind {
	if !trainingEnabled {
		return KindReply
	}
	lower := strings.ToLower(text)
	if _, ok := stopCommands[lower]; ok {
		return KindStopTraining
	}
	if strings.Contains(lower, "start training") {
		return KindStartTraining
	}
	return KindReply
}

// execute runs a scheduled task. Upstream failures stay here: they are
// logged by the runner and answered with a best-effort notice, never
// propagated back toward the HTTP path. The notice gets its own deadline:
// the task context is usually already expired when we reach it.
func (d *Dispatcher) execute(ctx context.Context, t ReplyTask) error {
	err := d.run(ctx, t)
	if err != nil {
		noticeCtx, cancel := context.WithTimeout(context.Background(), noticeTimeout)
		defer cancel()
		if postErr := d.post.Post(noticeCtx, t.Channel, failSoftNotice); postErr != nil {
			d.logger.Warn("failed to deliver error notice", "channel", t.Channel, "error", postErr)
		}
	}
	return err
}

func (d *Dispatcher) run(ctx context.Context, t ReplyTask) error {
	switch t.Kind {
	case KindStopTraining:
		return d.trainer.Stop(ctx, t.User, t.Channel)

	case KindStartTraining:
		return d.trainer.Start(ctx, t.User, t.Channel)

	default:
		if d.trainer != nil {
			handled, err := d.trainer.Evaluate(ctx, t.User, t.Channel, t.Prompt)
			if err != nil {
				return err
			}
			if handled {
				return nil
			}
		}

		answer, err := d.gen.Generate(ctx, t.Prompt)
		if err != nil {
			return err
		}
		return d.post.Post(ctx, t.Channel, answer)
	}
}
