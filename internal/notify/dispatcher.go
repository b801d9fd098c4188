package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/CosmoTheDev/gl2gh/internal/config"
	"github.com/CosmoTheDev/gl2gh/internal/migrate"
)

// Dispatcher fans out events to all configured channels.
type Dispatcher struct {
	channels []Channel
	events   map[string]bool
}

var defaultEvents = map[string]bool{
	EventCopyCompleted: true,
	EventCopyFailed:    true,
}

// NewDispatcher creates a Dispatcher from cfg. Only channels with
// IsConfigured() == true are active.
func NewDispatcher(cfg config.NotifyConfig) *Dispatcher {
	return newDispatcher(cfg.Events, NewSlack(cfg.Slack), NewWebhook(cfg.Webhook))
}

func newDispatcher(events []string, channels ...Channel) *Dispatcher {
	d := &Dispatcher{events: defaultEvents}
	if len(events) > 0 {
		d.events = make(map[string]bool, len(events))
		for _, e := range events {
			d.events[e] = true
		}
	}
	for _, ch := range channels {
		if ch.IsConfigured() {
			d.channels = append(d.channels, ch)
		}
	}
	return d
}

// IsAnyConfigured returns true if at least one channel is ready to send.
func (d *Dispatcher) IsAnyConfigured() bool {
	return len(d.channels) > 0
}

func (d *Dispatcher) Name() string { return "notify" }

// Notify sends evt to all configured channels. Errors are logged but never returned.
func (d *Dispatcher) Notify(ctx context.Context, evt Event) {
	if !d.events[evt.Type] {
		return
	}
	for _, ch := range d.channels {
		if err := ch.Send(ctx, evt); err != nil {
			slog.Warn("notify: channel send failed", "channel", ch.Name(), "event", evt.Type, "error", err)
		}
	}
}

// ObserveCopy turns a finished copy-content run into an event.
func (d *Dispatcher) ObserveCopy(ctx context.Context, report *migrate.CopyReport) error {
	if report == nil || !d.IsAnyConfigured() {
		return nil
	}
	d.Notify(ctx, CopyEvent(report))
	return nil
}

// CopyEvent summarises report as a copy_completed or copy_failed event.
func CopyEvent(report *migrate.CopyReport) Event {
	owner := report.Owner
	if owner == "" {
		owner = "current user"
	}
	evt := Event{
		Type:  EventCopyCompleted,
		Group: report.Group,
		Owner: report.Owner,
		Counts: map[string]int{
			"projects":        report.Total(),
			"failed_projects": report.FailedProjects(),
			"pushed_refs":     report.PushedRefs(),
			"failed_refs":     report.FailedRefs(),
		},
	}
	if report.Err != nil {
		evt.Type = EventCopyFailed
		evt.Failed = true
		evt.Title = fmt.Sprintf("gl2gh: copy of %s failed", report.Group)
		evt.Body = report.Err.Error()
		return evt
	}
	for _, p := range report.Projects {
		if p.Failed() {
			evt.Failures = append(evt.Failures, fmt.Sprintf("%s: %v", p.Project.Name, p.Err))
			continue
		}
		for _, rf := range p.FailedRefs {
			evt.Failures = append(evt.Failures, fmt.Sprintf("%s: %s: %v", p.Project.Name, rf.Ref, rf.Err))
		}
		if p.Destination != nil && p.Destination.HTMLURL != "" {
			if evt.Repositories == nil {
				evt.Repositories = make(map[string]string)
			}
			evt.Repositories[p.Project.Name] = p.Destination.HTMLURL
		}
	}
	evt.Title = fmt.Sprintf("gl2gh: copied %s to %s", report.Group, owner)
	evt.Body = fmt.Sprintf("%d projects, %d failed before push; %d refs pushed, %d refs failed",
		report.Total(), report.FailedProjects(), report.PushedRefs(), report.FailedRefs())
	if report.FailedProjects() > 0 || report.FailedRefs() > 0 {
		evt.Failed = true
	}
	return evt
}
