package core

import (
	"errors"
	"runtime/debug"

	"github.com/keshon/dtscommands/pkg/jobmgr"
)

// invocation is one matched action waiting to pass its gates.
type invocation interface {
	action() Action
	actorID() string
	guildID() string
	channelID() string
	// blocked runs the kind's gate chain and reports whether it stopped.
	blocked() bool
	run() error
	// respond answers the actor and returns a function deleting the answer.
	respond(r *Reply) (func() error, error)
}

// dispatch gates inv and launches its handler on a detached task.
func (r *Router) dispatch(inv invocation) {
	if r.gatesBlocked(inv) {
		return
	}
	a := inv.action()
	r.record(inv)
	r.jobs.Go(a.Kind().String()+":"+a.Key(), inv.run, func(err error) {
		if err != nil {
			r.handlerFailed(inv, err)
		}
	})
}

// gatesBlocked runs the gate chain. A panicking gate blocks the invocation.
func (r *Router) gatesBlocked(inv invocation) (blocked bool) {
	defer func() {
		if p := recover(); p != nil {
			a := inv.action()
			r.log.Error().
				Interface("panic", p).
				Bytes("stack", debug.Stack()).
				Str("kind", a.Kind().String()).
				Str("action", a.Key()).
				Str("user", inv.actorID()).
				Msg("gate panicked")
			blocked = true
		}
	}()
	return inv.blocked()
}

func (r *Router) record(inv invocation) {
	if r.o.Recorder == nil {
		return
	}
	a := inv.action()
	err := r.o.Recorder.RecordInvocation(Record{
		Kind:      a.Kind(),
		Action:    a.Key(),
		GuildID:   inv.guildID(),
		ChannelID: inv.channelID(),
		UserID:    inv.actorID(),
		At:        r.now(),
	})
	if err != nil {
		r.log.Warn().Err(err).Str("action", a.Key()).Msg("failed to record invocation")
	}
}

// handlerFailed turns a handler error into a notice for the actor.
func (r *Router) handlerFailed(inv invocation, err error) {
	a := inv.action()

	var verr *ValidationError
	if errors.As(err, &verr) {
		reply := notice("Validation Error", verr.Message, r.o.Theme.Warning)
		reply.Ephemeral = true
		del, sendErr := inv.respond(reply)
		if sendErr != nil {
			r.log.Debug().Err(sendErr).Str("action", a.Key()).Msg("failed to send validation notice")
			return
		}
		r.jobs.After("delete-validation:"+a.Key(), verr.ttl(), func() {
			if err := del(); err != nil {
				r.log.Debug().Err(err).Str("action", a.Key()).Msg("failed to delete validation notice")
			}
		})
		return
	}

	ev := r.log.Error().Err(err).
		Str("kind", a.Kind().String()).
		Str("action", a.Key()).
		Str("user", inv.actorID()).
		Str("guild", inv.guildID())
	var perr *jobmgr.PanicError
	if errors.As(err, &perr) {
		ev = ev.Bytes("stack", perr.Stack)
	}
	ev.Msg("handler failed")

	r.send(inv, &Reply{Content: genericFailure, Ephemeral: true})
}

// send answers the actor and logs a failure.
func (r *Router) send(inv invocation, reply *Reply) {
	if _, err := inv.respond(reply); err != nil {
		r.log.Debug().Err(err).Str("action", inv.action().Key()).Msg("failed to send reply")
	}
}
