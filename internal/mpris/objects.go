package mpris

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/godbus/dbus/v5"

	"karolbroda.com/encore/internal/playback"
)

type rootObject struct {
	quit func()
}

func (r *rootObject) Raise() *dbus.Error { return nil }

func (r *rootObject) Quit() *dbus.Error {
	if r.quit != nil {
		r.quit()
	}
	return nil
}

type playerObject struct {
	player Player
	ctx    context.Context
	logger *slog.Logger
}

func (p *playerObject) command() (context.Context, context.CancelFunc) {
	return context.WithTimeout(p.ctx, commandTimeout)
}

func (p *playerObject) result(action string, err error) *dbus.Error {
	if err == nil || errors.Is(err, playback.ErrSuperseded) {
		return nil
	}
	p.logger.Debug("mpris command failed", "action", action, "error", err)
	return dbus.MakeFailedError(err)
}

func (p *playerObject) Next() *dbus.Error {
	ctx, cancel := p.command()
	defer cancel()
	return p.result("next", p.player.Next(ctx))
}

func (p *playerObject) Previous() *dbus.Error {
	ctx, cancel := p.command()
	defer cancel()
	return p.result("previous", p.player.Previous(ctx))
}

func (p *playerObject) Pause() *dbus.Error {
	p.player.Pause()
	return nil
}

func (p *playerObject) PlayPause() *dbus.Error {
	ctx, cancel := p.command()
	defer cancel()
	return p.result("play-pause", p.player.TogglePlayPause(ctx))
}

// Stop pauses; the current song stays loaded.
func (p *playerObject) Stop() *dbus.Error {
	p.player.Stop()
	return nil
}

func (p *playerObject) Play() *dbus.Error {
	state := p.player.State()
	if state.Playing {
		return nil
	}
	if state.SongID == "" {
		return p.Next()
	}
	return p.PlayPause()
}

// Seek moves by offset microseconds relative to the current position.
func (p *playerObject) Seek(offset int64) *dbus.Error {
	state := p.player.State()
	target := state.Position + time.Duration(offset)*time.Microsecond
	return p.seekTo(state, target)
}

func (p *playerObject) SetPosition(trackID dbus.ObjectPath, position int64) *dbus.Error {
	state := p.player.State()
	if trackID != TrackPath(state.SongID) {
		return nil
	}
	return p.seekTo(state, time.Duration(position)*time.Microsecond)
}

func (p *playerObject) seekTo(state playback.State, target time.Duration) *dbus.Error {
	if !state.DurationKnown || state.Duration <= 0 {
		return nil
	}
	target = max(0, min(target, state.Duration))
	return p.result("seek", p.player.Seek(float64(target)/float64(state.Duration)))
}

func (p *playerObject) OpenUri(string) *dbus.Error {
	return dbus.MakeFailedError(errors.New("opening uris is not supported"))
}
