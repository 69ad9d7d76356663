package link

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"Tonelink/pkg/device"
	"Tonelink/pkg/modem"

	"go.uber.org/zap"
)

var (
	ErrTimeout = errors.New("timed out waiting for a command")
	ErrRemote  = errors.New("remote side reported an error")
	ErrClosed  = errors.New("link is not open")
)

// Link drives a command conversation over one audio device. Outbound frames
// queue through a Player, captured audio is cut into overlapping chunks by
// a Recorder and each chunk is decoded on its own. The device hears the
// link's own transmissions too, on a shared medium or through a microphone
// next to the speaker, so callers filter for the commands they expect.
type Link struct {
	Modem  *modem.Modem
	Device device.Device

	ChunkDuration time.Duration // recording span decoded at once, 0 means 5s
	ReplyTimeout  time.Duration // reply window per attempt, 0 means 30s
	MaxRetries    int           // additional attempts after the first
	Backoff       BackoffTimer  // wait between attempts, nil for a default jitter
	BusyThreshold float64       // input RMS above this delays sending, 0 disables
	Log           *zap.Logger

	mu       sync.Mutex
	open     bool
	player   *device.Player
	recorder *device.Recorder
	gate     *PowerGate
}

// Open starts the device and wires its callbacks to the link. The chunk
// span must cover at least two frames; otherwise a frame could straddle
// every chunk the recorder emits and never decode.
func (l *Link) Open() error {
	if l.Modem == nil || l.Device == nil {
		return errors.New("link needs a modem and a device")
	}
	if l.ChunkDuration <= 0 {
		l.ChunkDuration = 5 * time.Second
	}
	if l.ReplyTimeout <= 0 {
		l.ReplyTimeout = 30 * time.Second
	}
	if l.Backoff == nil {
		l.Backoff = RandomBackoffTimer{MinDelay: 250 * time.Millisecond, MaxDelay: 750 * time.Millisecond}
	}
	if l.Log == nil {
		l.Log = zap.NewNop()
	}

	cfg := l.Modem.Config()
	frame := (cfg.PreambleCount + modem.CodewordBits) * cfg.WindowSize()
	chunk := int(l.ChunkDuration.Seconds() * float64(cfg.SampleRate))
	if chunk < 2*frame {
		return fmt.Errorf("chunk of %d samples cannot hold a %d sample frame twice over", chunk, frame)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.open {
		return errors.New("link already open")
	}
	l.player = &device.Player{}
	l.recorder = device.NewRecorder(chunk, 4)
	l.gate = &PowerGate{Threshold: l.BusyThreshold, Window: cfg.SampleRate / 4}

	gate, rec, play := l.gate, l.recorder, l.player
	if err := l.Device.Start(func(in, out []float64) {
		gate.Update(in)
		rec.Feed(in)
		play.Feed(out)
	}); err != nil {
		return fmt.Errorf("start device: %w", err)
	}
	l.open = true
	return nil
}

// Close stops the device. Queued but unplayed audio is abandoned.
func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.open {
		return nil
	}
	l.open = false
	return l.Device.Stop()
}

func (l *Link) session() (*device.Player, *device.Recorder, *PowerGate, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.open {
		return nil, nil, nil, ErrClosed
	}
	return l.player, l.recorder, l.gate, nil
}

// Send encodes cmd and plays it, returning once the last sample has been
// handed to the device. With a busy threshold set it first waits for the
// channel to go quiet. Cancelling ctx abandons the wait but cannot recall
// audio already queued.
func (l *Link) Send(ctx context.Context, cmd modem.Command) error {
	player, _, gate, err := l.session()
	if err != nil {
		return err
	}
	buf, err := l.Modem.EncodeCommand(cmd)
	if err != nil {
		return err
	}
	if err := gate.WaitIdle(ctx); err != nil {
		return err
	}
	l.Log.Info("sending", zap.Stringer("command", cmd))
	select {
	case <-player.Play(buf):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Listen returns the next command decoded from the input, whoever sent it.
// A timeout of 0 listens until ctx ends.
func (l *Link) Listen(ctx context.Context, timeout time.Duration) (modem.Command, error) {
	_, recorder, _, err := l.session()
	if err != nil {
		return 0, err
	}
	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}
	for {
		select {
		case chunk := <-recorder.Chunks():
			if cmd, ok := l.Modem.DecodeCommand(chunk); ok {
				l.Log.Info("heard", zap.Stringer("command", cmd))
				return cmd, nil
			}
		case <-deadline:
			return 0, ErrTimeout
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

// Request sends cmd and waits for want. Commands other than want are
// ignored, except ERROR, which fails the request immediately. When the
// reply window closes without an answer the request backs off and retries,
// up to MaxRetries extra attempts.
func (l *Link) Request(ctx context.Context, cmd, want modem.Command) error {
	for attempt := 0; ; attempt++ {
		if err := l.Send(ctx, cmd); err != nil {
			return err
		}
		err := l.await(ctx, want)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrTimeout) {
			return err
		}
		if attempt >= l.MaxRetries {
			return fmt.Errorf("no %v after %d attempts of %v: %w", want, attempt+1, cmd, ErrTimeout)
		}
		delay := l.Backoff.BackoffTime(attempt)
		l.Log.Warn("no reply, backing off",
			zap.Stringer("command", cmd),
			zap.Duration("delay", delay),
			zap.Int("attempt", attempt+1))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// await consumes chunks until want arrives, the remote reports an error,
// or the reply window ends.
func (l *Link) await(ctx context.Context, want modem.Command) error {
	_, recorder, _, err := l.session()
	if err != nil {
		return err
	}
	timer := time.NewTimer(l.ReplyTimeout)
	defer timer.Stop()
	for {
		select {
		case chunk := <-recorder.Chunks():
			cmd, ok := l.Modem.DecodeCommand(chunk)
			if !ok {
				continue
			}
			switch cmd {
			case want:
				return nil
			case modem.CommandError:
				return ErrRemote
			default:
				// Usually our own transmission echoing back.
				l.Log.Debug("ignoring while waiting",
					zap.Stringer("got", cmd),
					zap.Stringer("want", want))
			}
		case <-timer.C:
			return ErrTimeout
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Ping checks that the other rig is alive and decoding.
func (l *Link) Ping(ctx context.Context) error {
	return l.Request(ctx, modem.CommandPing, modem.CommandPong)
}

// Capture asks the other rig to take a capture and waits for completion.
func (l *Link) Capture(ctx context.Context) error {
	return l.Request(ctx, modem.CommandCapture, modem.CommandDone)
}

// Serve answers incoming commands until ctx ends. For each decoded command
// the handler returns the reply to send and whether to send one; it should
// return false for commands it did not expect, the link's own echoes
// included.
func (l *Link) Serve(ctx context.Context, handler func(modem.Command) (modem.Command, bool)) error {
	for {
		cmd, err := l.Listen(ctx, 0)
		if err != nil {
			return err
		}
		reply, ok := handler(cmd)
		if !ok {
			continue
		}
		if err := l.Send(ctx, reply); err != nil {
			return err
		}
	}
}
