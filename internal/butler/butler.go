// If you are AI: this file implements the Butler driver loop, readahead
// queues, and consumer API described below.

// Package butler drives a Player ahead of real-time playback, filling
// bounded readahead queues for video, audio, and closed captions on a
// background goroutine, and serving them to a consumer (a render loop or
// a live preview) through a pull API. It is grounded on the Butler class
// in the original implementation: a compound run predicate guarded by a
// mutex and condition variable (not channels, since the predicate spans
// several queues and a pending-seek flag at once), plus a fixed worker
// pool for the per-frame prepare work that would otherwise serialize
// behind the driver goroutine.
package butler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"dcpflow/internal/content"
	"dcpflow/internal/decode"
	"dcpflow/internal/piece"
	"dcpflow/internal/player"
	"dcpflow/internal/ring"
	"dcpflow/internal/timeline"
)

// ErrAgain means no item is ready yet; the caller should retry shortly
// rather than treat this as a failure.
var ErrAgain = errors.New("butler: not ready")

// ErrFinished means playback has reached the end of the playlist.
var ErrFinished = errors.New("butler: finished")

// ErrClosed means the Butler has been stopped.
var ErrClosed = errors.New("butler: closed")

const (
	minVideoReadahead = 10
	maxVideoReadahead = 48
)

type changeState int

const (
	changePending changeState = iota
	changeDone
	changeCancelled
)

type videoItem struct {
	frame *player.Video
	time  timeline.DCPTime
}

type audioItem struct {
	buf  []float32 // interleaved across channels, caller reshapes
	time timeline.DCPTime
	channels int
}

// Butler drives one Player ahead of playback.
type Butler struct {
	mu   sync.Mutex
	cond *sync.Cond

	playlist *content.Playlist
	player   *player.Player
	factory  piece.DecoderFactory
	dcpRate  float64
	sampleRate int
	dcpChannels int

	video    *ring.Buffer[videoItem]
	audio    *ring.Buffer[audioItem]
	captions *ring.Buffer[decode.CaptionPayload]

	disableAudio bool

	position      timeline.DCPTime
	finished      bool
	storedErr     error
	closed        bool

	playlistChange changeState
	awaitingSeek   *timeline.DCPTime

	// suspended counts in-flight Pending changes; GetVideo/GetAudio
	// return ErrAgain while it is above zero. It is incremented on
	// ChangePending and decremented on the matching ChangeDone/
	// ChangeCancelled, so it returns to zero once every Pending has
	// been matched, never going negative.
	suspended int

	// reseekAwaiting remembers the target of the most recent internal
	// re-seek issued from a Done(frequent=false) change, so a second
	// rapid change arriving before the first re-seek has refilled the
	// queues coalesces onto the later of the two targets instead of
	// seeking backwards.
	reseekAwaiting *timeline.DCPTime

	prepareWork chan func()
	workerWG    sync.WaitGroup
	driverDone  chan struct{}

	log *slog.Logger
}

// Config bundles the construction-time parameters that would otherwise
// make New's signature unwieldy.
type Config struct {
	Playlist       *content.Playlist
	DecoderFactory piece.DecoderFactory
	DCPRate        float64
	SampleRate     int
	DCPChannels    int
	VideoReadahead int // item count, clamped to [minVideoReadahead, maxVideoReadahead]
	PrepareWorkers int // prepare-pool goroutine count; defaults to 2*runtime.NumCPU() if <= 0
	Logger         *slog.Logger // nil falls back to slog.Default()
}

// New builds a Butler over cfg.Playlist and starts its driver and prepare
// pool goroutines. Call Stop to release them.
func New(cfg Config) (*Butler, error) {
	if cfg.DCPRate <= 0 {
		return nil, fmt.Errorf("butler: dcp rate must be positive")
	}
	videoReadahead := cfg.VideoReadahead
	if videoReadahead < minVideoReadahead {
		videoReadahead = minVideoReadahead
	}
	if videoReadahead > maxVideoReadahead {
		videoReadahead = maxVideoReadahead
	}
	// Audio readahead tracks video readahead in content-seconds, the same
	// ratio the original implementation derives its audio readahead from.
	audioReadahead := cfg.SampleRate * videoReadahead / int(cfg.DCPRate)
	if audioReadahead < cfg.SampleRate {
		audioReadahead = cfg.SampleRate
	}
	// The audio ring holds one block of SampleRate/DCPRate frames per item
	// (see pass), so convert the sample-frame count into a block count.
	if perBlock := cfg.SampleRate / int(cfg.DCPRate); perBlock > 1 {
		audioReadahead /= perBlock
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	b := &Butler{
		playlist:    cfg.Playlist,
		player:      player.New(cfg.Playlist, cfg.DCPRate),
		factory:     cfg.DecoderFactory,
		dcpRate:     cfg.DCPRate,
		sampleRate:  cfg.SampleRate,
		dcpChannels: cfg.DCPChannels,
		video:       ring.New[videoItem](videoReadahead, ring.BackpressureReject),
		audio:       ring.New[audioItem](audioReadahead, ring.BackpressureReject),
		captions:    ring.New[decode.CaptionPayload](videoReadahead, ring.BackpressureDropOldest),
		prepareWork: make(chan func(), videoReadahead*2),
		driverDone:  make(chan struct{}),
		log:         log,
	}
	b.cond = sync.NewCond(&b.mu)

	if err := b.player.Rebuild(b.factory); err != nil {
		return nil, err
	}
	b.player.OnChange(b.onPlayerChange)

	workers := cfg.PrepareWorkers
	if workers <= 0 {
		workers = 2 * runtime.NumCPU()
	}
	for i := 0; i < workers; i++ {
		b.workerWG.Add(1)
		go b.runWorker()
	}

	go b.runDriver()

	return b, nil
}

func (b *Butler) runWorker() {
	defer b.workerWG.Done()
	for job := range b.prepareWork {
		job()
	}
}

// onPlayerChange is the Go counterpart of Butler::player_change: it
// brackets a Pending/Done (or Pending/Cancelled) pair with the
// suspension count GetVideo/GetAudio check, and on a non-frequent Done
// re-seeks to the next frame that was about to be delivered so that a
// queued pre-change frame never reaches the consumer. Connected via
// Player.OnChange, which only forwards composition-affecting or
// structural changes, so every call here also needs a piece rebuild.
func (b *Butler) onPlayerChange(ch content.Change) {
	b.mu.Lock()
	switch ch.Type {
	case content.ChangePending:
		b.suspended++
		b.playlistChange = changePending
	case content.ChangeDone:
		if b.suspended > 0 {
			b.suspended--
		}
		b.playlistChange = changePending
		if b.suspended == 0 && b.awaitingSeek == nil && !ch.Frequent {
			seekTo := b.position
			if next, ok := b.video.Peek(); ok {
				seekTo = next.time
			}
			if b.reseekAwaiting != nil && b.reseekAwaiting.Compare(seekTo) > 0 {
				seekTo = *b.reseekAwaiting
			}
			b.awaitingSeek = &seekTo
			b.reseekAwaiting = &seekTo
		}
	case content.ChangeCancelled:
		if b.suspended > 0 {
			b.suspended--
		}
	}
	b.cond.Broadcast()
	b.mu.Unlock()
}

// shouldRun reports whether the driver has work to do: room in the video
// queue and (unless audio is disabled) in the audio queue, a pending
// playlist change to apply, or a pending seek. This is
// the Go counterpart of Butler::should_run, evaluated under b.mu so the
// condition variable wait sees a consistent compound predicate.
func (b *Butler) shouldRunLocked() bool {
	// BackpressureReject makes this unreachable in practice (Push simply
	// fails once a ring is at capacity), but the original treats a
	// readahead queue reaching 10x its configured size as a programming
	// error rather than a condition to recover from, so the same guard
	// is kept here.
	if b.video.Len() >= b.video.Cap()*10 {
		panic(fmt.Sprintf("butler: video buffer reached %d frames (audio is %d)", b.video.Len(), b.audio.Len()))
	}
	if b.audio.Len() >= b.audio.Cap()*10 {
		panic(fmt.Sprintf("butler: audio buffer reached %d frames (video is %d)", b.audio.Len(), b.video.Len()))
	}
	if b.closed {
		return true // wake so the driver can exit
	}
	if b.awaitingSeek != nil {
		return true
	}
	if b.playlistChange == changePending {
		return true
	}
	if b.finished {
		return false
	}
	if b.suspended > 0 {
		return false
	}
	return !b.video.Full() && (b.disableAudio || !b.audio.Full())
}

func (b *Butler) runDriver() {
	defer close(b.driverDone)

	b.mu.Lock()
	for {
		for !b.shouldRunLocked() {
			b.cond.Wait()
		}
		if b.closed {
			b.mu.Unlock()
			return
		}
		if b.playlistChange == changePending {
			b.playlistChange = changeDone
			b.mu.Unlock()
			if err := b.player.Rebuild(b.factory); err != nil {
				b.log.Error("rebuild pieces after playlist change", "error", err)
				b.mu.Lock()
				b.storedErr = err
				b.mu.Unlock()
			} else {
				b.log.Debug("rebuilt pieces after playlist change")
			}
			b.mu.Lock()
			continue
		}
		if b.awaitingSeek != nil {
			target := *b.awaitingSeek
			b.awaitingSeek = nil
			b.mu.Unlock()
			b.applySeek(target)
			b.mu.Lock()
			continue
		}
		b.mu.Unlock()
		finished, err := b.pass()
		b.mu.Lock()
		if err != nil {
			b.log.Error("decode pass failed", "error", err)
			b.storedErr = err
			b.cond.Broadcast()
			b.mu.Unlock()
			return
		}
		if finished {
			b.log.Info("reached end of playlist")
			b.finished = true
			b.cond.Broadcast()
		}
	}
}

// pass decodes and enqueues the next video frame and, if room allows, the
// next audio block, advancing b.position. Runs with the mutex unheld;
// enqueue results are applied under the lock.
func (b *Butler) pass() (bool, error) {
	b.mu.Lock()
	pos := b.position
	videoFull := b.video.Full()
	audioFull := b.audio.Full()
	b.mu.Unlock()

	if videoFull && audioFull {
		return false, nil
	}

	playlistEnd := b.playlistEnd()
	if pos.AtOrAfter(playlistEnd) {
		return true, nil
	}

	if !videoFull {
		frame, err := b.player.GetVideo(pos)
		if err != nil {
			return false, err
		}
		b.mu.Lock()
		b.video.Push(videoItem{frame: frame, time: pos})
		b.mu.Unlock()

		// Post the costly post-decode prepare step to the worker pool so
		// the consumer's eventual GetVideo sees an already-decoded frame
		// instead of paying for it on the hot path.
		select {
		case b.prepareWork <- func() { _ = frame.Prepare() }:
		default:
			// Pool saturated: the consumer will pay for Prepare lazily via
			// Image() instead of stalling the driver on a full job queue.
		}
	}

	b.mu.Lock()
	disableAudio := b.disableAudio
	b.mu.Unlock()

	if !audioFull && !disableAudio {
		audioFrames := b.sampleRate / int(b.dcpRate)
		if audioFrames < 1 {
			audioFrames = 1
		}
		buf, err := b.player.GetAudio(pos, audioFrames, b.sampleRate, b.dcpChannels)
		if err != nil {
			return false, err
		}
		b.mu.Lock()
		b.audio.Push(audioItem{buf: interleave(buf.Data), time: pos, channels: buf.Channels()})
		b.mu.Unlock()
	}

	captions, err := b.player.ActiveCaptions(pos)
	if err != nil {
		return false, err
	}
	if len(captions) > 0 {
		b.mu.Lock()
		for _, c := range captions {
			b.captions.Push(c)
		}
		b.mu.Unlock()
	}

	next := pos.Add(timeline.DCPTimeFromFrames(1, b.dcpRate))
	b.mu.Lock()
	b.position = next
	b.mu.Unlock()
	return false, nil
}

func (b *Butler) playlistEnd() timeline.DCPTime {
	end := timeline.NewDCPTime(0)
	for _, c := range b.playlist.Content() {
		if e := c.End(); e.Compare(end) > 0 {
			end = e
		}
	}
	return end
}

func interleave(planar [][]float32) []float32 {
	if len(planar) == 0 {
		return nil
	}
	frames := len(planar[0])
	out := make([]float32, frames*len(planar))
	for f := 0; f < frames; f++ {
		for c := range planar {
			out[f*len(planar)+c] = planar[c][f]
		}
	}
	return out
}

// GetVideo pops the oldest ready video frame, waking the driver so it
// can refill the queue. Returns ErrAgain if nothing is ready yet, the
// stream has not finished, or a playlist change is in flight
// (suspended > 0), matching the original's "get_video returns AGAIN
// while suspended" rule.
func (b *Butler) GetVideo() (*player.Video, timeline.DCPTime, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.storedErr != nil {
		return nil, timeline.DCPTime{}, b.storedErr
	}
	if b.suspended > 0 {
		return nil, timeline.DCPTime{}, ErrAgain
	}
	item, ok := b.video.Pop()
	b.cond.Broadcast()
	if !ok {
		if b.finished {
			return nil, timeline.DCPTime{}, ErrFinished
		}
		return nil, timeline.DCPTime{}, ErrAgain
	}
	return item.frame, item.time, nil
}

// GetAudio pops the oldest ready audio block, interleaved as
// [frame0ch0, frame0ch1, ..., frame1ch0, ...].
func (b *Butler) GetAudio() ([]float32, int, timeline.DCPTime, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.storedErr != nil {
		return nil, 0, timeline.DCPTime{}, b.storedErr
	}
	if b.suspended > 0 {
		return nil, 0, timeline.DCPTime{}, ErrAgain
	}
	item, ok := b.audio.Pop()
	b.cond.Broadcast()
	if !ok {
		if b.finished {
			return nil, 0, timeline.DCPTime{}, ErrFinished
		}
		return nil, 0, timeline.DCPTime{}, ErrAgain
	}
	return item.buf, item.channels, item.time, nil
}

// GetClosedCaption non-blockingly pops the next queued caption cue, or
// returns ok=false if none is ready. Like GetVideo/GetAudio it never
// waits; unlike them it reports neither a stored error nor end of stream.
func (b *Butler) GetClosedCaption() (decode.CaptionPayload, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.captions.Pop()
}

// DisableAudio stops the driver from decoding/enqueuing audio, e.g. when
// a consumer only wants video (a muted preview). Already-queued audio is
// left in place; it drains normally on GetAudio.
func (b *Butler) DisableAudio(disabled bool) {
	b.mu.Lock()
	b.disableAudio = disabled
	b.cond.Broadcast()
	b.mu.Unlock()
}

// MemoryUsed estimates the byte footprint of currently queued video
// frames. Audio is deliberately excluded, per the spec's own note that
// memory_used() is video-only in the original implementation.
func (b *Butler) MemoryUsed() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	var total int64
	b.video.Each(func(v videoItem) {
		if v.frame == nil || v.frame.Image == nil {
			return
		}
		w, h := v.frame.Image.Size()
		total += int64(w) * int64(h) * 4
	})
	return total
}

// Seek discards queued readahead and asks the driver to resume decoding
// from t. If a seek is already pending it is replaced, mirroring the
// original's habit of coalescing rapid repeated seeks into the most
// recent target rather than performing every one of them.
func (b *Butler) Seek(t timeline.DCPTime) {
	b.log.Debug("seek requested", "target_ticks", t.Get())
	b.mu.Lock()
	b.awaitingSeek = &t
	b.reseekAwaiting = nil
	b.finished = false
	b.storedErr = nil
	b.video.Clear()
	b.audio.Clear()
	b.captions.Clear()
	b.cond.Broadcast()
	b.mu.Unlock()
}

func (b *Butler) applySeek(t timeline.DCPTime) {
	b.mu.Lock()
	b.position = t
	b.video.Clear()
	b.audio.Clear()
	b.captions.Clear()
	b.mu.Unlock()

	for _, pc := range b.player.PiecesSnapshot() {
		ct := timeline.NewContentTime(t.Sub(pc.Content.GetPosition()).Get())
		_ = pc.Decoder.Seek(ct, true)
	}
}

// Stop shuts down the driver and worker pool, releasing every decoder.
func (b *Butler) Stop(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.cond.Broadcast()
	b.mu.Unlock()

	select {
	case <-b.driverDone:
	case <-ctx.Done():
		b.log.Warn("stop timed out waiting for driver", "error", ctx.Err())
		return ctx.Err()
	}

	close(b.prepareWork)
	b.workerWG.Wait()
	b.log.Debug("butler stopped")

	return piece.Close(b.player.PiecesSnapshot())
}

// Err returns the error (if any) that stopped the driver loop.
func (b *Butler) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.storedErr
}
