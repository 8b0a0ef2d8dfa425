package player

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"spotit/src/library"
	"spotit/src/queue"
	"spotit/src/util"
)

// ErrInvalidIndex is returned when selecting a position that is not in the
// queue.
var ErrInvalidIndex = errors.New("index out of range")

// Default values for the Config of a Session.
const (
	DefaultPollInterval  = time.Millisecond * 500
	DefaultLookAhead     = time.Second * 20
	DefaultDeviceTimeout = time.Second * 10
	DefaultVolume        = 50
)

// Config tunes a Session. Zero fields take their default.
type Config struct {
	// The interval at which the playback position is read from the device
	// while playing.
	PollInterval time.Duration
	// How long before the end of a track the next track is highlighted.
	LookAhead time.Duration
	// The maximum duration of a single device operation.
	DeviceTimeout time.Duration
	// The volume applied to the first device.
	Volume int
	Clock  util.Clock
}

func (conf Config) withDefaults() Config {
	if conf.PollInterval <= 0 {
		conf.PollInterval = DefaultPollInterval
	}
	if conf.LookAhead <= 0 {
		conf.LookAhead = DefaultLookAhead
	}
	if conf.DeviceTimeout <= 0 {
		conf.DeviceTimeout = DefaultDeviceTimeout
	}
	if conf.Volume <= 0 {
		conf.Volume = DefaultVolume
	}
	conf.Volume = clampVolume(conf.Volume)
	if conf.Clock == nil {
		conf.Clock = util.SystemClock{}
	}
	return conf
}

// A Session keeps a playback device in sync with the selected track of a
// queue.
//
// Every entry point, including poll timer callbacks and device signals, runs
// under a single lock. The lock is only released while a backend binds a
// device. At most one poll timer is armed at any time and callbacks from
// timers and devices that have been superseded are discarded.
type Session struct {
	util.Emitter

	backend Backend
	conf    Config

	lock        sync.Mutex
	queue       queue.Queue
	selection   *library.Track
	state       PlayState
	wantPlaying bool

	device   Device
	mediaID  string
	playable bool
	bindGen  uint64
	// Signals that arrived while the device was still being bound.
	earlySignals []Signal

	time        time.Duration
	duration    time.Duration
	pendingSeek *time.Duration
	volume      int
	lookAhead   *library.Track

	timer    util.Timer
	timerGen uint64
}

// NewSession creates a session with a queue filled with the seed tracks.
// Nothing is selected until one of the selecting methods is called.
func NewSession(backend Backend, conf Config, seed ...library.Track) *Session {
	conf = conf.withDefaults()
	return &Session{
		backend: backend,
		conf:    conf,
		queue:   queue.New(seed...),
		state:   PlayStateUnbound,
		volume:  conf.Volume,
	}
}

// Events implements the util.Eventer interface.
func (s *Session) Events() *util.Emitter {
	return &s.Emitter
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.lock.Lock()
	defer s.lock.Unlock()
	status := Status{
		State:    s.state,
		Index:    s.indexLocked(),
		Time:     s.time,
		Duration: s.duration,
		Volume:   s.volume,
		MediaID:  s.mediaID,
		Playable: s.playable,
	}
	if s.selection != nil {
		sel := *s.selection
		status.Selection = &sel
	}
	if s.lookAhead != nil {
		next := *s.lookAhead
		status.LookAhead = &next
	}
	return status
}

// Queue returns the current queue.
func (s *Session) Queue() queue.Queue {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.queue
}

// InsertAtTop places the track at the head of the queue and selects it. If
// the track is already selected and refers to the bound media, playback is
// resumed instead.
func (s *Session) InsertAtTop(ctx context.Context, track library.Track) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.queue = s.queue.InsertAtTop(track)
	if s.isBoundLocked(track) {
		s.selection = &track
		s.emitQueueLocked()
		s.playLocked(ctx)
		return
	}
	s.emitQueueLocked()
	s.selectLocked(ctx, 0)
}

// Append places the track at the end of the queue if it is not queued yet.
func (s *Session) Append(ctx context.Context, track library.Track) {
	s.lock.Lock()
	defer s.lock.Unlock()
	prevLen := s.queue.Len()
	s.queue = s.queue.Append(track)
	if s.queue.Len() == prevLen {
		return
	}
	s.emitQueueLocked()
	s.refreshLookAheadLocked()
}

// Reorder moves the track at fromPos to toPos. The selection is kept,
// invalid positions are ignored.
func (s *Session) Reorder(ctx context.Context, fromPos, toPos int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	_, okFrom := s.queue.At(fromPos)
	_, okTo := s.queue.At(toPos)
	if !okFrom || !okTo || fromPos == toPos {
		return
	}
	s.queue = s.queue.Reorder(fromPos, toPos)
	s.emitQueueLocked()
	s.refreshLookAheadLocked()
}

// SelectIndex selects the track at the specified queue position and starts
// playing it once the device is ready. Selecting the track that is already
// selected resumes playback.
func (s *Session) SelectIndex(ctx context.Context, index int) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	track, ok := s.queue.At(index)
	if !ok {
		return ErrInvalidIndex
	}
	if s.isBoundLocked(track) {
		s.playLocked(ctx)
		return nil
	}
	s.selectLocked(ctx, index)
	return nil
}

// SelectRelative moves the selection by delta positions. Nothing happens if
// nothing is selected or the target position is not in the queue.
func (s *Session) SelectRelative(ctx context.Context, delta int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	index := s.indexLocked()
	if index == -1 || delta == 0 {
		return
	}
	if _, ok := s.queue.At(index + delta); !ok {
		return
	}
	s.selectLocked(ctx, index+delta)
}

// Play starts or resumes playback of the selection.
func (s *Session) Play(ctx context.Context) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.playLocked(ctx)
}

// Pause pauses playback of the selection.
func (s *Session) Pause(ctx context.Context) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.pauseLocked(ctx)
}

// Toggle switches between playing and paused.
func (s *Session) Toggle(ctx context.Context) {
	s.lock.Lock()
	defer s.lock.Unlock()
	switch s.state {
	case PlayStatePlaying:
		s.pauseLocked(ctx)
	case PlayStatePaused:
		s.playLocked(ctx)
	case PlayStateBinding:
		s.wantPlaying = !s.wantPlaying
	}
}

// Seek moves the playback position. The position is clamped to the duration
// of the track if it is known. A position set before the device is ready is
// applied once it is.
func (s *Session) Seek(ctx context.Context, t time.Duration) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.selection == nil || s.state == PlayStateUnbound {
		return
	}
	t = s.clampTimeLocked(t)
	s.time = t
	if s.deviceReadyLocked() {
		if err := s.device.Seek(ctx, t); err != nil {
			log.WithField("media", s.mediaID).Errorf("Could not seek: %v", err)
		}
	} else {
		s.pendingSeek = &t
	}
	s.Emit(TimeEvent{Time: s.time, Duration: s.duration})
	s.refreshLookAheadLocked()
}

// SetVolume sets the volume, clamped to 0..100. The volume is remembered and
// applied to every device that becomes ready.
func (s *Session) SetVolume(ctx context.Context, vol int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	vol = clampVolume(vol)
	if vol == s.volume {
		return
	}
	s.volume = vol
	if s.deviceReadyLocked() {
		if err := s.device.SetVolume(ctx, vol); err != nil {
			log.WithField("media", s.mediaID).Errorf("Could not set volume: %v", err)
		}
	}
	s.Emit(VolumeEvent{Volume: vol})
}

// Close stops polling and releases the device.
func (s *Session) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.stopTimerLocked()
	return s.unbindLocked()
}

// isBoundLocked reports whether the track is the selection and the session
// is bound to the media of its URL.
func (s *Session) isBoundLocked(track library.Track) bool {
	return s.selection != nil && s.selection.Same(track) && s.mediaID != "" && MediaID(track.URL) == s.mediaID
}

func (s *Session) indexLocked() int {
	if s.selection == nil {
		return -1
	}
	return s.queue.IndexOf(*s.selection)
}

func (s *Session) emitQueueLocked() {
	s.Emit(QueueEvent{Index: s.indexLocked(), Len: s.queue.Len()})
}

func (s *Session) setStateLocked(state PlayState) {
	if s.state == state {
		return
	}
	log.WithField("media", s.mediaID).Debugf("%s -> %s", s.state, state)
	s.state = state
	s.Emit(PlayStateEvent{State: state})
}

func (s *Session) deviceReadyLocked() bool {
	return s.device != nil && (s.state == PlayStatePlaying || s.state == PlayStatePaused)
}

func (s *Session) deviceContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.conf.DeviceTimeout)
}

// selectLocked makes the track at the index the selection. The playback
// position is reset before the new device is requested.
func (s *Session) selectLocked(ctx context.Context, index int) {
	track, ok := s.queue.At(index)
	if !ok {
		return
	}
	s.stopTimerLocked()
	if err := s.unbindLocked(); err != nil {
		log.WithField("media", s.mediaID).Warnf("Could not close device: %v", err)
	}

	s.selection = &track
	s.time, s.duration = 0, 0
	s.pendingSeek = nil
	s.wantPlaying = true
	s.setLookAheadLocked(nil)
	sel := track
	s.Emit(SelectionEvent{Index: index, Track: &sel})
	s.Emit(TimeEvent{})

	s.bindLocked(ctx)
}

// bindLocked requests a device for the media of the selection. The lock is
// released while the backend binds, a device that was superseded in the
// meantime is closed.
func (s *Session) bindLocked(ctx context.Context) {
	s.bindGen++
	gen := s.bindGen
	mediaID := MediaID(s.selection.URL)
	s.mediaID = mediaID
	s.earlySignals = nil
	if mediaID == "" {
		log.WithField("url", s.selection.URL).Warnf("No playable media for %q", s.selection)
		s.playable = false
		s.setStateLocked(PlayStateUnbound)
		s.Emit(MediaEvent{Playable: false})
		return
	}
	s.setStateLocked(PlayStateBinding)

	ctx, cancel := context.WithTimeout(ctx, s.conf.DeviceTimeout)
	defer cancel()
	s.lock.Unlock()
	device, err := s.backend.Bind(ctx, mediaID, func(mediaID string, sig Signal) {
		s.handleSignal(gen, mediaID, sig)
	})
	s.lock.Lock()

	if gen != s.bindGen {
		log.WithField("media", mediaID).Debugf("Discarding superseded device")
		if err == nil {
			if err := device.Close(); err != nil {
				log.WithField("media", mediaID).Warnf("Could not close device: %v", err)
			}
		}
		return
	}
	if err != nil {
		log.WithField("media", mediaID).Errorf("Could not bind device: %v", err)
		s.playable = false
		s.setStateLocked(PlayStateUnbound)
		s.Emit(MediaEvent{MediaID: mediaID, Playable: false})
		return
	}
	s.device = device
	s.playable = true
	s.Emit(MediaEvent{MediaID: mediaID, Playable: true})

	early := s.earlySignals
	s.earlySignals = nil
	for _, sig := range early {
		if gen != s.bindGen {
			break
		}
		s.dispatchSignalLocked(sig)
	}
}

func (s *Session) unbindLocked() error {
	s.bindGen++
	if s.device == nil {
		return nil
	}
	err := s.device.Close()
	s.device = nil
	return err
}

func (s *Session) handleSignal(gen uint64, mediaID string, sig Signal) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if gen != s.bindGen || mediaID != s.mediaID {
		log.WithField("media", mediaID).Debugf("Ignoring stale %s signal", sig)
		return
	}
	if s.device == nil {
		if s.state == PlayStateBinding {
			s.earlySignals = append(s.earlySignals, sig)
		}
		return
	}
	s.dispatchSignalLocked(sig)
}

func (s *Session) dispatchSignalLocked(sig Signal) {
	ctx, cancel := s.deviceContext()
	defer cancel()
	switch sig {
	case SignalReady:
		s.readyLocked(ctx)
	case SignalEnded:
		s.endedLocked(ctx)
	}
}

func (s *Session) readyLocked(ctx context.Context) {
	if s.state != PlayStateBinding {
		return
	}
	s.setStateLocked(PlayStateReady)
	if d, err := s.device.Duration(ctx); err != nil {
		log.WithField("media", s.mediaID).Warnf("Could not get duration: %v", err)
	} else {
		s.duration = d
	}
	if err := s.device.SetVolume(ctx, s.volume); err != nil {
		log.WithField("media", s.mediaID).Errorf("Could not set volume: %v", err)
	}
	if s.pendingSeek != nil {
		s.time = s.clampTimeLocked(*s.pendingSeek)
		s.pendingSeek = nil
		if err := s.device.Seek(ctx, s.time); err != nil {
			log.WithField("media", s.mediaID).Errorf("Could not seek: %v", err)
		}
	}
	s.Emit(TimeEvent{Time: s.time, Duration: s.duration})

	if s.wantPlaying {
		s.startLocked(ctx)
	} else {
		s.setStateLocked(PlayStatePaused)
	}
}

func (s *Session) endedLocked(ctx context.Context) {
	if !s.deviceReadyLocked() {
		return
	}
	s.stopTimerLocked()
	s.setStateLocked(PlayStateEnded)
	if index := s.indexLocked(); index != -1 {
		if _, ok := s.queue.At(index + 1); ok {
			s.selectLocked(ctx, index+1)
			return
		}
	}
	// End of the queue.
	s.wantPlaying = false
	if s.duration > 0 {
		s.time = s.duration
	}
	s.setLookAheadLocked(nil)
	s.Emit(TimeEvent{Time: s.time, Duration: s.duration})
	s.setStateLocked(PlayStatePaused)
}

func (s *Session) playLocked(ctx context.Context) {
	switch s.state {
	case PlayStateBinding:
		s.wantPlaying = true
	case PlayStatePaused:
		s.wantPlaying = true
		if s.duration > 0 && s.time >= s.duration {
			// Replay a track that has ended.
			s.time = 0
			if err := s.device.Seek(ctx, 0); err != nil {
				log.WithField("media", s.mediaID).Errorf("Could not seek: %v", err)
			}
			s.Emit(TimeEvent{Time: s.time, Duration: s.duration})
		}
		s.startLocked(ctx)
	}
}

func (s *Session) startLocked(ctx context.Context) {
	if err := s.device.Play(ctx); err != nil {
		log.WithField("media", s.mediaID).Errorf("Could not start playback: %v", err)
		s.setStateLocked(PlayStatePaused)
		return
	}
	s.setStateLocked(PlayStatePlaying)
	s.refreshLookAheadLocked()
	s.armTimerLocked()
}

func (s *Session) pauseLocked(ctx context.Context) {
	switch s.state {
	case PlayStateBinding:
		s.wantPlaying = false
	case PlayStatePlaying:
		s.wantPlaying = false
		s.stopTimerLocked()
		if err := s.device.Pause(ctx); err != nil {
			log.WithField("media", s.mediaID).Errorf("Could not pause: %v", err)
		}
		if t, err := s.device.CurrentTime(ctx); err == nil {
			s.time = s.clampTimeLocked(t)
			s.Emit(TimeEvent{Time: s.time, Duration: s.duration})
		}
		s.setStateLocked(PlayStatePaused)
	}
}

func (s *Session) armTimerLocked() {
	s.stopTimerLocked()
	gen := s.timerGen
	s.timer = s.conf.Clock.AfterFunc(s.conf.PollInterval, func() {
		s.tick(gen)
	})
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	// Invalidate callbacks that have fired but are still waiting for the lock.
	s.timerGen++
}

func (s *Session) tick(gen uint64) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if gen != s.timerGen || s.state != PlayStatePlaying || s.device == nil {
		return
	}
	s.timer = nil
	ctx, cancel := s.deviceContext()
	defer cancel()

	if t, err := s.device.CurrentTime(ctx); err != nil {
		log.WithField("media", s.mediaID).Warnf("Could not get current time: %v", err)
	} else {
		s.time = s.clampTimeLocked(t)
	}
	if s.duration == 0 {
		if d, err := s.device.Duration(ctx); err == nil {
			s.duration = d
		}
	}
	s.Emit(TimeEvent{Time: s.time, Duration: s.duration})
	s.refreshLookAheadLocked()
	s.armTimerLocked()
}

// refreshLookAheadLocked recomputes the look-ahead highlight. The highlight
// is frozen while not playing.
func (s *Session) refreshLookAheadLocked() {
	if s.state != PlayStatePlaying {
		return
	}
	var next *library.Track
	if s.selection != nil && s.duration > 0 && s.time >= s.duration-s.conf.LookAhead {
		if t, ok := s.queue.Next(*s.selection); ok {
			next = &t
		}
	}
	s.setLookAheadLocked(next)
}

func (s *Session) setLookAheadLocked(track *library.Track) {
	if track == nil && s.lookAhead == nil {
		return
	}
	if track != nil && s.lookAhead != nil && track.Same(*s.lookAhead) {
		return
	}
	s.lookAhead = track
	var ev LookAheadEvent
	if track != nil {
		t := *track
		ev.Track = &t
	}
	s.Emit(ev)
}

func (s *Session) clampTimeLocked(t time.Duration) time.Duration {
	if t < 0 {
		return 0
	}
	if s.duration > 0 && t > s.duration {
		return s.duration
	}
	return t
}

func clampVolume(vol int) int {
	if vol < 0 {
		return 0
	} else if vol > 100 {
		return 100
	}
	return vol
}
