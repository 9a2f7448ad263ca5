package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	customlog "github.com/rocket-telemetry/dashboard/pkg/log"
	"github.com/rocket-telemetry/dashboard/pkg/playback"
	"github.com/rocket-telemetry/dashboard/pkg/processing"
	"github.com/rocket-telemetry/dashboard/pkg/telemetry"
)

// ErrSessionNotFound is returned for an unknown or expired session id.
var ErrSessionNotFound = errors.New("session not found")

// DatasetCatalog is the part of telemetry.Catalog sessions depend on.
type DatasetCatalog interface {
	Default() string
	Load(name string) (*telemetry.Dataset, error)
}

// FrameSink receives every playback tick for fan-out.
type FrameSink interface {
	Submit(job *processing.FrameJob) bool
}

// SessionOptions tune session lifetime and playback cadence.
type SessionOptions struct {
	IdleTimeout      time.Duration
	SweepInterval    time.Duration
	PlaybackInterval time.Duration
}

// Session is one browser's view: the active dataset and its playback.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.RWMutex
	dataset  *telemetry.Dataset
	lastSeen time.Time
	player   *playback.Controller
	clock    func() time.Time
}

// SessionInfo is the JSON view of a session.
type SessionInfo struct {
	ID        string           `json:"id"`
	Dataset   string           `json:"dataset,omitempty"`
	Source    telemetry.Source `json:"source,omitempty"`
	Records   int              `json:"records"`
	Columns   []string         `json:"columns,omitempty"`
	Valves    []string         `json:"valves,omitempty"`
	Duration  float64          `json:"duration_seconds"`
	Playback  playback.State   `json:"playback"`
	CreatedAt time.Time        `json:"created_at"`
	LastSeen  time.Time        `json:"last_seen"`
	Warning   string           `json:"warning,omitempty"`
}

// Dataset returns the active dataset, nil when none is loaded.
func (s *Session) Dataset() *telemetry.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset
}

// Player returns the session's playback controller.
func (s *Session) Player() *playback.Controller {
	return s.player
}

// Snapshot returns the dataset together with the playback state it belongs to.
func (s *Session) Snapshot() (*telemetry.Dataset, playback.State) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset, s.player.State()
}

// LastSeen is the time of the latest request on this session.
func (s *Session) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// Touch records activity that did not come through an HTTP request, such as
// a playback command over the websocket.
func (s *Session) Touch() {
	s.touch(s.clock())
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// replace swaps the dataset and rewinds playback in one step, so a tick
// never pairs the new dataset with an index from the old one.
func (s *Session) replace(ds *telemetry.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataset = ds
	s.player.Reset(ds.Len())
}

// Info describes the session for API responses.
func (s *Session) Info() SessionInfo {
	ds, state := s.Snapshot()
	info := SessionInfo{
		ID:        s.ID,
		Records:   ds.Len(),
		Playback:  state,
		CreatedAt: s.CreatedAt,
		LastSeen:  s.LastSeen(),
	}
	if ds == nil {
		info.Warning = telemetry.ErrNoDataset.Error()
		return info
	}
	info.Dataset = ds.Name
	info.Source = ds.Source
	info.Columns = ds.Columns
	info.Valves = ds.ValveColumns()
	info.Duration = ds.Duration().Seconds()
	return info
}

// SessionService tracks browser sessions and their datasets.
type SessionService interface {
	GetOrCreate(id string) (*Session, bool)
	Get(id string) (*Session, error)
	SelectDataset(id, name string) (*Session, error)
	UploadDataset(id, filename, contentType string, r io.Reader) (*Session, error)
	End(id string) bool
	Count() int
	SetFrameSink(sink FrameSink)
	Run(ctx context.Context)
	Close()
}

type sessionService struct {
	catalog DatasetCatalog
	opts    SessionOptions
	logger  customlog.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	sink     FrameSink
}

// NewSessionService creates a session service backed by catalog.
func NewSessionService(catalog DatasetCatalog, opts SessionOptions, logger customlog.Logger) SessionService {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 30 * time.Minute
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}
	if opts.PlaybackInterval <= 0 {
		opts.PlaybackInterval = playback.DefaultInterval
	}
	return &sessionService{
		catalog:  catalog,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// GetOrCreate returns the session for id, creating a new one (with a fresh
// id) when id is empty or unknown. The bool reports whether it was created.
func (s *sessionService) GetOrCreate(id string) (*Session, bool) {
	now := s.now()

	s.mu.Lock()
	if sess, ok := s.sessions[id]; ok && id != "" {
		s.mu.Unlock()
		sess.touch(now)
		return sess, false
	}
	s.mu.Unlock()

	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		lastSeen:  now,
		clock:     func() time.Time { return s.now() },
	}
	sess.player = playback.NewController(s.opts.PlaybackInterval, s.logger.WithField("session", sess.ID))
	sess.player.SetTickHook(s.tickHook(sess))

	name := s.catalog.Default()
	if ds, err := s.catalog.Load(name); err != nil {
		s.logger.Warnf("Session %s starts without a dataset: %v", sess.ID, err)
	} else {
		sess.replace(ds)
		s.logger.Infof("Created session %s with dataset '%s' (%d records)", sess.ID, name, ds.Len())
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess, true
}

// tickHook forwards playback ticks to the frame sink.
func (s *sessionService) tickHook(sess *Session) playback.TickHook {
	return func(state playback.State) {
		s.mu.Lock()
		sink := s.sink
		s.mu.Unlock()
		if sink == nil {
			return
		}

		ds := sess.Dataset()
		if state.Index >= ds.Len() {
			return
		}
		sink.Submit(&processing.FrameJob{
			SessionID: sess.ID,
			Dataset:   ds.Name,
			Index:     state.Index,
			Total:     ds.Len(),
			Record:    ds.At(state.Index),
		})
	}
}

// Get returns an existing session and marks it as seen.
func (s *sessionService) Get(id string) (*Session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	sess.touch(s.now())
	return sess, nil
}

// SelectDataset switches the session to a bundled dataset. On failure the
// current dataset stays active.
func (s *sessionService) SelectDataset(id, name string) (*Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	ds, err := s.catalog.Load(name)
	if err != nil {
		s.logger.Warnf("Session %s failed to select dataset '%s': %v", id, name, err)
		return sess, err
	}

	sess.replace(ds)
	s.logger.Infof("Session %s selected dataset '%s' (%d records)", id, name, ds.Len())
	return sess, nil
}

// UploadDataset parses an uploaded CSV and makes it the session's dataset.
// On failure the current dataset stays active.
func (s *sessionService) UploadDataset(id, filename, contentType string, r io.Reader) (*Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if err := telemetry.ValidateUpload(filename, contentType); err != nil {
		return sess, err
	}

	ds, err := telemetry.Parse(filename, telemetry.SourceUpload, r)
	if err != nil {
		s.logger.Warnf("Session %s rejected upload '%s': %v", id, filename, err)
		return sess, err
	}

	sess.replace(ds)
	s.logger.Infof("Session %s loaded upload '%s' (%d records)", id, filename, ds.Len())
	return sess, nil
}

// End removes a session and stops its playback.
func (s *sessionService) End(id string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		sess.player.Close()
		s.logger.Infof("Ended session %s", id)
	}
	return ok
}

// Count returns the number of live sessions.
func (s *sessionService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// SetFrameSink installs the receiver of playback ticks.
func (s *sessionService) SetFrameSink(sink FrameSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
}

// Run sweeps idle sessions until ctx is done.
func (s *sessionService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep ends sessions idle for longer than the timeout. A playing session, or
// one with a connected playback socket, is never idle.
func (s *sessionService) sweep() int {
	cutoff := s.now().Add(-s.opts.IdleTimeout)

	s.mu.Lock()
	var expired []*Session
	for id, sess := range s.sessions {
		if sess.LastSeen().Before(cutoff) && !sess.player.State().Playing && sess.player.Subscribers() == 0 {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.player.Close()
		s.logger.Infof("Expired idle session %s", sess.ID)
	}
	return len(expired)
}

// Close ends every session.
func (s *sessionService) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.player.Close()
	}
}
