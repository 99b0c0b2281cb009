package sessions

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/UnownHash/Coastline/overlay"
	"github.com/UnownHash/Coastline/scene"
	"github.com/UnownHash/Coastline/stats_collector"
	"github.com/UnownHash/Coastline/util"
)

// Session is one browser's map.
type Session struct {
	Id         string
	Controller *overlay.Controller
	Scene      *scene.Scene

	lastUsed time.Time
}

type ManagerConfig struct {
	Logger         *logrus.Logger
	Config         Config
	OverlayConfig  overlay.Config
	Lookup         overlay.PlaceLookup
	Recorder       overlay.SearchRecorder
	StatsCollector stats_collector.StatsCollector
}

type Manager struct {
	logger         *logrus.Logger
	lookup         overlay.PlaceLookup
	recorder       overlay.SearchRecorder
	statsCollector stats_collector.StatsCollector

	mutex         sync.Mutex
	config        Config
	overlayConfig overlay.Config
	sessions      map[string]*Session

	// for tests
	nowFn func() time.Time
}

func (mgr *Manager) newSession() (*Session, error) {
	id := uuid.NewString()
	sc := scene.NewScene()

	ctl, err := overlay.NewController(overlay.ControllerConfig{
		Logger:         mgr.logger,
		Renderer:       sc,
		Lookup:         mgr.lookup,
		Recorder:       mgr.recorder,
		StatsCollector: mgr.statsCollector,
		SessionId:      id,
		Config:         mgr.overlayConfig,
	})
	if err != nil {
		return nil, err
	}

	return &Session{
		Id:         id,
		Controller: ctl,
		Scene:      sc,
	}, nil
}

// evictOldestLocked drops the least recently used session.
func (mgr *Manager) evictOldestLocked() {
	var oldest *Session
	for _, session := range mgr.sessions {
		if oldest == nil || session.lastUsed.Before(oldest.lastUsed) {
			oldest = session
		}
	}
	if oldest != nil {
		mgr.logger.Debugf("sessions: evicting session %s: too many sessions", oldest.Id)
		delete(mgr.sessions, oldest.Id)
	}
}

// Get returns the session for 'id', creating a new session (with a new
// id) when 'id' is unknown or expired. 'created' reports the latter.
func (mgr *Manager) Get(id string) (session *Session, created bool, err error) {
	mgr.mutex.Lock()
	defer mgr.mutex.Unlock()

	now := mgr.nowFn()

	if id != "" {
		if session = mgr.sessions[id]; session != nil {
			session.lastUsed = now
			return session, false, nil
		}
	}

	session, err = mgr.newSession()
	if err != nil {
		return nil, false, err
	}
	session.lastUsed = now

	for len(mgr.sessions) >= mgr.config.MaxSessions {
		mgr.evictOldestLocked()
	}
	mgr.sessions[session.Id] = session
	mgr.statsCollector.SetActiveSessions(len(mgr.sessions))

	mgr.logger.Debugf("sessions: created session %s", session.Id)

	return session, true, nil
}

// Lookup returns an existing session without creating one.
func (mgr *Manager) Lookup(id string) *Session {
	mgr.mutex.Lock()
	defer mgr.mutex.Unlock()

	session := mgr.sessions[id]
	if session != nil {
		session.lastUsed = mgr.nowFn()
	}
	return session
}

func (mgr *Manager) Len() int {
	mgr.mutex.Lock()
	defer mgr.mutex.Unlock()
	return len(mgr.sessions)
}

// Sweep removes sessions that have been idle for longer than the idle
// timeout and returns how many were removed.
func (mgr *Manager) Sweep() int {
	mgr.mutex.Lock()
	defer mgr.mutex.Unlock()

	cutoff := mgr.nowFn().Add(-mgr.config.IdleTimeout())

	removed := 0
	for id, session := range mgr.sessions {
		if session.lastUsed.Before(cutoff) {
			delete(mgr.sessions, id)
			removed++
		}
	}

	mgr.statsCollector.SetActiveSessions(len(mgr.sessions))

	return removed
}

func (mgr *Manager) Config() Config {
	mgr.mutex.Lock()
	defer mgr.mutex.Unlock()
	return mgr.config
}

// SetConfig applies new session limits. Existing sessions over the new
// max are evicted.
func (mgr *Manager) SetConfig(config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}

	mgr.mutex.Lock()
	defer mgr.mutex.Unlock()

	mgr.config = config
	for len(mgr.sessions) > config.MaxSessions {
		mgr.evictOldestLocked()
	}
	mgr.statsCollector.SetActiveSessions(len(mgr.sessions))

	return nil
}

func (mgr *Manager) OverlayConfig() overlay.Config {
	mgr.mutex.Lock()
	defer mgr.mutex.Unlock()
	return mgr.overlayConfig
}

// SetOverlayConfig updates the overlay config of every session and of
// sessions created afterwards.
func (mgr *Manager) SetOverlayConfig(config overlay.Config) error {
	if err := config.Validate(); err != nil {
		return err
	}

	mgr.mutex.Lock()
	defer mgr.mutex.Unlock()

	mgr.overlayConfig = config
	for _, session := range mgr.sessions {
		session.Controller.SetConfig(config)
	}

	return nil
}

// Run sweeps idle sessions until ctx is done.
func (mgr *Manager) Run(ctx context.Context) {
	intervalFn := func() time.Duration {
		config := mgr.Config()
		return config.SweepInterval()
	}

	util.RunEvery(ctx, intervalFn, false, func(context.Context) {
		if removed := mgr.Sweep(); removed > 0 {
			mgr.logger.Infof("sessions: removed %d idle session(s), %d remain", removed, mgr.Len())
		}
	})
}

func NewManager(config ManagerConfig) (*Manager, error) {
	if config.Logger == nil {
		return nil, errors.New("No logger given")
	}
	if config.Lookup == nil {
		return nil, errors.New("No place lookup given")
	}
	if err := config.Config.Validate(); err != nil {
		return nil, err
	}
	if err := config.OverlayConfig.Validate(); err != nil {
		return nil, err
	}

	statsCollector := config.StatsCollector
	if statsCollector == nil {
		statsCollector = stats_collector.NewNoopStatsCollector()
	}

	return &Manager{
		logger:         config.Logger,
		lookup:         config.Lookup,
		recorder:       config.Recorder,
		statsCollector: statsCollector,
		config:         config.Config,
		overlayConfig:  config.OverlayConfig,
		sessions:       make(map[string]*Session),
		nowFn:          time.Now,
	}, nil
}
