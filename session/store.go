package session

import (
	"encoding/json"
	"time"

	"github.com/jrsteele09/go-nav-router/internal/utils"
	"github.com/jrsteele09/go-nav-router/onboarding"
	"github.com/jrsteele09/go-nav-router/routes"
	"github.com/rs/zerolog"
)

const (
	keySession   = "session"
	keyOnboard   = "onboarding"
	keyLastRoute = "last-route"
)

// Store reads and writes the persisted session records. Writes are whole
// record read-merge-write, never partial field mutation, so interleaved
// writers cannot lose updates. Write failures are swallowed and logged:
// losing persistence must degrade to a fresh login, not a crash.
type Store struct {
	kv        KV
	namespace string
	maxAge    time.Duration
	nowTime   func() time.Time
	log       zerolog.Logger
}

// StoreOption modifies a Store at construction time.
type StoreOption func(*Store)

// WithNowTime sets the clock (primarily for testing).
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// WithMaxAge overrides the session validity window.
func WithMaxAge(maxAge time.Duration) StoreOption {
	return func(s *Store) {
		s.maxAge = maxAge
	}
}

func NewStore(kv KV, namespace string, log zerolog.Logger, options ...StoreOption) *Store {
	s := &Store{
		kv:        kv,
		namespace: namespace,
		maxAge:    DefaultMaxAge,
		nowTime:   time.Now,
		log:       log,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *Store) key(name string) string {
	if s.namespace == "" {
		return name
	}
	return s.namespace + ":" + name
}

// GetSession returns the stored record, or defaults when absent or corrupt.
// Malformed JSON is treated exactly like an absent record.
func (s *Store) GetSession() Record {
	raw, ok, err := s.kv.Get(s.key(keySession))
	if err != nil {
		s.log.Warn().Err(err).Msg("session read failed, using defaults")
		return DefaultRecord()
	}
	if !ok {
		return DefaultRecord()
	}
	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		s.log.Warn().Err(err).Msg("session record corrupt, using defaults")
		return DefaultRecord()
	}
	return record
}

// SaveSession merges patch over the stored record and stamps the activity
// time. The activity timestamp never moves backwards.
func (s *Store) SaveSession(patch Patch) {
	record := s.GetSession()
	if patch.IsAuthenticated != nil {
		record.IsAuthenticated = utils.Value(patch.IsAuthenticated)
	}
	if patch.LastRoute != nil {
		record.LastRoute = utils.Value(patch.LastRoute)
	}
	if patch.LastRouteParams != nil {
		record.LastRouteParams = patch.LastRouteParams
	}
	if now := s.nowTime().UnixMilli(); now > record.LastActivityMillis {
		record.LastActivityMillis = now
	}
	s.write(keySession, record)
}

// IsSessionValid implements the activity window rule: authenticated and
// active within maxAge.
func (s *Store) IsSessionValid() bool {
	record := s.GetSession()
	if !record.IsAuthenticated {
		return false
	}
	age := s.nowTime().UnixMilli() - record.LastActivityMillis
	return age <= s.maxAge.Milliseconds()
}

// GetOnboardingState returns the stored progress, normalized so a stored
// "complete" claim without backing data is demoted. Returns nil when the
// flow has never started or the record is unreadable.
func (s *Store) GetOnboardingState() *onboarding.Progress {
	raw, ok, err := s.kv.Get(s.key(keyOnboard))
	if err != nil || !ok {
		if err != nil {
			s.log.Warn().Err(err).Msg("onboarding read failed")
		}
		return nil
	}
	var progress onboarding.Progress
	if err := json.Unmarshal(raw, &progress); err != nil {
		s.log.Warn().Err(err).Msg("onboarding record corrupt, discarding")
		return nil
	}
	progress.Normalize()
	return &progress
}

// SaveOnboardingState persists the progress record.
func (s *Store) SaveOnboardingState(progress *onboarding.Progress) {
	if progress == nil {
		return
	}
	s.write(keyOnboard, progress)
}

// SaveRoute overwrites the single "where to resume" record.
func (s *Store) SaveRoute(route routes.Screen, params map[string]interface{}) {
	s.write(keyLastRoute, RouteRecord{
		Route:           route,
		Params:          params,
		TimestampMillis: s.nowTime().UnixMilli(),
	})
}

// GetLastRoute returns the resume record, or nil when absent or corrupt.
func (s *Store) GetLastRoute() *RouteRecord {
	raw, ok, err := s.kv.Get(s.key(keyLastRoute))
	if err != nil || !ok {
		return nil
	}
	var record RouteRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		s.log.Warn().Err(err).Msg("last-route record corrupt, discarding")
		return nil
	}
	return &record
}

// ClearSession deletes all three records unconditionally.
func (s *Store) ClearSession() {
	for _, name := range []string{keySession, keyOnboard, keyLastRoute} {
		if err := s.kv.Delete(s.key(name)); err != nil {
			s.log.Warn().Err(err).Str("record", name).Msg("session clear failed")
		}
	}
}

// GetNextOnboardingStep derives the screen the onboarding flow should show
// next. Pure with respect to the stored progress.
func (s *Store) GetNextOnboardingStep() routes.Screen {
	return s.GetOnboardingState().NextScreen()
}

// ShouldContinueOnboarding reports whether an authenticated user has an
// unfinished onboarding flow to resume.
func (s *Store) ShouldContinueOnboarding() bool {
	if !s.GetSession().IsAuthenticated {
		return false
	}
	progress := s.GetOnboardingState()
	return progress != nil && progress.Step != onboarding.StepComplete
}

func (s *Store) write(name string, record interface{}) {
	raw, err := json.Marshal(record)
	if err != nil {
		s.log.Warn().Err(err).Str("record", name).Msg("session encode failed")
		return
	}
	if err := s.kv.Set(s.key(name), raw); err != nil {
		s.log.Warn().Err(err).Str("record", name).Msg("session write failed")
	}
}
