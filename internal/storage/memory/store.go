// Package memory is an in-process implementation of every engine store
// contract. It backs service tests and dry runs of the batch jobs.
//
// All operations serialize on one mutex, so every transaction is isolated.
package memory

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/cory-johannsen/dominion/internal/game/battle"
	"github.com/cory-johannsen/dominion/internal/game/economy"
	"github.com/cory-johannsen/dominion/internal/game/edict"
	"github.com/cory-johannsen/dominion/internal/game/npc"
	"github.com/cory-johannsen/dominion/internal/game/power"
	"github.com/cory-johannsen/dominion/internal/game/war"
	"github.com/cory-johannsen/dominion/internal/notify"
	"github.com/cory-johannsen/dominion/internal/storage"
)

type user struct {
	profile   *power.Profile
	archetype npc.Archetype
}

type alliance struct {
	id            int64
	name          string
	bonuses       economy.AllianceBonuses
	bankedCredits int64
}

// Store holds all state in memory.
type Store struct {
	mu  sync.Mutex
	now func() time.Time
	seq int64

	users         map[int64]*user
	alliances     map[int64]*alliance
	battleReports []battle.Report
	spyReports    []battle.SpyReport
	wars          map[int64]*war.War
	warLogs       []war.LogEntry
	notifications []notify.Notification

	failNext error
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		now:       time.Now,
		users:     make(map[int64]*user),
		alliances: make(map[int64]*alliance),
		wars:      make(map[int64]*war.War),
	}
}

// SetClock replaces the clock used to filter expired edicts.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// FailNextCommit makes the next committing operation fail with err and
// write nothing.
func (s *Store) FailNextCommit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// AddUser stores a copy of p and returns its user id. A zero p.UserID is assigned.
func (s *Store) AddUser(p *power.Profile) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := p.Clone()
	if c.UserID == 0 {
		c.UserID = s.nextID()
	} else if c.UserID > s.seq {
		s.seq = c.UserID
	}
	if c.Structures == nil {
		c.Structures = economy.Structures{}
	}
	for i := range c.Edicts {
		if c.Edicts[i].ID == 0 {
			c.Edicts[i].ID = s.nextID()
		}
		c.Edicts[i].UserID = c.UserID
	}
	s.users[c.UserID] = &user{profile: c}
	return c.UserID
}

// AddNPC stores a copy of p flagged as an NPC of the given archetype.
func (s *Store) AddNPC(p *power.Profile, a npc.Archetype) int64 {
	c := p.Clone()
	c.IsNPC = true
	id := s.AddUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id].archetype = a
	return id
}

// AddAlliance creates an alliance and returns its id.
func (s *Store) AddAlliance(name string, bonuses economy.AllianceBonuses, bankedCredits int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID()
	s.alliances[id] = &alliance{id: id, name: name, bonuses: bonuses, bankedCredits: bankedCredits}
	return id
}

// ActivateEdict activates key on userID and returns the active edict id.
func (s *Store) ActivateEdict(userID int64, key string, expiresAt *time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return 0, fmt.Errorf("user %d: %w", userID, storage.ErrNotFound)
	}
	a := edict.Active{ID: s.nextID(), UserID: userID, Key: key, ActivatedAt: s.now(), ExpiresAt: expiresAt}
	u.profile.Edicts = append(u.profile.Edicts, a)
	return a.ID, nil
}

// User returns a snapshot of userID, or nil if it does not exist.
func (s *Store) User(userID int64) *power.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	return s.snapshot(u)
}

// Users returns a snapshot of every user in ascending id order.
func (s *Store) Users() []*power.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*power.Profile
	for _, u := range s.sortedUsers() {
		out = append(out, s.snapshot(u))
	}
	return out
}

// AllianceBank returns an alliance's banked credits.
func (s *Store) AllianceBank(id int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.alliances[id]; ok {
		return a.bankedCredits
	}
	return 0
}

// BattleReports returns every stored battle report.
func (s *Store) BattleReports() []battle.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.battleReports)
}

// SpyReports returns every stored spy report.
func (s *Store) SpyReports() []battle.SpyReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.spyReports)
}

// Notifications returns every stored notification.
func (s *Store) Notifications() []notify.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.notifications)
}

// snapshot returns a deep copy of u with alliance bonuses attached and only
// live edicts. Callers hold s.mu.
func (s *Store) snapshot(u *user) *power.Profile {
	p := u.profile.Clone()
	p.Alliance = nil
	if a, ok := s.alliances[p.AllianceID]; ok && p.AllianceID != 0 {
		b := a.bonuses
		p.Alliance = &b
	}
	now := s.now()
	p.Edicts = slices.DeleteFunc(p.Edicts, func(a edict.Active) bool { return !a.LiveAt(now) })
	return p
}

// sortedUsers returns users in ascending id order. Callers hold s.mu.
func (s *Store) sortedUsers() []*user {
	out := make([]*user, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b *user) int { return cmp.Compare(a.profile.UserID, b.profile.UserID) })
	return out
}

// takeFailure returns and clears the injected failure. Callers hold s.mu.
func (s *Store) takeFailure() error {
	err := s.failNext
	s.failNext = nil
	return err
}

// applied returns u's rows with d added, or an error if any balance would
// go negative. u is not modified. Callers hold s.mu.
func applied(u *user, d economy.Delta) (*power.Profile, error) {
	next := u.profile.Apply(d)
	if err := next.Resources.NonNegative(); err != nil {
		return nil, fmt.Errorf("user %d: %w: %v", u.profile.UserID, storage.ErrInsufficient, err)
	}
	if err := next.Stats.NonNegative(); err != nil {
		return nil, fmt.Errorf("user %d: %w: %v", u.profile.UserID, storage.ErrInsufficient, err)
	}
	return next, nil
}

func addDelta(a, b economy.Delta) economy.Delta {
	return economy.Delta{
		Resources:  a.Resources.Add(b.Resources),
		Stats:      a.Stats.Add(b.Stats),
		Structures: a.Structures.Add(b.Structures),
	}
}
