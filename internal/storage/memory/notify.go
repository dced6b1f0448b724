package memory

import (
	"context"

	"github.com/cory-johannsen/dominion/internal/notify"
)

// InsertNotification implements notify.Sink.
func (s *Store) InsertNotification(_ context.Context, n *notify.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	n.ID = s.nextID()
	s.notifications = append(s.notifications, *n)
	return nil
}
