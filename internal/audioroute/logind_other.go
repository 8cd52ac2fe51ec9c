//go:build !linux

package audioroute

import "context"

// WatchSleep is a no-op on non-Linux platforms.
func (s *Service) WatchSleep(context.Context) error {
	return nil
}
