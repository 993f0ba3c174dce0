// Package mock contains test helpers.
package mock

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Clock returns a mock clock set to a fixed instant.
func Clock() *clock.Mock {
	cc := clock.NewMock()
	cc.Set(time.Unix(1515151515, 676_767_676))
	return cc
}
