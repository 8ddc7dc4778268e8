package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

var (
	sessionID = uuid.NewString()
	strokeSeq uint64
)

// SessionID identifies this process in logs and export metadata.
func SessionID() string {
	return sessionID
}

func nextSeq() uint64 {
	return atomic.AddUint64(&strokeSeq, 1)
}

// stamp gives s a fresh identity. Every begun stroke gets its own ID even if
// it is later discarded by a restart.
func stamp(s *Stroke) {
	s.ID = uuid.NewString()
	s.Seq = nextSeq()
}
