package core

import (
	"sync"

	"github.com/dkeye/commcall/internal/domain"
)

// Frame is one encoded outbound event.
type Frame []byte

// SessionID identifies a single live connection (the socket id on the
// wire). It is never reused while the connection is up.
type SessionID string

// SignalConnection abstracts the system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// MemberSession binds an identity and its transport endpoint. This is
// what the registry and call rooms store and fan out to. The session
// owns its identity: Meta returns a snapshot copy and Refine is the
// only writer, so roster reads never race an identity update.
type MemberSession interface {
	Meta() domain.User
	Refine(id, name string, role *domain.Role)
	Signal() SignalConnection
}

// memberSession pairs meta + transport behind one lock.
type memberSession struct {
	mu   sync.RWMutex
	meta domain.User
	conn SignalConnection
}

func NewMemberSession(meta domain.User, conn SignalConnection) MemberSession {
	return &memberSession{meta: meta, conn: conn}
}

func (m *memberSession) Meta() domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.meta
}

func (m *memberSession) Refine(id, name string, role *domain.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meta.Refine(id, name, role)
}

func (m *memberSession) Signal() SignalConnection { return m.conn }

// Endpoint is a (session id, session) pair snapshotted for delivery.
// Recipient sets are always computed under the owning lock first and
// sent after, so a concurrent join/leave cannot tear a broadcast.
type Endpoint struct {
	SID     SessionID
	Session MemberSession
}

// PublishResult reports delivery stats/backpressure to the
// coordinator.
type PublishResult struct {
	SentTo  int
	Dropped []SessionID
}

// ParticipantDTO is the read-only roster view (no transport fields).
type ParticipantDTO struct {
	SocketID string        `json:"socketId"`
	UserID   domain.UserID `json:"userId"`
	Username string        `json:"userName"`
	Role     domain.Role   `json:"role"`
}
