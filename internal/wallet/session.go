package wallet

import (
	"context"
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
)

var (
	ErrNoConnector       = errors.New("no wallet connector available")
	ErrConnectInProgress = errors.New("connection already in progress")
)

// Snapshot is the read-only view of a session handed to the UI.
type Snapshot struct {
	Status     Status          `json:"status"`
	Address    string          `json:"address,omitempty"`
	Connector  string          `json:"connector,omitempty"`
	Error      string          `json:"error,omitempty"`
	Pending    bool            `json:"pending"`
	Connectors []ConnectorInfo `json:"connectors"`
	Challenge  string          `json:"challenge,omitempty"`
}

func (s Snapshot) Connected() bool {
	return s.Status == StatusConnected && s.Address != ""
}

// Session tracks one browser's wallet connection:
// disconnected -> connecting -> connected | disconnected with error.
type Session struct {
	connectors []Connector
	onChange   func(Snapshot)

	mu        sync.Mutex
	status    Status
	address   common.Address
	connector string
	lastErr   string
	challenge string
}

func NewSession(connectors []Connector, onChange func(Snapshot)) *Session {
	return &Session{
		connectors: append([]Connector(nil), connectors...),
		onChange:   onChange,
		status:     StatusDisconnected,
		challenge:  newChallenge(),
	}
}

func newChallenge() string {
	return fmt.Sprintf("Connect your wallet to Crypto Tracker.\n\nNonce: %s", uuid.NewString())
}

// Connect uses the first connector, in configured order, that is ready for
// the request. The returned error is also kept as the session's inline
// error message.
func (s *Session) Connect(ctx context.Context, req ConnectRequest) (Snapshot, error) {
	s.mu.Lock()
	if s.status == StatusConnecting {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, ErrConnectInProgress
	}

	var picked Connector
	for _, c := range s.connectors {
		if c.Ready(req) {
			picked = c
			break
		}
	}
	if picked == nil {
		s.status = StatusDisconnected
		s.lastErr = ErrNoConnector.Error()
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.notify(snap)
		return snap, ErrNoConnector
	}

	s.status = StatusConnecting
	s.lastErr = ""
	req.Challenge = s.challenge
	pending := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(pending)

	addr, err := picked.Connect(ctx, req)

	s.mu.Lock()
	if err != nil {
		s.status = StatusDisconnected
		s.address = common.Address{}
		s.connector = ""
		s.lastErr = err.Error()
	} else {
		s.status = StatusConnected
		s.address = addr
		s.connector = picked.ID()
		s.lastErr = ""
		s.challenge = newChallenge()
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)

	if err != nil {
		return snap, errors.Wrapf(err, "connect via %s", picked.ID())
	}
	return snap, nil
}

func (s *Session) Disconnect() Snapshot {
	s.mu.Lock()
	s.status = StatusDisconnected
	s.address = common.Address{}
	s.connector = ""
	s.lastErr = ""
	s.challenge = newChallenge()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return snap
}

// Address returns the connected address, if any.
func (s *Session) Address() (common.Address, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.address, s.status == StatusConnected
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Status:     s.status,
		Connector:  s.connector,
		Error:      s.lastErr,
		Pending:    s.status == StatusConnecting,
		Connectors: make([]ConnectorInfo, 0, len(s.connectors)),
		Challenge:  s.challenge,
	}
	if s.status == StatusConnected {
		snap.Address = s.address.Hex()
	}
	for _, c := range s.connectors {
		snap.Connectors = append(snap.Connectors, ConnectorInfo{ID: c.ID(), Name: c.Name()})
	}
	return snap
}

func (s *Session) notify(snap Snapshot) {
	if s.onChange != nil {
		s.onChange(snap)
	}
}
