package state

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"
)

var (
	ErrClientExists   = errors.New("state: client already registered at address")
	ErrClientNotFound = errors.New("state: client not found")
	ErrGameNotFound   = errors.New("state: game not found")
)

// Store is the whole-process client/game table. Map access is guarded by
// a single reader-writer lock per §5 ("whole-map granularity is
// acceptable: P <= 4, games are few"); atomic counters allocate ids
// without taking the lock at all.
type Store struct {
	mu             sync.RWMutex
	clientsByAddr  map[string]*Client
	clientsByID    map[uint16]*Client
	games          map[uint32]*Game
	nextUserID     uint32
	nextGameID     uint32
}

func NewStore() *Store {
	return &Store{
		clientsByAddr: make(map[string]*Client),
		clientsByID:   make(map[uint16]*Client),
		games:         make(map[uint32]*Game),
	}
}

// NextUserID allocates a new user id (invariant 4: never repeats).
func (s *Store) NextUserID() uint16 {
	return uint16(atomic.AddUint32(&s.nextUserID, 1))
}

// NextGameID allocates a new game id (invariant 4: never repeats).
func (s *Store) NextGameID() uint32 {
	return atomic.AddUint32(&s.nextGameID, 1)
}

// AddClient registers a new client at addr. Fails if addr is already
// registered (a session must be removed before it can be re-added).
func (s *Store) AddClient(c *Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := c.Addr.String()
	if _, exists := s.clientsByAddr[key]; exists {
		return ErrClientExists
	}
	s.clientsByAddr[key] = c
	s.clientsByID[c.UserID] = c
	return nil
}

// RemoveClient evicts the client at addr, if present.
func (s *Store) RemoveClient(addr *net.UDPAddr) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := addr.String()
	c, ok := s.clientsByAddr[key]
	if !ok {
		return
	}
	delete(s.clientsByAddr, key)
	delete(s.clientsByID, c.UserID)
}

// GetClient returns the client at addr.
func (s *Store) GetClient(addr *net.UDPAddr) (*Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clientsByAddr[addr.String()]
	return c, ok
}

// GetClientByID returns the client with the given user id.
func (s *Store) GetClientByID(id uint16) (*Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clientsByID[id]
	return c, ok
}

// UpdateClient applies fn to the client at addr under the write lock,
// giving the handler an atomic read-modify-write.
func (s *Store) UpdateClient(addr *net.UDPAddr, fn func(*Client)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clientsByAddr[addr.String()]
	if !ok {
		return ErrClientNotFound
	}
	fn(c)
	return nil
}

// RecordPing folds an RTT sample into the client's EWMA ping.
func (s *Store) RecordPing(addr *net.UDPAddr, sampleMillis float64) error {
	return s.UpdateClient(addr, func(c *Client) { c.recordPing(sampleMillis) })
}

// AllClientAddresses snapshots every currently-registered peer address.
func (s *Store) AllClientAddresses() []*net.UDPAddr {
	s.mu.RLock()
	defer s.mu.RUnlock()

	addrs := make([]*net.UDPAddr, 0, len(s.clientsByAddr))
	for _, c := range s.clientsByAddr {
		addrs = append(addrs, c.Addr)
	}
	return addrs
}

// AddGame registers a newly created game.
func (s *Store) AddGame(g *Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = g
}

// RemoveGame deletes a game, e.g. on owner-close or last-quit.
func (s *Store) RemoveGame(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
}

// GetGame returns the game with the given id.
func (s *Store) GetGame(id uint32) (*Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	return g, ok
}

// UpdateGame applies fn to the game with the given id under the write
// lock. The sync manager swap on start/all-dropped goes through this.
func (s *Store) UpdateGame(id uint32, fn func(*Game)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[id]
	if !ok {
		return ErrGameNotFound
	}
	fn(g)
	return nil
}

// AllGames snapshots every game for a status broadcast.
func (s *Store) AllGames() []*Game {
	s.mu.RLock()
	defer s.mu.RUnlock()

	games := make([]*Game, 0, len(s.games))
	for _, g := range s.games {
		games = append(games, g)
	}
	return games
}

// ClientCount reports the number of live clients, for the control
// port's status query (§4.8).
func (s *Store) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clientsByAddr)
}
