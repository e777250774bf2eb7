package player

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/duskfall/adventure/internal/game/atlas"
)

// DailyCooldown is how long a claimed daily reward stays unclaimable.
const DailyCooldown = 24 * time.Hour

// Repository persists players. Implementations live in the storage layer.
type Repository interface {
	// LoadAll returns every persisted player.
	LoadAll(ctx context.Context) ([]*Player, error)
	// Upsert inserts or updates a player keyed by owner ID.
	Upsert(ctx context.Context, p *Player) error
	// Delete removes a player by owner ID.
	Delete(ctx context.Context, ownerID int64) error
}

// Source produces random numbers. Satisfied by math/rand.Rand.
type Source interface {
	Intn(n int) int
}

// Profile is a point-in-time view of a player for the presentation layer.
type Profile struct {
	Name      string
	Level     int
	Exp       int
	ExpToNext int
	Gold      int
	Location  *atlas.Node
	Status    Status
	Remaining time.Duration
	Captured  int
	CreatedAt time.Time
}

// Manager owns the in-memory player registry, keeps it consistent with the
// repository, and offers the account-level operations. All methods are safe
// for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	players map[int64]*Player
	byName  map[string]int64

	repo      Repository
	actions   *Actions
	atlas     *atlas.Atlas
	rand      Source
	homeMapID int
	logger    *zap.Logger

	flushInterval time.Duration
	stop          chan struct{}
	done          chan struct{}
}

// NewManager creates an empty manager. Call Load before serving commands.
//
// Precondition: all arguments must be non-nil; flushInterval must be positive.
func NewManager(repo Repository, actions *Actions, world *atlas.Atlas, rand Source, homeMapID int, flushInterval time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		players:       make(map[int64]*Player),
		byName:        make(map[string]int64),
		repo:          repo,
		actions:       actions,
		atlas:         world,
		rand:          rand,
		homeMapID:     homeMapID,
		logger:        logger,
		flushInterval: flushInterval,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Actions exposes the travel/explore state machine for command handlers.
func (m *Manager) Actions() *Actions { return m.actions }

// Load populates the registry from the repository. Players whose home node
// no longer exists are moved home rather than dropped.
func (m *Manager) Load(ctx context.Context) error {
	players, err := m.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading players: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range players {
		if _, ok := m.atlas.Get(p.MapID); !ok {
			m.logger.Warn("player on a missing map node, sending home",
				zap.Int64("owner", p.OwnerID),
				zap.Int("map", p.MapID))
			p.MapID = m.homeMapID
		}
		p.SetLevelThreshold(p.Level() + 1)
		m.players[p.OwnerID] = p
		m.byName[strings.ToLower(p.Name)] = p.OwnerID
	}
	m.logger.Info("players loaded", zap.Int("count", len(players)))
	return nil
}

// Get returns the player owned by the given user.
func (m *Manager) Get(ownerID int64) (*Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[ownerID]
	if !ok {
		return nil, ErrNoPlayer
	}
	return p, nil
}

// GetByName returns the player with the given display name,
// case-insensitively.
func (m *Manager) GetByName(name string) (*Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byName[strings.ToLower(name)]
	if !ok {
		return nil, ErrNoPlayer
	}
	return m.players[id], nil
}

func validateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return &NameError{Reason: "name must not be empty"}
	}
	if len(trimmed) > MaxNameLength {
		return &NameError{Reason: fmt.Sprintf("name must be at most %d characters", MaxNameLength)}
	}
	return nil
}

// Create makes a new player for the given user at the home node and
// persists it.
//
// Precondition: the user must not already own a player and the name must be
// unused.
func (m *Manager) Create(ctx context.Context, ownerID int64, name string) (*Player, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.players[ownerID]; ok {
		return nil, &ExistsError{Name: existing.Name}
	}
	if _, ok := m.byName[strings.ToLower(name)]; ok {
		return nil, &ExistsError{Name: name}
	}

	p := New(ownerID, name, m.homeMapID, time.Now().UTC())
	if err := m.repo.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("persisting new player: %w", err)
	}
	m.players[ownerID] = p
	m.byName[strings.ToLower(name)] = ownerID
	m.logger.Info("player created",
		zap.Int64("owner", ownerID),
		zap.String("name", name))
	return p, nil
}

// Delete removes a player, its persisted row, and all its timer keys.
func (m *Manager) Delete(ctx context.Context, ownerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[ownerID]
	if !ok {
		return ErrNoPlayer
	}
	if err := m.repo.Delete(ctx, ownerID); err != nil {
		return fmt.Errorf("deleting player: %w", err)
	}
	if err := m.actions.Clock().Clear(ctx, ownerID); err != nil {
		m.logger.Warn("clearing timer keys failed",
			zap.Int64("owner", ownerID),
			zap.Error(err))
	}
	delete(m.players, ownerID)
	delete(m.byName, strings.ToLower(p.Name))
	m.logger.Info("player deleted",
		zap.Int64("owner", ownerID),
		zap.String("name", p.Name))
	return nil
}

// Rename changes a player's display name, enforcing the same validation and
// uniqueness rules as Create.
func (m *Manager) Rename(ctx context.Context, ownerID int64, newName string) error {
	if err := validateName(newName); err != nil {
		return err
	}
	newName = strings.TrimSpace(newName)

	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[ownerID]
	if !ok {
		return ErrNoPlayer
	}
	lower := strings.ToLower(newName)
	if takenBy, ok := m.byName[lower]; ok && takenBy != ownerID {
		return &ExistsError{Name: newName}
	}

	old := p.Name
	delete(m.byName, strings.ToLower(old))
	p.Name = newName
	m.byName[lower] = ownerID
	if err := m.repo.Upsert(ctx, p); err != nil {
		return fmt.Errorf("persisting rename: %w", err)
	}
	m.logger.Info("player renamed",
		zap.Int64("owner", ownerID),
		zap.String("from", old),
		zap.String("to", newName))
	return nil
}

// Give transfers gold between two players.
//
// Precondition: amount must be positive and within the sender's balance.
func (m *Manager) Give(ctx context.Context, fromID, toID int64, amount int) error {
	if amount <= 0 {
		return ErrNonPositiveAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	from, ok := m.players[fromID]
	if !ok {
		return ErrNoPlayer
	}
	to, ok := m.players[toID]
	if !ok {
		return ErrNoPlayer
	}
	if !from.SpendGold(amount) {
		return &InsufficientFundsError{Need: amount, Have: from.Gold}
	}
	to.AddGold(amount)
	m.logger.Info("gold transferred",
		zap.Int64("from", fromID),
		zap.Int64("to", toID),
		zap.Int("amount", amount))
	return nil
}

// Daily awards a once-a-day experience bonus scaled to the gap before the
// player's next level, then arms the cooldown key.
//
// Postcondition: returns the exp awarded, or a CooldownError with the time
// left when claimed too early.
func (m *Manager) Daily(ctx context.Context, ownerID int64) (int, error) {
	p, err := m.Get(ownerID)
	if err != nil {
		return 0, err
	}
	clock := m.actions.Clock()
	if remaining := clock.DailyRemaining(ctx, ownerID); remaining > 0 {
		return 0, &CooldownError{Remaining: remaining}
	}

	gap := p.ExpToNextLevel()
	low, high := gap/4, gap/2
	if low < 1 {
		low = 1
	}
	if high <= low {
		high = low + 1
	}
	gain := low + m.rand.Intn(high-low+1)

	p.AddExp(gain)
	if err := clock.StartDaily(ctx, ownerID, DailyCooldown); err != nil {
		return 0, err
	}
	m.logger.Info("daily claimed",
		zap.Int64("owner", ownerID),
		zap.Int("exp", gain))
	return gain, nil
}

// Snapshot returns a copy of the registry's players, for iteration without
// holding the lock.
func (m *Manager) Snapshot() []*Player {
	m.mu.RLock()
	defer m.mu.RUnlock()
	players := make([]*Player, 0, len(m.players))
	for _, p := range m.players {
		players = append(players, p)
	}
	return players
}

// Profile builds the presentation view for one player, reconciling any
// finished action first.
func (m *Manager) Profile(ctx context.Context, ownerID int64) (*Profile, []Event, error) {
	p, err := m.Get(ownerID)
	if err != nil {
		return nil, nil, err
	}
	events, err := m.actions.Reconcile(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	status, remaining := m.actions.Clock().Busy(ctx, ownerID)
	node, _ := m.atlas.Get(p.MapID)
	return &Profile{
		Name:      p.Name,
		Level:     p.Level(),
		Exp:       p.Exp,
		ExpToNext: p.ExpToNextLevel(),
		Gold:      p.Gold,
		Location:  node,
		Status:    status,
		Remaining: remaining,
		Captured:  p.Compendium.Count(),
		CreatedAt: p.CreatedAt,
	}, events, nil
}

// TopByExp returns up to n players ordered by experience, descending.
func (m *Manager) TopByExp(n int) []*Player {
	players := m.Snapshot()
	sort.Slice(players, func(i, j int) bool { return players[i].Exp > players[j].Exp })
	if len(players) > n {
		players = players[:n]
	}
	return players
}

// TopByCaptured returns up to n players ordered by compendium count,
// descending.
func (m *Manager) TopByCaptured(n int) []*Player {
	players := m.Snapshot()
	sort.Slice(players, func(i, j int) bool {
		return players[i].Compendium.Count() > players[j].Compendium.Count()
	})
	if len(players) > n {
		players = players[:n]
	}
	return players
}

// Flush reconciles and persists every player once. Per-player failures are
// logged and skipped so one bad row cannot stall the rest.
func (m *Manager) Flush(ctx context.Context) {
	for _, p := range m.Snapshot() {
		if _, err := m.actions.Reconcile(ctx, p); err != nil {
			m.logger.Warn("reconcile during flush failed",
				zap.Int64("owner", p.OwnerID),
				zap.Error(err))
			continue
		}
		if err := m.repo.Upsert(ctx, p); err != nil {
			m.logger.Warn("persisting player failed",
				zap.Int64("owner", p.OwnerID),
				zap.Error(err))
		}
	}
}

// Start runs the periodic flush loop until Stop is called. Implements the
// lifecycle Service interface.
func (m *Manager) Start() error {
	defer close(m.done)
	ticker := time.NewTicker(m.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.Flush(context.Background())
		case <-m.stop:
			m.Flush(context.Background())
			return nil
		}
	}
}

// Stop ends the flush loop after one final flush.
func (m *Manager) Stop() {
	close(m.stop)
	<-m.done
}
