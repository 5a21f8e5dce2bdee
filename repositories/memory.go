package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/chess-swiss/models"
)

// In-memory реализации репозиториев: для тестов и запуска без БД.
// Потокобезопасны, семантика ошибок совпадает с postgres-вариантами.

type MemoryPlayerRepository struct {
	mu      sync.RWMutex
	players map[string]*models.Player // keyed by national identifier
}

func NewMemoryPlayerRepository() *MemoryPlayerRepository {
	return &MemoryPlayerRepository{players: make(map[string]*models.Player)}
}

func (r *MemoryPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.players[player.NationalID]; exists {
		return ErrPlayerIDConflict
	}
	player.ID = len(r.players) + 1
	if player.CreatedAt.IsZero() {
		player.CreatedAt = time.Now()
	}
	cp := *player
	r.players[player.NationalID] = &cp
	return nil
}

func (r *MemoryPlayerRepository) GetByNationalID(ctx context.Context, nationalID string) (*models.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[nationalID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryPlayerRepository) List(ctx context.Context) ([]models.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	players := make([]models.Player, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, *p)
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].LastName != players[j].LastName {
			return players[i].LastName < players[j].LastName
		}
		return players[i].FirstName < players[j].FirstName
	})
	return players, nil
}

func (r *MemoryPlayerRepository) Update(ctx context.Context, player *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.players[player.NationalID]
	if !ok {
		return ErrPlayerNotFound
	}
	player.ID = existing.ID
	player.CreatedAt = existing.CreatedAt
	cp := *player
	r.players[player.NationalID] = &cp
	return nil
}

func (r *MemoryPlayerRepository) Delete(ctx context.Context, nationalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[nationalID]; !ok {
		return ErrPlayerNotFound
	}
	delete(r.players, nationalID)
	return nil
}

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[int]*models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[int]*models.User)}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return ErrUserEmailConflict
		}
	}
	user.ID = len(r.users) + 1
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

type MemoryTournamentRepository struct {
	mu          sync.RWMutex
	tournaments map[int]*models.Tournament
	nextID      int
}

func NewMemoryTournamentRepository() *MemoryTournamentRepository {
	return &MemoryTournamentRepository{tournaments: make(map[int]*models.Tournament), nextID: 1}
}

func (r *MemoryTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.nextID
	r.nextID++
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	cp := *t
	cp.Participants = nil
	cp.Rounds = nil
	r.tournaments[t.ID] = &cp
	return nil
}

func (r *MemoryTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *MemoryTournamentRepository) List(ctx context.Context, limit, offset int) ([]models.Tournament, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int, 0, len(r.tournaments))
	for id := range r.tournaments {
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))

	var out []models.Tournament
	for i, id := range ids {
		if i < offset {
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, *r.tournaments[id])
	}
	return out, nil
}

func (r *MemoryTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

type MemoryParticipantRepository struct {
	mu           sync.RWMutex
	participants map[int]*models.Participant
	nextID       int
}

func NewMemoryParticipantRepository() *MemoryParticipantRepository {
	return &MemoryParticipantRepository{participants: make(map[int]*models.Participant), nextID: 1}
}

func (r *MemoryParticipantRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.participants {
		if existing.TournamentID == p.TournamentID && existing.PlayerID == p.PlayerID {
			return ErrParticipantConflict
		}
	}
	p.ID = r.nextID
	r.nextID++
	cp := clonePart(p)
	r.participants[p.ID] = cp
	return nil
}

func (r *MemoryParticipantRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Participant
	for _, p := range r.participants {
		if p.TournamentID == tournamentID {
			out = append(out, clonePart(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seed < out[j].Seed })
	return out, nil
}

func (r *MemoryParticipantRepository) UpdateStanding(ctx context.Context, exec SQLExecutor, p *models.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.participants[p.ID]
	if !ok {
		return ErrParticipantNotFound
	}
	existing.Score = p.Score
	existing.TieBreak = p.TieBreak
	existing.Opponents = append([]string(nil), p.Opponents...)
	return nil
}

func clonePart(p *models.Participant) *models.Participant {
	cp := *p
	cp.Opponents = append([]string(nil), p.Opponents...)
	cp.Player = nil
	return &cp
}

type MemoryRoundRepository struct {
	mu     sync.RWMutex
	rounds map[int]*models.Round
	nextID int
}

func NewMemoryRoundRepository() *MemoryRoundRepository {
	return &MemoryRoundRepository{rounds: make(map[int]*models.Round), nextID: 1}
}

func (r *MemoryRoundRepository) Create(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	round.ID = r.nextID
	r.nextID++
	cp := *round
	cp.Matches = nil
	r.rounds[round.ID] = &cp
	return nil
}

func (r *MemoryRoundRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Round, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Round
	for _, rd := range r.rounds {
		if rd.TournamentID == tournamentID {
			cp := *rd
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *MemoryRoundRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RoundStatus, endedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rd, ok := r.rounds[id]
	if !ok {
		return ErrRoundNotFound
	}
	rd.Status = status
	rd.EndedAt = endedAt
	return nil
}

type MemoryMatchRepository struct {
	mu      sync.RWMutex
	matches map[string]*models.Match // keyed by uid
	byRound map[int][]string
	nextID  int
}

func NewMemoryMatchRepository() *MemoryMatchRepository {
	return &MemoryMatchRepository{
		matches: make(map[string]*models.Match),
		byRound: make(map[int][]string),
		nextID:  1,
	}
}

func (r *MemoryMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.matches[m.UID]; exists {
		return ErrMatchUIDConflict
	}
	m.ID = r.nextID
	r.nextID++
	cp := *m
	r.matches[m.UID] = &cp
	r.byRound[m.RoundID] = append(r.byRound[m.RoundID], m.UID)
	return nil
}

func (r *MemoryMatchRepository) ListByRound(ctx context.Context, roundID int) ([]*models.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Match
	for _, uid := range r.byRound[roundID] {
		cp := *r.matches[uid]
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderInRound < out[j].OrderInRound })
	return out, nil
}

func (r *MemoryMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.matches[m.UID]
	if !ok {
		return ErrMatchNotFound
	}
	existing.Player1Score = m.Player1Score
	existing.Player2Score = m.Player2Score
	existing.Resolved = m.Resolved
	existing.Recorded = m.Recorded
	return nil
}
