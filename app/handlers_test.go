package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"storefront/domain"
	"storefront/internal/catalog"
	"storefront/pkg/events"

	"github.com/google/uuid"
)

// memRepository is an in-memory Repository used across the handler
// tests. It also satisfies the sync engine's Lister port, which lets
// the end-to-end test run the full create-then-observe loop without a
// database.
type memRepository struct {
	mu       sync.Mutex
	items    []domain.Item
	comments []domain.Comment
	users    map[string]domain.User
	seq      int

	failCreate error
}

func newMemRepository() *memRepository {
	return &memRepository{users: make(map[string]domain.User)}
}

func (m *memRepository) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%04d", prefix, m.seq)
}

func (m *memRepository) Close() error { return nil }

func (m *memRepository) CreateItem(_ context.Context, item domain.Item) (domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return domain.Item{}, m.failCreate
	}
	// Real uuids, matching what the store assigns (and what request
	// validation expects).
	item.ID = uuid.New().String()
	m.items = append(m.items, item)
	return item, nil
}

func (m *memRepository) GetItems(_ context.Context, limit, offset int) ([]domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sorted := make([]domain.Item, len(m.items))
	copy(sorted, m.items)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	if offset >= len(sorted) {
		return []domain.Item{}, nil
	}
	end := min(offset+limit, len(sorted))
	return sorted[offset:end], nil
}

func (m *memRepository) List(_ context.Context, _ catalog.Query) ([]domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Item, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *memRepository) CountItems(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items), nil
}

func (m *memRepository) GetItem(_ context.Context, id string) (domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.ID == id {
			return item, nil
		}
	}
	return domain.Item{}, sql.ErrNoRows
}

func (m *memRepository) SetItemImage(_ context.Context, itemID, imageURL string) (domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == itemID {
			m.items[i].ImageURL = &imageURL
			return m.items[i], nil
		}
	}
	return domain.Item{}, sql.ErrNoRows
}

func (m *memRepository) GetComments(_ context.Context, itemID string, page, pageSize int) ([]domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Comment, 0)
	for _, c := range m.comments {
		if c.ItemID == itemID {
			out = append(out, c)
		}
	}

	offset := (page - 1) * pageSize
	if offset >= len(out) {
		return []domain.Comment{}, nil
	}
	end := min(offset+pageSize, len(out))
	return out[offset:end], nil
}

func (m *memRepository) CountComments(_ context.Context, itemID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.comments {
		if c.ItemID == itemID {
			count++
		}
	}
	return count, nil
}

func (m *memRepository) CreateComment(_ context.Context, itemID, content string, rating int, authorName string) (domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	comment := domain.Comment{
		ID:         m.nextID("comment"),
		ItemID:     itemID,
		Content:    content,
		Rating:     rating,
		AuthorName: authorName,
		CreatedAt:  time.Now(),
	}
	m.comments = append(m.comments, comment)
	return comment, nil
}

func (m *memRepository) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return domain.User{}, sql.ErrNoRows
	}
	return user, nil
}

func (m *memRepository) CreateUser(_ context.Context, email, passwordHash string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[email]; ok {
		return domain.User{}, errors.New("SQLSTATE 23505")
	}
	user := domain.User{
		ID:           m.nextID("user"),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	m.users[email] = user
	return user, nil
}

// memPublisher records events and can fan them out to a listener, the
// way the broker feeds the sync engine's notifier.
type memPublisher struct {
	mu        sync.Mutex
	published []*events.Event
	onPublish func()
}

func (p *memPublisher) Publish(_ context.Context, _ string, event *events.Event, _ events.Headers) error {
	p.mu.Lock()
	p.published = append(p.published, event)
	fn := p.onPublish
	p.mu.Unlock()

	if fn != nil {
		fn()
	}
	return nil
}

func (p *memPublisher) Close() error { return nil }

func (p *memPublisher) eventNames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.published))
	for _, e := range p.published {
		names = append(names, e.Event)
	}
	return names
}
