package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrInvalidEmail    = errors.New("email is empty")
)

// Account is a provisioned user. Accounts are created by the OAuth login
// flow (out of scope here); this subsystem only reads them and mutates
// NotesPath.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`

	ID            int64  `bun:"id,pk,autoincrement" json:"id"`
	Email         string `bun:"email,unique" json:"email"`
	PhoneNumber   string `bun:"phone_number,nullzero" json:"phone_number,omitempty"`
	NotesPath     string `bun:"notes_path,nullzero" json:"notes_path,omitempty"`
	OAuthProvider string `bun:"oauth_provider,nullzero" json:"oauth_provider,omitempty"`
	OAuthID       string `bun:"oauth_id,nullzero" json:"oauth_id,omitempty"`
	AuthToken     string `bun:"auth_token,nullzero" json:"-"`
}

// Store is the narrow CRUD surface the graph is allowed to touch.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	UpdateNotesPath(ctx context.Context, email, notesPath string) (*Account, error)
}

type PostgresConfig struct {
	DSN string `envconfig:"DSN" split_words:"true" required:"true"`
}

// PostgresStore reads accounts through bun.
type PostgresStore struct {
	db *bun.DB
}

func NewPostgresStore(cfg PostgresConfig) (*PostgresStore, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return &PostgresStore{db: bun.NewDB(sqldb, pgdialect.New())}, nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrInvalidEmail
	}

	acct := new(Account)
	err := s.db.NewSelect().
		Model(acct).
		Where("email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	return acct, nil
}

func (s *PostgresStore) UpdateNotesPath(ctx context.Context, email, notesPath string) (*Account, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrInvalidEmail
	}

	res, err := s.db.NewUpdate().
		Model((*Account)(nil)).
		Set("notes_path = ?", notesPath).
		Where("email = ?", email).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("update notes path: %w", err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return nil, ErrAccountNotFound
	}

	return s.FindByEmail(ctx, email)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// MemoryStore holds accounts in process memory. Used by tests and local runs
// without a database.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

func NewMemoryStore(seed ...*Account) *MemoryStore {
	m := &MemoryStore{accounts: make(map[string]*Account, len(seed))}
	for _, acct := range seed {
		if acct != nil && acct.Email != "" {
			cp := *acct
			m.accounts[acct.Email] = &cp
		}
	}
	return m
}

func (m *MemoryStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrInvalidEmail
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	acct, ok := m.accounts[email]
	if !ok {
		return nil, ErrAccountNotFound
	}
	cp := *acct
	return &cp, nil
}

func (m *MemoryStore) UpdateNotesPath(ctx context.Context, email, notesPath string) (*Account, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrInvalidEmail
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acct, ok := m.accounts[email]
	if !ok {
		return nil, ErrAccountNotFound
	}
	acct.NotesPath = notesPath
	cp := *acct
	return &cp, nil
}
