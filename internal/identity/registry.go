// Package identity supplies the (userID, username) pair that namespaces
// ledger storage. Credential verification is a plain lookup against a local
// SQLite registry; there is deliberately no session or token machinery.
package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/bcrypt"

	_ "modernc.org/sqlite"
)

// User identifies whose ledger to open.
type User struct {
	ID       int64  `json:"userID"`
	Username string `json:"username"`
}

var (
	ErrUserExists         = errors.New("username already taken")
	ErrUnknownUser        = errors.New("unknown user")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmptyUsername      = errors.New("empty username")
	ErrEmptyPassword      = errors.New("empty password")
)

// Registry is the durable user store.
type Registry struct {
	db *sql.DB
}

// Open opens (or creates) the user registry database under dataDir.
func Open(dataDir string) (*Registry, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dataDir, "users.sqlite"))
	if err != nil {
		return nil, fmt.Errorf("open user registry: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS users (
		user_id INTEGER PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create users table: %w", err)
	}
	return &Registry{db: db}, nil
}

func (r *Registry) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Register creates a new user with a bcrypt password hash.
func (r *Registry) Register(ctx context.Context, username, password string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return User{}, ErrEmptyUsername
	}
	if password == "" {
		return User{}, ErrEmptyPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`, username, string(hash))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return User{}, ErrUserExists
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("read inserted id: %w", err)
	}

	slog.InfoContext(ctx, "User registered", "user_id", id, "username", username)
	return User{ID: id, Username: username}, nil
}

// Authenticate verifies the password and returns the matching user.
func (r *Registry) Authenticate(ctx context.Context, username, password string) (User, error) {
	username = strings.TrimSpace(username)

	var (
		user User
		hash string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, username, password_hash FROM users WHERE username = ?`, username).
		Scan(&user.ID, &user.Username, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUnknownUser
	}
	if err != nil {
		return User{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Lookup returns the user for a username without checking credentials.
func (r *Registry) Lookup(ctx context.Context, username string) (User, error) {
	var user User
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, username FROM users WHERE username = ?`, strings.TrimSpace(username)).
		Scan(&user.ID, &user.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUnknownUser
	}
	if err != nil {
		return User{}, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}
