package sqlstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/lib/pq"           // Postgres driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/sirupsen/logrus"

	"github.com/mlecomte/papote/internal/models"
)

// SQLStore persists the user collection as one JSON blob per user, keyed by
// email. It keeps the flat-file contract: LoadAll reads every record, SaveAll
// replaces the whole table inside a transaction. The position column
// preserves registration order across both drivers.
type SQLStore struct {
	db         *sql.DB
	driverName string
	log        *logrus.Logger
}

func New(driverName, dataSourceName string, log *logrus.Logger) (*SQLStore, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLStore{db: db, driverName: driverName, log: log}
	if err := s.createTables(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		position INTEGER NOT NULL,
		email TEXT PRIMARY KEY,
		data TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(query)
	return err
}

// Helper to handle placeholders
func (s *SQLStore) rebind(query string) string {
	if s.driverName == "postgres" {
		n := strings.Count(query, "?")
		for i := 1; i <= n; i++ {
			query = strings.Replace(query, "?", fmt.Sprintf("$%d", i), 1)
		}
	}
	return query
}

func (s *SQLStore) LoadAll() ([]models.User, error) {
	rows, err := s.db.Query("SELECT email, data FROM users ORDER BY position ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var email, data string
		if err := rows.Scan(&email, &data); err != nil {
			return nil, err
		}
		var user models.User
		if err := json.Unmarshal([]byte(data), &user); err != nil {
			s.log.WithError(err).WithField("email", email).
				Warn("user record is corrupt, skipping it")
			continue
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	models.NormalizeUsers(users)
	return users, nil
}

func (s *SQLStore) SaveAll(users []models.User) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM users"); err != nil {
		return err
	}

	insert := s.rebind("INSERT INTO users (position, email, data) VALUES (?, ?, ?)")
	for i, user := range users {
		data, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("encode user %s: %w", user.Email, err)
		}
		if _, err := tx.Exec(insert, i, user.Email, string(data)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
