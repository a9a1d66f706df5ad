package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greengo-app/greengo-api/internal/database"
	"github.com/greengo-app/greengo-api/internal/models"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{pool: db.Pool}
}

// rowScanner interface for scanning user rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

const userColumns = `id, subject_id, email, name, national_id, country, phone, avatar_url, language,
	password_hash, notifications_enabled, dark_mode, twofa_enabled, twofa_secret, created_at, updated_at`

// scanUserRow handles nullable fields and populates a User model from a database row
func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User

	err := scanner.Scan(
		&user.ID, &user.SubjectID, &user.Email, &user.Name,
		&user.NationalID, &user.Country, &user.Phone, &user.AvatarURL, &user.Language,
		&user.PasswordHash, &user.NotificationsEnabled, &user.DarkMode,
		&user.TwoFAEnabled, &user.TwoFASecret,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUserRow(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetBySubject(ctx context.Context, subjectID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE subject_id = $1`
	return scanUserRow(r.pool.QueryRow(ctx, query, subjectID))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUserRow(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (subject_id, email, name, national_id, country, phone, language)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns

	created, err := scanUserRow(r.pool.QueryRow(ctx, query,
		user.SubjectID, user.Email, user.Name, user.NationalID, user.Country, user.Phone, user.Language))
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		UPDATE users
		SET name = $2, national_id = $3, country = $4, phone = $5, updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns

	return scanUserRow(r.pool.QueryRow(ctx, query,
		user.ID, user.Name, user.NationalID, user.Country, user.Phone))
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, userID int64, avatarURL string) error {
	return r.exec(ctx, `UPDATE users SET avatar_url = $2, updated_at = now() WHERE id = $1`, userID, avatarURL)
}

func (r *UserRepository) UpdateLanguage(ctx context.Context, userID int64, language string) error {
	return r.exec(ctx, `UPDATE users SET language = $2, updated_at = now() WHERE id = $1`, userID, language)
}

func (r *UserRepository) UpdatePreferences(ctx context.Context, userID int64, notificationsEnabled, darkMode bool) error {
	return r.exec(ctx,
		`UPDATE users SET notifications_enabled = $2, dark_mode = $3, updated_at = now() WHERE id = $1`,
		userID, notificationsEnabled, darkMode)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, userID, passwordHash)
}

// GetTwoFactorState reads only the two-factor columns.
func (r *UserRepository) GetTwoFactorState(ctx context.Context, userID int64) (*models.TwoFactorState, error) {
	query := `SELECT id, twofa_enabled, twofa_secret FROM users WHERE id = $1`

	var state models.TwoFactorState
	err := r.pool.QueryRow(ctx, query, userID).Scan(&state.UserID, &state.Enabled, &state.Secret)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &state, nil
}

// SetTwoFactorSecretIfAbsent stores a freshly provisioned secret only when no
// secret exists yet. The returned secret is whichever one is now on record,
// so concurrent enrollment requests all converge on a single secret.
func (r *UserRepository) SetTwoFactorSecretIfAbsent(ctx context.Context, userID int64, secret string) (string, error) {
	query := `
		UPDATE users
		SET twofa_secret = COALESCE(twofa_secret, $2), updated_at = now()
		WHERE id = $1
		RETURNING twofa_secret`

	var stored string
	err := r.pool.QueryRow(ctx, query, userID, secret).Scan(&stored)
	if err != nil {
		return "", database.MapPostgresError(err)
	}
	return stored, nil
}

// EnableTwoFactor flips the enabled flag. It refuses when no secret is
// stored: the flag must never be set without a confirmed secret behind it.
func (r *UserRepository) EnableTwoFactor(ctx context.Context, userID int64) error {
	query := `
		UPDATE users
		SET twofa_enabled = TRUE, updated_at = now()
		WHERE id = $1 AND twofa_secret IS NOT NULL`

	tag, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrTwoFactorNotInitiated
	}
	return nil
}

// DisableTwoFactor clears both the flag and the secret, regardless of
// current state. Pending enrollments are discarded too.
func (r *UserRepository) DisableTwoFactor(ctx context.Context, userID int64) error {
	return r.exec(ctx,
		`UPDATE users SET twofa_enabled = FALSE, twofa_secret = NULL, updated_at = now() WHERE id = $1`,
		userID)
}

func (r *UserRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
