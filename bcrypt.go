package docauth

import (
	stderrors "errors"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost resists offline brute force on current hardware
// while keeping login latency acceptable.
const DefaultBcryptCost = 12

// Hasher wraps bcrypt with a configurable cost factor.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher. A zero or out-of-range cost falls back to
// DefaultBcryptCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &Hasher{cost: cost}
}

// HashPassword will generate a password hash
func (h *Hasher) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", errors.Wrap(err, ErrHashingFailure.Category, ErrHashingFailure.Message).
			WithTextCode(ErrHashingFailure.TextCode)
	}

	return string(hash), nil
}

// ComparePasswordAndHash will validate the given cleartext password
// matches the hashed password. A mismatch or a malformed hash both
// report ErrInvalidCredentials: verification fails closed.
func (h *Hasher) ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if stderrors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		if stderrors.Is(err, bcrypt.ErrHashTooShort) {
			return ErrInvalidCredentials
		}
		var hashErr bcrypt.InvalidHashPrefixError
		if stderrors.As(err, &hashErr) {
			return ErrInvalidCredentials
		}
		return errors.Wrap(err, ErrHashingFailure.Category, ErrHashingFailure.Message).
			WithTextCode(ErrHashingFailure.TextCode)
	}
	return nil
}

// dummyCompare burns a bcrypt verification against a throwaway hash so
// login timing does not reveal whether an email exists.
func (h *Hasher) dummyCompare(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// Hash of a random UUID at the default cost; never matches user input.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), DefaultBcryptCost)
	if err != nil {
		return []byte("$2a$12$invalidinvalidinvalidinvalidinvalidinvalidinvalidinval")
	}
	return h
}()

// RandomPasswordHash is a temporary password
func (h *Hasher) RandomPasswordHash() string {
	pwd := uuid.New()

	hash, err := h.HashPassword(pwd.String())
	if err != nil {
		return h.RandomPasswordHash()
	}

	return hash
}
