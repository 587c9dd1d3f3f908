package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"svco-apply/internal/adapters/persistence/models"
	"svco-apply/internal/adapters/persistence/repositories"
	"svco-apply/internal/core/domain"

	"gorm.io/gorm"
)

// tokenBytes is the entropy of a resumption token before encoding.
const tokenBytes = 32

// TokenService issues and resolves the opaque resumption tokens applicants
// use to re-enter an in-progress application without a password.
//
// Only the SHA-256 digest of a token is persisted. Plaintext issued during
// the current process lifetime is cached so repeated Issue calls for the
// same applicant return the same token; after a restart a re-issue mints a
// fresh token and replaces the digest, which doubles as the rotation
// extension point.
type TokenService struct {
	applicantRepo repositories.ApplicantRepository

	mu     sync.Mutex
	issued map[uint]string // applicant ID -> plaintext issued this process
}

// NewTokenService creates a new token service
func NewTokenService(applicantRepo repositories.ApplicantRepository) *TokenService {
	return &TokenService{
		applicantRepo: applicantRepo,
		issued:        make(map[uint]string),
	}
}

// Issue returns a resumption token for the applicant. Idempotent within the
// process: a second call for the same applicant returns the token minted by
// the first.
func (s *TokenService) Issue(ctx context.Context, applicant *models.Applicant) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token, ok := s.issued[applicant.ID]; ok {
		return token, nil
	}

	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	applicant.TokenDigest = digest(token)
	if err := s.applicantRepo.Update(ctx, applicant); err != nil {
		return "", err
	}

	s.issued[applicant.ID] = token
	return token, nil
}

// Resolve maps a token back to its applicant. Malformed and unknown tokens
// take the same path and yield the same failure, so callers cannot tell them
// apart by response or timing.
func (s *TokenService) Resolve(ctx context.Context, token string) (*models.Applicant, error) {
	d := digest(token)

	applicant, err := s.applicantRepo.GetByTokenDigest(ctx, d)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(d), []byte(applicant.TokenDigest)) != 1 {
		return nil, domain.ErrInvalidToken
	}

	return applicant, nil
}

// digest hashes token plaintext for storage and lookup. Hashing first keeps
// the work identical for any input length.
func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
