package service

import (
	"context"
	"crypto/rand"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"codepractice/internal/cache"
	"codepractice/internal/config"
	"codepractice/internal/model"
)

// maxJudgeBody caps how much of the judge page is scanned for the marker
const maxJudgeBody = 4 << 20

// CredentialService checks caller-supplied credentials against the external
// judge and issues access passes for accepted ones. It never stores a token.
type CredentialService struct {
	judge     config.JudgeConfig
	passTTL   time.Duration
	jwtSecret []byte
	client    *http.Client
	cache     cache.CredentialCache
	log       hclog.Logger
	now       func() time.Time
}

// NewCredentialService creates a new credential service. cache may be nil.
func NewCredentialService(judge config.JudgeConfig, access config.AccessConfig, cache cache.CredentialCache, log hclog.Logger) *CredentialService {
	secret := []byte(access.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			panic("credential: cannot generate access pass secret: " + err.Error())
		}
		log.Warn("ACCESS_PASS_SECRET not set, access passes will not survive a restart")
	}

	return &CredentialService{
		judge:     judge,
		passTTL:   access.TTL,
		jwtSecret: secret,
		client: &http.Client{
			Timeout: judge.Timeout,
		},
		cache: cache,
		log:   log,
		now:   time.Now,
	}
}

// Accept validates token and, if it is valid, issues an access pass
func (s *CredentialService) Accept(ctx context.Context, token string) (*model.CredentialResponse, error) {
	if !s.Validate(ctx, token) {
		return nil, ErrInvalidCredential
	}
	pass, expiresAt, err := s.IssueAccessPass()
	if err != nil {
		return nil, err
	}
	return &model.CredentialResponse{
		Valid:       true,
		AccessToken: pass,
		ExpiresAt:   expiresAt,
	}, nil
}

// Validate forwards token to the judge and looks for the marker in the
// response. Every failure counts as invalid.
func (s *CredentialService) Validate(ctx context.Context, token string) bool {
	token = strings.TrimSpace(token)
	if token == "" || strings.TrimSpace(s.judge.Marker) == "" {
		return false
	}

	if s.cache != nil && s.judge.CacheTTL > 0 {
		known, err := s.cache.Known(ctx, token)
		if err != nil {
			s.log.Warn("credential cache lookup failed", "error", err)
		} else if known {
			s.log.Debug("credential accepted from cache")
			return true
		}
	}

	ok, err := s.check(ctx, token)
	if err != nil {
		s.log.Warn("credential check failed", "error", err)
		return false
	}
	if !ok {
		s.log.Info("credential rejected by judge")
		return false
	}

	if s.cache != nil && s.judge.CacheTTL > 0 {
		if err := s.cache.Remember(ctx, token, s.judge.CacheTTL); err != nil {
			s.log.Warn("credential cache store failed", "error", err)
		}
	}
	return true
}

// check makes the judge request
func (s *CredentialService) check(ctx context.Context, token string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.judge.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.judge.URL, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Referer", s.judge.URL)
	req.Header.Set("Cookie", cookieHeader(token))

	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxJudgeBody))
		return false, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJudgeBody))
	if err != nil {
		return false, err
	}
	return strings.Contains(string(body), s.judge.Marker), nil
}

// cookieHeader accepts a full cookie string or a bare session id
func cookieHeader(token string) string {
	if strings.Contains(token, "=") {
		return token
	}
	return "JSESSIONID=" + token
}

// IssueAccessPass creates a signed, short-lived access pass
func (s *CredentialService) IssueAccessPass() (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.passTTL)

	claims := &model.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   "practice",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateAccessPass validates an access pass and returns its claims
func (s *CredentialService) ValidateAccessPass(tokenString string) (*model.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrInvalidAccessPass
	}

	claims, ok := token.Claims.(*model.AccessClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidAccessPass
	}
	return claims, nil
}
