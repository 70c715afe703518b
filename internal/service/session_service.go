package service

import (
	"context"
	"time"

	"museobot/internal/domain"
	"museobot/internal/models"

	"github.com/rs/zerolog"
)

type SessionService struct {
	sessionRepo domain.SessionRepository
	logger      *zerolog.Logger
}

func NewSessionService(sessionRepo domain.SessionRepository, logger *zerolog.Logger) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		logger:      logger,
	}
}

func (s *SessionService) GetSession(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.sessionRepo.GetSession(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", id).Msg("failed to get session")
		return nil, err
	}

	return session, nil
}

func (s *SessionService) SaveSession(ctx context.Context, session *models.Session) error {
	return s.sessionRepo.SetSession(ctx, session)
}

func (s *SessionService) ClearSession(ctx context.Context, id string) error {
	return s.sessionRepo.ClearSession(ctx, id)
}

func (s *SessionService) CheckRateLimit(ctx context.Context, id string, limit int, window time.Duration) (bool, error) {
	return s.sessionRepo.CheckRateLimit(ctx, id, limit, window)
}
