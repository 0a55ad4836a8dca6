package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"speakerhub/internal/domain"
)

type keywordService struct {
	keywordRepo    domain.KeywordRepository
	contextTimeout time.Duration
}

func NewKeywordService(keywordRepo domain.KeywordRepository, timeout time.Duration) domain.KeywordService {
	return &keywordService{
		keywordRepo:    keywordRepo,
		contextTimeout: timeout,
	}
}

func (s *keywordService) Create(ctx context.Context, text string) (*domain.Keyword, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	text = strings.TrimSpace(text)
	v := domain.NewValidationError()
	checkLength(v, "text", text, domain.KeywordMinLen, domain.KeywordMaxLen)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	kw := domain.NewKeyword(text)
	if err := s.keywordRepo.Create(ctx, kw); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("create keyword: %w", err)
	}
	return kw, nil
}

func (s *keywordService) List(ctx context.Context) ([]*domain.Keyword, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	keywords, err := s.keywordRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list keywords: %w", err)
	}
	return keywords, nil
}

func (s *keywordService) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	n, err := s.keywordRepo.CountSpeakers(ctx, id)
	if err != nil {
		return fmt.Errorf("count keyword speakers: %w", err)
	}
	if n > 0 {
		return domain.ErrKeywordInUse
	}
	if err := s.keywordRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrKeywordInUse) {
			return err
		}
		return fmt.Errorf("delete keyword: %w", err)
	}
	return nil
}
