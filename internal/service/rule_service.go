package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/gofrs/uuid/v5"

	"github.com/hearthledger/budget-server/internal/schedule"
)

const ruleListCacheTTL = 30 * time.Second

// ruleStore is the slice of the rule store the service depends on.
type ruleStore interface {
	Insert(ctx context.Context, rule *schedule.Rule) (uuid.UUID, error)
	FindByID(ctx context.Context, id uuid.UUID) (*schedule.Rule, error)
	ListByHousehold(ctx context.Context, householdID uuid.UUID) ([]schedule.Rule, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetStatus(ctx context.Context, id uuid.UUID, status schedule.RuleStatus) error
}

// RuleService handles scheduled rule business logic. It owns the rule
// invariants on the write path and a short-lived read cache for household
// rule lists, invalidated on every write.
type RuleService struct {
	rules ruleStore
	cache *ristretto.Cache
}

// NewRuleService creates a new RuleService.
func NewRuleService(rules ruleStore) (*RuleService, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000,
		MaxCost:     10000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("rule service: cache: %w", err)
	}
	return &RuleService{rules: rules, cache: cache}, nil
}

// CreateRule validates and stores a new rule. New rules always start
// active with clean run state regardless of what the caller passes.
func (s *RuleService) CreateRule(ctx context.Context, rule schedule.Rule) (uuid.UUID, error) {
	rule.Status = schedule.RuleStatusActive
	rule.LastRunDate = nil
	rule.FailureCount = 0
	rule.LastError = nil

	if err := rule.Validate(); err != nil {
		return uuid.Nil, err
	}

	id, err := s.rules.Insert(ctx, &rule)
	if err != nil {
		return uuid.Nil, err
	}
	s.invalidate(rule.HouseholdID)
	return id, nil
}

// GetRule retrieves a rule by ID.
func (s *RuleService) GetRule(ctx context.Context, id uuid.UUID) (*schedule.Rule, error) {
	return s.rules.FindByID(ctx, id)
}

// ListRules returns all of a household's rules, served from the cache when
// a recent read is available.
func (s *RuleService) ListRules(ctx context.Context, householdID uuid.UUID) ([]schedule.Rule, error) {
	key := ruleListCacheKey(householdID)
	if cached, ok := s.cache.Get(key); ok {
		if rules, ok := cached.([]schedule.Rule); ok {
			return rules, nil
		}
	}

	rules, err := s.rules.ListByHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}
	s.cache.SetWithTTL(key, rules, 1, ruleListCacheTTL)
	return rules, nil
}

// DeleteRule removes a rule permanently.
func (s *RuleService) DeleteRule(ctx context.Context, id uuid.UUID) error {
	rule, err := s.rules.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.rules.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(rule.HouseholdID)
	return nil
}

// PauseRule takes a rule out of scheduling until it is resumed.
func (s *RuleService) PauseRule(ctx context.Context, id uuid.UUID) error {
	return s.setStatus(ctx, id, schedule.RuleStatusPaused)
}

// ResumeRule reactivates a paused rule. The store resets the failure count
// so the pause threshold starts fresh; the last run date is kept, so
// generation resumes strictly after the last materialized occurrence.
func (s *RuleService) ResumeRule(ctx context.Context, id uuid.UUID) error {
	return s.setStatus(ctx, id, schedule.RuleStatusActive)
}

func (s *RuleService) setStatus(ctx context.Context, id uuid.UUID, status schedule.RuleStatus) error {
	rule, err := s.rules.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.rules.SetStatus(ctx, id, status); err != nil {
		return err
	}
	s.invalidate(rule.HouseholdID)
	return nil
}

func (s *RuleService) invalidate(householdID uuid.UUID) {
	s.cache.Del(ruleListCacheKey(householdID))
}

func ruleListCacheKey(householdID uuid.UUID) string {
	return "rules:" + householdID.String()
}
