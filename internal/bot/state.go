package bot

import (
	"context"
	"errors"
	"fmt"

	"adtime-printshop/internal/pricing"
	"adtime-printshop/pkg/redis"
)

const (
	StepProduct    = "product"
	StepQuantity   = "quantity"
	StepMaterial   = "material"
	StepLamination = "lamination"
	StepPrintType  = "print_type"
	StepDimensions = "dimensions"
	StepConfirm    = "confirm"
)

// UserState is the /price dialog in progress. Only the request is kept,
// prices are recomputed on /confirm.
type UserState struct {
	Step    string          `json:"step"`
	Request pricing.Request `json:"request"`
}

type StateStorage struct {
	backend StateBackend
}

func NewStateStorage(backend StateBackend) *StateStorage {
	return &StateStorage{backend: backend}
}

func (s *StateStorage) Save(ctx context.Context, chatID int64, state UserState) error {
	if err := s.backend.SaveState(ctx, chatID, state); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Get returns an empty state when the chat has no dialog in progress.
func (s *StateStorage) Get(ctx context.Context, chatID int64) (UserState, error) {
	var state UserState
	err := s.backend.GetState(ctx, chatID, &state)
	if errors.Is(err, redis.ErrNotFound) {
		return UserState{}, nil
	}
	if err != nil {
		return UserState{}, fmt.Errorf("failed to get state: %w", err)
	}
	return state, nil
}

func (s *StateStorage) Clear(ctx context.Context, chatID int64) error {
	if err := s.backend.ClearState(ctx, chatID); err != nil {
		return fmt.Errorf("failed to clear state: %w", err)
	}
	return nil
}
