package pairing

import (
	"context"
	"errors"
	"math/rand"

	"github.com/Dosada05/chess-swiss/models"
)

var (
	ErrOddField      = errors.New("participant count must be even")
	ErrFieldTooSmall = errors.New("not enough participants (minimum 2 required)")
)

// GenerateRoundParams описывает вход генератора пар. Для тай-брейкового
// тура Participants содержит только подгруппу, разделившую первое место.
type GenerateRoundParams struct {
	Tournament   *models.Tournament
	Participants []*models.Participant
	RoundNumber  int
	TieBreak     bool

	// Rand задаёт источник случайности для жеребьёвки первого тура.
	// nil означает недетерминированный источник.
	Rand *rand.Rand
}

type Generator interface {
	GenerateRound(ctx context.Context, params GenerateRoundParams) ([]*models.Match, error)

	GetName() string
}
