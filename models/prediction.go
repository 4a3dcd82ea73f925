package models

import (
	"fmt"
	"math"

	"github.com/xCarter93/lineupiq/domain/gridiron"
)

// Prediction is the position-tagged result of one inference. Each
// variant carries exactly its position's target stats; Flatten converts
// to the flat stat->value mapping used at the serving boundary, with
// values rounded to one decimal place.
type Prediction interface {
	Position() gridiron.Position
	Flatten() map[string]float64
}

// QBPrediction carries quarterback passing targets.
type QBPrediction struct {
	PassingYards float64 `json:"passing_yards"`
	PassingTDs   float64 `json:"passing_tds"`
}

func (QBPrediction) Position() gridiron.Position { return gridiron.PositionQB }

func (p QBPrediction) Flatten() map[string]float64 {
	return map[string]float64{
		"passing_yards": round1(p.PassingYards),
		"passing_tds":   round1(p.PassingTDs),
	}
}

// RBPrediction carries running-back rushing and receiving targets.
type RBPrediction struct {
	RushingYards   float64 `json:"rushing_yards"`
	RushingTDs     float64 `json:"rushing_tds"`
	Carries        float64 `json:"carries"`
	ReceivingYards float64 `json:"receiving_yards"`
	Receptions     float64 `json:"receptions"`
}

func (RBPrediction) Position() gridiron.Position { return gridiron.PositionRB }

func (p RBPrediction) Flatten() map[string]float64 {
	return map[string]float64{
		"rushing_yards":   round1(p.RushingYards),
		"rushing_tds":     round1(p.RushingTDs),
		"carries":         round1(p.Carries),
		"receiving_yards": round1(p.ReceivingYards),
		"receptions":      round1(p.Receptions),
	}
}

// ReceiverPrediction carries receiving targets, shared by WR and TE.
type ReceiverPrediction struct {
	Pos            gridiron.Position `json:"position"`
	ReceivingYards float64           `json:"receiving_yards"`
	ReceivingTDs   float64           `json:"receiving_tds"`
	Receptions     float64           `json:"receptions"`
}

func (p ReceiverPrediction) Position() gridiron.Position { return p.Pos }

func (p ReceiverPrediction) Flatten() map[string]float64 {
	return map[string]float64{
		"receiving_yards": round1(p.ReceivingYards),
		"receiving_tds":   round1(p.ReceivingTDs),
		"receptions":      round1(p.Receptions),
	}
}

// NewPrediction builds the variant for a position from raw per-target
// model outputs.
func NewPrediction(position gridiron.Position, targets map[string]float64) (Prediction, error) {
	switch position {
	case gridiron.PositionQB:
		return QBPrediction{
			PassingYards: targets["passing_yards"],
			PassingTDs:   targets["passing_tds"],
		}, nil
	case gridiron.PositionRB:
		return RBPrediction{
			RushingYards:   targets["rushing_yards"],
			RushingTDs:     targets["rushing_tds"],
			Carries:        targets["carries"],
			ReceivingYards: targets["receiving_yards"],
			Receptions:     targets["receptions"],
		}, nil
	case gridiron.PositionWR, gridiron.PositionTE:
		return ReceiverPrediction{
			Pos:            position,
			ReceivingYards: targets["receiving_yards"],
			ReceivingTDs:   targets["receiving_tds"],
			Receptions:     targets["receptions"],
		}, nil
	}
	return nil, fmt.Errorf("unsupported position %q", position)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
