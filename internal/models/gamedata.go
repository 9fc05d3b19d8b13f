// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

package models

import "time"

// ApprovalStatus is the ranking state of a beatmap on the game server.
type ApprovalStatus int

const (
	StatusGraveyard ApprovalStatus = -2
	StatusWIP       ApprovalStatus = -1
	StatusPending   ApprovalStatus = 0
	StatusRanked    ApprovalStatus = 1
	StatusApproved  ApprovalStatus = 2
	StatusQualified ApprovalStatus = 3
	StatusLoved     ApprovalStatus = 4
)

// Beatmap is raw beatmap data as returned by the game-data API.
type Beatmap struct {
	ID     BeatmapID `json:"beatmap_id"`
	SetID  int       `json:"beatmapset_id"`
	Artist string    `json:"artist"`
	Title  string    `json:"title"`

	// Version is the difficulty name within the set.
	Version string `json:"version"`

	Creator string         `json:"creator"`
	Status  ApprovalStatus `json:"approved"`

	// StarDifficulty is the no-mod star rating.
	StarDifficulty float64 `json:"difficultyrating"`

	BPM         float64       `json:"bpm"`
	TotalLength time.Duration `json:"total_length"`
	MaxCombo    int           `json:"max_combo"`

	ApproachRate      float64 `json:"diff_approach"`
	OverallDifficulty float64 `json:"diff_overall"`
	CircleSize        float64 `json:"diff_size"`
	HPDrain           float64 `json:"diff_drain"`
}

// User is a player profile as returned by the game-data API.
type User struct {
	ID        UserID  `json:"user_id"`
	Name      string  `json:"username"`
	Rank      int     `json:"pp_rank"`
	PP        float64 `json:"pp_raw"`
	Accuracy  float64 `json:"accuracy"`
	PlayCount int     `json:"playcount"`
	Country   string  `json:"country"`

	// FetchedAt is when this copy was retrieved from the API.
	FetchedAt time.Time `json:"-"`
}
