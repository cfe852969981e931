package models

import (
	"github.com/shopspring/decimal"
)

// WorkerProfile содержит то, что движку бронирований нужно знать об исполнителе.
// Сам профиль ведётся отдельным сервисом.
type WorkerProfile struct {
	UserID       int64           `db:"user_id" json:"user_id"`
	HourlyRate   decimal.Decimal `db:"hourly_rate" json:"hourly_rate"`
	Availability bool            `db:"availability" json:"availability"`
	Rating       decimal.Decimal `db:"rating" json:"rating"`
	TotalReviews int             `db:"total_reviews" json:"total_reviews"`
}

// WorkerRating агрегирует отзывы исполнителя.
type WorkerRating struct {
	WorkerID     int64           `db:"user_id" json:"worker_id"`
	Rating       decimal.Decimal `db:"rating" json:"rating"`
	TotalReviews int             `db:"total_reviews" json:"total_reviews"`
	RatingBreakdown
}

// RatingBreakdown число отзывов по каждой оценке.
type RatingBreakdown struct {
	FiveStar  int `db:"five_star" json:"five_star"`
	FourStar  int `db:"four_star" json:"four_star"`
	ThreeStar int `db:"three_star" json:"three_star"`
	TwoStar   int `db:"two_star" json:"two_star"`
	OneStar   int `db:"one_star" json:"one_star"`
}
