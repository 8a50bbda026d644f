package domain

import "time"

const AnonymousReviewer = "Anonymous"

type HotelReview struct {
	ReviewerName string    `json:"reviewer_name"`
	Text         string    `json:"text"`
	Date         time.Time `json:"date"`
	Rating       float64   `json:"rating"`
}
