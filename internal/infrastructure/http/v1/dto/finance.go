package dto

import (
	"time"

	"livecart/internal/core/apperror"
	"livecart/internal/domain/finance"
	"livecart/internal/domain/livesession"
)

// RangeQuery selects a reporting period. To is exclusive.
type RangeQuery struct {
	From     time.Time `form:"from" binding:"required" time_format:"2006-01-02"`
	To       time.Time `form:"to" binding:"required" time_format:"2006-01-02"`
	Platform string    `form:"platform"`
}

// ToRange converts query to a domain reporting range.
func (q *RangeQuery) ToRange() (finance.Range, error) {
	if !q.To.After(q.From) {
		return finance.Range{}, apperror.NewValidation("range end must be after range start")
	}
	r := finance.Range{From: q.From, To: q.To}
	if q.Platform != "" {
		p := livesession.Platform(q.Platform)
		r.Platform = &p
	}
	return r, nil
}
