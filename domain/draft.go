package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Draft is the client-local, not-yet-persisted form of an Item.
// LocalImagePath points at a device file and must never reach the
// document store as-is.
type Draft struct {
	Name           string
	Price          decimal.Decimal
	Sold           bool
	CreatedAt      time.Time
	LocalImagePath string
}

// NewDraft starts an empty draft stamped with the current time, which
// becomes the item's sort key once persisted.
func NewDraft() Draft {
	return Draft{CreatedAt: time.Now().UTC()}
}

func (d Draft) HasImage() bool {
	return d.LocalImagePath != ""
}
