package repositories

import (
	"context"
	"regexp"
	"strings"
	"time"

	"freshfetch/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const queryTimeout = 10 * time.Second

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// orderOwner is the id of the user who placed the order; idempotency keys are scoped to it.
func orderOwner(o *models.Order) string {
	if o.UserID == nil {
		return ""
	}
	return *o.UserID
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// searchRegex matches the user input as a literal, case-insensitive substring.
func searchRegex(search string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(strings.TrimSpace(search)), Options: "i"}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern is the ILIKE equivalent of searchRegex.
func likePattern(search string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(search)) + "%"
}

func stockStatusFor(stock int) string {
	if stock <= 0 {
		return models.StockStatusOut
	}
	return models.StockStatusIn
}
