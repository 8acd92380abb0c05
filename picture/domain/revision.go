package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewRevision returns a fresh revision stamp for the given write generation,
// formatted as "<generation>-<32 hex digits>".
func NewRevision(generation int) string {
	return fmt.Sprintf("%d-%s", generation, strings.ReplaceAll(uuid.NewString(), "-", ""))
}
