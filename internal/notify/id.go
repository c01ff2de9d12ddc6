package notify

import (
	"sort"
	"strings"
	"time"

	"fincore/internal/core"

	"github.com/google/uuid"
)

// idNamespace scopes the name-based notification ids.
var idNamespace = uuid.MustParse("5b0c7f6e-55e2-4c1f-9a51-2f4d1f8c9e3a")

// entityKeys are the metadata keys that identify the fact behind a
// notification. Other metadata (due dates, amounts) does not affect identity.
var entityKeys = []string{
	core.MetaBudgetID,
	core.MetaAccountID,
	core.MetaTxID,
	core.MetaRecurringID,
	core.MetaDebtID,
	core.MetaCategory,
	core.MetaTier,
}

// DeterministicID derives the notification id from its type, the calendar
// day of at, and the entity ids found in metadata. The same fact on the
// same day always maps to the same id.
func DeterministicID(t core.NotificationType, at time.Time, metadata map[string]string) string {
	return uuid.NewSHA1(idNamespace, []byte(identity(t, at.Format(time.DateOnly), metadata))).String()
}

func identity(t core.NotificationType, day string, metadata map[string]string) string {
	parts := []string{string(t), day}
	parts = append(parts, entityParts(metadata)...)
	return strings.Join(parts, "|")
}

func entityParts(metadata map[string]string) []string {
	var parts []string
	for _, k := range entityKeys {
		if v, ok := metadata[k]; ok && v != "" {
			parts = append(parts, k+"="+v)
		}
	}
	sort.Strings(parts)
	return parts
}

// debounceKey identifies functionally identical drafts.
func debounceKey(d core.Draft) string {
	parts := []string{string(d.Type), d.Title}
	parts = append(parts, entityParts(d.Metadata)...)
	return strings.Join(parts, "|")
}
