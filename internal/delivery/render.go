package delivery

import (
	"fmt"
	"strings"

	"github.com/akoval/frostwatch/internal/notify"
)

// RenderIntent turns a notification intent into the plain-text message
// handed to a Notifier.
func RenderIntent(locationName string, intent notify.Intent) string {
	switch intent.Kind {
	case notify.KindWarning:
		return fmt.Sprintf("Freeze warning for %s: %.1f°C expected at %s.",
			locationName, intent.Temperature, intent.EventTime.Format("15:04 MST"))
	case notify.KindNowFreezing:
		return fmt.Sprintf("%s is freezing now: %.1f°C.", locationName, intent.Temperature)
	case notify.KindAllClear:
		return fmt.Sprintf("All clear for %s: %.1f°C and no freeze in the forecast.",
			locationName, intent.Temperature)
	default:
		return fmt.Sprintf("%s: %s at %.1f°C.", locationName, intent.Kind, intent.Temperature)
	}
}

// RenderSummary turns a morning summary into one message listing every
// affected location for the owner.
func RenderSummary(s notify.Summary) string {
	var b strings.Builder
	b.WriteString("Morning freeze outlook — expected to freeze today:\n")
	for _, e := range s.Entries {
		fmt.Fprintf(&b, "  • %s: %.1f°C around %s\n",
			e.LocationName, e.FreezeTemp, e.FreezeTime.Format("15:04 MST"))
	}
	return strings.TrimRight(b.String(), "\n")
}
