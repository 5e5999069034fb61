package forecast

import "fmt"

// Horizon is a supported forecast length in days. Values are only obtained
// through ParseHorizon, so every Horizon in circulation has a handler.
type Horizon int

const (
	OneDay    Horizon = 1
	ThreeDays Horizon = 3
	SevenDays Horizon = 7
)

// SupportedHorizons lists the horizons in ascending order.
var SupportedHorizons = []Horizon{OneDay, ThreeDays, SevenDays}

// ParseHorizon validates a requested number of days.
func ParseHorizon(nhead int) (Horizon, error) {
	switch h := Horizon(nhead); h {
	case OneDay, ThreeDays, SevenDays:
		return h, nil
	default:
		return 0, fmt.Errorf("%w: %d. Supported values: %v", ErrUnsupportedHorizon, nhead, SupportedHorizons)
	}
}

func (h Horizon) Days() int { return int(h) }

// Label is the key used in the predictions map, e.g. "3_day".
func (h Horizon) Label() string { return fmt.Sprintf("%d_day", int(h)) }

func (h Horizon) String() string { return fmt.Sprintf("%d", int(h)) }
