package strikes

import "fmt"

// PunishmentKind is the outcome class of a strike evaluation.
type PunishmentKind int

const (
	PunishmentNone PunishmentKind = iota
	PunishmentExile
	PunishmentBan
)

func (k PunishmentKind) String() string {
	switch k {
	case PunishmentExile:
		return "exile"
	case PunishmentBan:
		return "ban"
	}
	return "none"
}

// Punishment is what a strike total calls for. Days is set only for exiles.
type Punishment struct {
	Kind PunishmentKind
	Days int
}

func (p Punishment) String() string {
	switch p.Kind {
	case PunishmentBan:
		return "Permanent ban"
	case PunishmentExile:
		return fmt.Sprintf("%d day exile", p.Days)
	}
	return "Nothing"
}

// BanThreshold is the total at which exiles give way to a permanent ban.
const BanThreshold = 15

type threshold struct {
	points int
	days   int
}

// exileThresholds is ordered from highest to lowest.
var exileThresholds = []threshold{
	{points: 10, days: 14},
	{points: 7, days: 7},
	{points: 5, days: 3},
	{points: 3, days: 1},
}

// Evaluate decides the punishment for a strike that moved a user's total from previous to current.
//
// Every threshold crossed by this strike adds its days. When none was crossed, the
// highest threshold the user already sat at or above applies on its own.
func Evaluate(previous, current int) Punishment {
	if current >= BanThreshold {
		return Punishment{Kind: PunishmentBan}
	}

	days := 0
	for _, t := range exileThresholds {
		if current >= t.points && previous < t.points {
			days += t.days
		}
	}

	if days == 0 {
		for _, t := range exileThresholds {
			if current >= t.points && previous >= t.points {
				days = t.days
				break
			}
		}
	}

	if days == 0 {
		return Punishment{Kind: PunishmentNone}
	}
	return Punishment{Kind: PunishmentExile, Days: days}
}
