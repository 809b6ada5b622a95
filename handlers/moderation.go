package handlers

import (
	"errors"
	"math/rand"
	"time"

	"moddingway/ban"
	"moddingway/exile"
	"moddingway/model"
	"moddingway/notes"
	"moddingway/strikes"
	"moddingway/utils"
)

const genericError = "An error occurred while processing the command."

// Reply is what a command answers with and what it leaves in the logging channel.
type Reply struct {
	Content string
	// Public replies are visible to the whole channel.
	Public bool
	// Log is nil when the command changes nothing worth logging.
	Log *utils.LogEntry
}

// Moderation runs the slash commands against the moderation services.
type Moderation struct {
	config   func() *model.Config
	ledger   *strikes.Ledger
	exiles   *exile.Manager
	bans     *ban.Service
	notes    *notes.Service
	roulette *utils.Cooldowns
	intn     func(n int) int
	now      func() time.Time
}

func NewModeration(config func() *model.Config, ledger *strikes.Ledger, exiles *exile.Manager, bans *ban.Service, notes *notes.Service) *Moderation {
	cooldown := config().RouletteCooldown
	if cooldown <= 0 {
		cooldown = 24 * time.Hour
	}
	return &Moderation{
		config:   config,
		ledger:   ledger,
		exiles:   exiles,
		bans:     bans,
		notes:    notes,
		roulette: utils.NewCooldowns(cooldown),
		intn:     rand.Intn,
		now:      time.Now,
	}
}

var userFacing = []error{
	utils.ErrInvalidDuration,
	exile.ErrNotVerified,
	exile.ErrNotExiled,
	exile.ErrNoRecord,
	strikes.ErrInvalidSeverity,
	strikes.ErrStrikeNotFound,
	strikes.ErrNoRecord,
	ban.ErrReasonTooLong,
	notes.ErrEmptyNote,
	notes.ErrNoteNotFound,
	notes.ErrNoRecord,
}

// userMessage is the text a moderator sees for err. Only known precondition errors are shown verbatim.
func userMessage(err error) string {
	for _, known := range userFacing {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	if model.KindOf(err) == model.KindForbidden {
		return "The bot is missing permissions to complete this action."
	}
	return genericError
}

func (m *Moderation) isMod(member *model.Member) bool {
	return utils.IsMod(member, m.config().Roles)
}
