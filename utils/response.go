package utils

import (
	"moddingway/logging"

	"github.com/bwmarrin/discordgo"
)

// SendErrorResponse sends an ephemeral error message.
func SendErrorResponse(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "❌ " + message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		logging.Error("Error sending error response", "error", err)
	}
}

// SendEmbedResponse sends an ephemeral embed.
func SendEmbedResponse(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		logging.Error("Error sending embed response", "error", err)
	}
}

// SendFollowUp sends a follow-up message to an interaction. Text longer than one
// Discord message is split, the first chunk edits the deferred response and the
// rest are sent as follow-ups.
func SendFollowUp(s *discordgo.Session, i *discordgo.Interaction, message string) {
	chunks := SplitMessage(message, MaxMessageLength)
	if len(chunks) == 0 {
		return
	}
	_, err := s.InteractionResponseEdit(i, &discordgo.WebhookEdit{
		Content: &chunks[0],
	})
	if err != nil {
		logging.Error("Error sending follow-up message", "error", err)
		return
	}
	for _, chunk := range chunks[1:] {
		_, err := s.FollowupMessageCreate(i, true, &discordgo.WebhookParams{
			Content: chunk,
			Flags:   discordgo.MessageFlagsEphemeral,
		})
		if err != nil {
			logging.Error("Error sending follow-up chunk", "error", err)
			return
		}
	}
}

// DeferResponse defers an interaction response, optionally making it ephemeral.
func DeferResponse(s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool) error {
	response := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}
	if ephemeral {
		response.Data = &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		}
	}
	return s.InteractionRespond(i.Interaction, response)
}
