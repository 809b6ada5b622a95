package discord

import (
	"errors"
	"net/http"

	"moddingway/model"

	"github.com/bwmarrin/discordgo"
)

// JSON error codes returned by the Discord API.
const (
	codeUnknownChannel    = 10003
	codeUnknownMember     = 10007
	codeUnknownMessage    = 10008
	codeUnknownUser       = 10013
	codeUnknownBan        = 10026
	codeMissingAccess     = 50001
	codeCannotMessageUser = 50007
	codeMissingPermission = 50013
)

// classify wraps err as a model.PlatformError for op.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	return &model.PlatformError{Op: op, Kind: kindOf(err), Err: err}
}

func kindOf(err error) model.ErrorKind {
	var rateErr *discordgo.RateLimitError
	if errors.As(err, &rateErr) {
		return model.KindRateLimited
	}

	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return model.KindUnknown
	}

	if restErr.Message != nil {
		switch restErr.Message.Code {
		case codeUnknownChannel, codeUnknownMember, codeUnknownMessage, codeUnknownUser, codeUnknownBan:
			return model.KindNotFound
		case codeMissingAccess, codeCannotMessageUser, codeMissingPermission:
			return model.KindForbidden
		}
	}

	if restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusNotFound:
			return model.KindNotFound
		case http.StatusForbidden, http.StatusUnauthorized:
			return model.KindForbidden
		case http.StatusTooManyRequests:
			return model.KindRateLimited
		}
	}
	return model.KindUnknown
}
