package discord

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"moddingway/model"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func restError(status, code int) error {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: status},
		Message:  &discordgo.APIErrorMessage{Code: code},
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want model.ErrorKind
	}{
		{"unknown member", restError(http.StatusNotFound, codeUnknownMember), model.KindNotFound},
		{"unknown message by status", restError(http.StatusNotFound, 0), model.KindNotFound},
		{"dm closed", restError(http.StatusForbidden, codeCannotMessageUser), model.KindForbidden},
		{"missing permissions", restError(http.StatusBadRequest, codeMissingPermission), model.KindForbidden},
		{"rate limited", restError(http.StatusTooManyRequests, 0), model.KindRateLimited},
		{"rate limit error", &discordgo.RateLimitError{RateLimit: &discordgo.RateLimit{TooManyRequests: &discordgo.TooManyRequests{}}}, model.KindRateLimited},
		{"server error", restError(http.StatusInternalServerError, 0), model.KindUnknown},
		{"plain error", errors.New("boom"), model.KindUnknown},
		{"wrapped", fmt.Errorf("ctx: %w", restError(http.StatusNotFound, codeUnknownMember)), model.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("op", tt.err)
			assert.Equal(t, tt.want, model.KindOf(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.NoError(t, classify("op", nil))
}
