package discord

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// history serves total messages with descending ids, pageSize at a time.
func history(total int, calls *int) func(before string) ([]*discordgo.Message, error) {
	return func(before string) ([]*discordgo.Message, error) {
		*calls++
		next := total
		if before != "" {
			next, _ = strconv.Atoi(before)
			next--
		}
		var page []*discordgo.Message
		for id := next; id > 0 && len(page) < pageSize; id-- {
			page = append(page, &discordgo.Message{ID: strconv.Itoa(id)})
		}
		return page, nil
	}
}

func TestPageHistoryReadsEveryPage(t *testing.T) {
	calls := 0
	msgs, err := pageHistory(context.Background(), history(60*pageSize+7, &calls))
	require.NoError(t, err)
	assert.Len(t, msgs, 60*pageSize+7)
	assert.Equal(t, 61, calls)
	assert.Equal(t, "1", msgs[len(msgs)-1].ID)
}

func TestPageHistoryStopsOnExactPageBoundary(t *testing.T) {
	calls := 0
	msgs, err := pageHistory(context.Background(), history(2*pageSize, &calls))
	require.NoError(t, err)
	assert.Len(t, msgs, 2*pageSize)
	assert.Equal(t, 3, calls, "an empty page ends the history")
}

func TestPageHistoryStopsOnCancelAndError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	_, err := pageHistory(ctx, history(10, &calls))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)

	_, err = pageHistory(context.Background(), func(string) ([]*discordgo.Message, error) {
		return nil, errors.New("boom")
	})
	assert.Error(t, err)
}
