package moderation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-darkbin/internal/domain"
)

func TestFilter_RejectMode(t *testing.T) {
	req := require.New(t)
	f, err := NewFilter([]string{"spam", "scam link"}, ModeReject)
	req.NoError(err)

	for _, text := range []string{"buy SPAM now", "sp.a.m", "5p4m", "a sc4m-link here"} {
		err := f.Validate(context.Background(), &domain.ChatMessage{Content: text})
		req.ErrorIs(err, ErrBannedWord, text)
	}

	msg := &domain.ChatMessage{Content: "hello there"}
	req.NoError(f.Validate(context.Background(), msg))
	req.Equal("hello there", msg.Content)
}

func TestFilter_CensorMode(t *testing.T) {
	req := require.New(t)
	f, err := NewFilter([]string{"spam"}, ModeCensor)
	req.NoError(err)

	msg := &domain.ChatMessage{Content: "no S.P.A.M please"}
	req.NoError(f.Validate(context.Background(), msg))
	req.Equal("no ******* please", msg.Content)
}

func TestNewFilter_EmptyListLetsEverythingThrough(t *testing.T) {
	req := require.New(t)
	f, err := NewFilter([]string{"", "  ", "!!"}, ModeReject)
	req.NoError(err)
	req.Nil(f)

	req.NoError(f.Validate(context.Background(), &domain.ChatMessage{Content: "anything"}))
	req.False(f.Contains("anything"))
	req.Equal("anything", f.Censor("anything"))
}

func TestNewFilter_SymbolOnlyWordsAreIgnored(t *testing.T) {
	req := require.New(t)
	f, err := NewFilter([]string{"!", "$$", "@|", "1337"}, ModeReject)
	req.NoError(err)
	req.Nil(f)

	f, err = NewFilter([]string{"!", "spam"}, ModeReject)
	req.NoError(err)
	req.NotNil(f)
	req.NoError(f.Validate(context.Background(), &domain.ChatMessage{Content: "hi there, is it fine?"}))
	req.ErrorIs(f.Validate(context.Background(), &domain.ChatMessage{Content: "sp4m"}), ErrBannedWord)
}

func TestParseMode(t *testing.T) {
	req := require.New(t)

	m, err := ParseMode("")
	req.NoError(err)
	req.Equal(ModeReject, m)

	m, err = ParseMode(" Censor ")
	req.NoError(err)
	req.Equal(ModeCensor, m)

	_, err = ParseMode("shadowban")
	req.Error(err)
}
