package bot

import (
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeMemberGetter struct {
	status string
	err    error
	asked  string
}

func (f *fakeMemberGetter) GetChatMember(cfg tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
	f.asked = cfg.SuperGroupUsername
	if f.err != nil {
		return tgbotapi.ChatMember{}, f.err
	}
	return tgbotapi.ChatMember{Status: f.status}, nil
}

func TestGuardDisabledWithoutChannel(t *testing.T) {
	g := &Guard{API: &fakeMemberGetter{status: "left"}}
	if !g.Allow(1) {
		t.Error("guard without channel blocked user")
	}
}

func TestGuardMembership(t *testing.T) {
	cases := []struct {
		status string
		want   bool
	}{
		{"member", true},
		{"administrator", true},
		{"creator", true},
		{"left", false},
		{"kicked", false},
		{"restricted", false},
	}
	for _, c := range cases {
		g := &Guard{API: &fakeMemberGetter{status: c.status}, Channel: "@papers"}
		if got := g.Allow(7); got != c.want {
			t.Errorf("status %q: Allow = %v, want %v", c.status, got, c.want)
		}
	}
}

func TestGuardNormalizesChannelName(t *testing.T) {
	f := &fakeMemberGetter{status: "member"}
	g := &Guard{API: f, Channel: "papers"}
	g.Allow(7)
	if f.asked != "@papers" {
		t.Errorf("asked channel = %q", f.asked)
	}
}

func TestGuardFailsOpen(t *testing.T) {
	g := &Guard{API: &fakeMemberGetter{err: errors.New("api down")}, Channel: "@papers"}
	if !g.Allow(7) {
		t.Error("guard blocked user on API failure")
	}
}
